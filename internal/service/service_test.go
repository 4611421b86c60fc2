package service

import (
	"fmt"
	"path/filepath"
	"testing"

	"groupchat/internal/entity"
	"groupchat/internal/repository"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type MockLogger struct{}

func (m *MockLogger) Logf(format string, v ...any) {
	fmt.Printf(format+"\n", v...)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("Could not open the test database: %v", err)
	}
	if err := db.AutoMigrate(&entity.User{}, &entity.Group{}, &entity.Message{}, &entity.File{}); err != nil {
		t.Fatalf("Could not migrate the test schema: %v", err)
	}
	return db
}

func newTestUser(t *testing.T, db *gorm.DB, username string) *entity.User {
	t.Helper()

	repo := repository.NewSQLiteUserRepository(db)
	u := &entity.User{Username: username, Email: username + "@example.com"}
	if err := u.SetPassword("secret"); err != nil {
		t.Fatalf("Could not hash the test password: %v", err)
	}
	if err := repo.Create(u); err != nil {
		t.Fatalf("Could not create test user %s: %v", username, err)
	}
	return u
}

// newTestServices wires the full service stack over one database.
func newTestServices(t *testing.T, db *gorm.DB, uploadDir string) (AuthService, GroupService, HistoryService, AttachmentService) {
	t.Helper()

	logger := &MockLogger{}
	userRepo := repository.NewSQLiteUserRepository(db)
	groupRepo := repository.NewSQLiteGroupRepository(db)
	messageRepo := repository.NewSQLiteMessageRepository(db)
	fileRepo := repository.NewSQLiteFileRepository(db)

	auth := NewAuthService(userRepo, logger)
	history := NewHistoryService(messageRepo, userRepo, groupRepo, logger)
	attachments := NewAttachmentService(uploadDir, fileRepo, userRepo, groupRepo, logger)
	groups := NewGroupService(groupRepo, userRepo, history, attachments, logger)

	return auth, groups, history, attachments
}
