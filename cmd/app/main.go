package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"groupchat/internal/applog"
	"groupchat/internal/config"
	"groupchat/internal/entity"
	"groupchat/internal/handler"
	"groupchat/internal/realtime"
	"groupchat/internal/repository"
	"groupchat/internal/service"

	"github.com/gorilla/sessions"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	cfg := config.Load()

	db, err := gorm.Open(sqlite.Open(cfg.DBPath), &gorm.Config{})
	if err != nil {
		log.Fatalf("Could not open the database: %v", err)
	}
	if err := db.AutoMigrate(&entity.User{}, &entity.Group{}, &entity.Message{}, &entity.File{}); err != nil {
		log.Fatalf("Could not migrate the schema: %v", err)
	}

	if err := os.MkdirAll(cfg.UploadDir, 0755); err != nil {
		log.Fatalf("Could not create the upload directory: %v", err)
	}

	appLogger, err := applog.NewAppLogger(cfg.LogDir, cfg.EnableLogging)
	if err != nil {
		log.Fatalf("Could not set up logging: %v", err)
	}
	defer appLogger.CloseAll()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go appLogger.Run(ctx)

	authLog, err := appLogger.RegisterSubsystem("auth")
	if err != nil {
		log.Fatalf("Could not register a log subsystem: %v", err)
	}
	chatLog, _ := appLogger.RegisterSubsystem("chat")
	fileLog, _ := appLogger.RegisterSubsystem("files")
	realtimeLog, _ := appLogger.RegisterSubsystem("realtime")

	userRepo := repository.NewSQLiteUserRepository(db)
	groupRepo := repository.NewSQLiteGroupRepository(db)
	messageRepo := repository.NewSQLiteMessageRepository(db)
	fileRepo := repository.NewSQLiteFileRepository(db)

	authService := service.NewAuthService(userRepo, authLog)
	historyService := service.NewHistoryService(messageRepo, userRepo, groupRepo, chatLog)
	attachmentService := service.NewAttachmentService(cfg.UploadDir, fileRepo, userRepo, groupRepo, fileLog)
	groupService := service.NewGroupService(groupRepo, userRepo, historyService, attachmentService, chatLog)

	hub := realtime.NewHub(realtimeLog)
	dispatcher := realtime.NewDispatcher(hub, historyService, groupService, realtimeLog)
	realtimeHandler := realtime.NewHandler(hub, dispatcher, realtimeLog)

	cookieStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))

	authHandler := handler.NewAuthHandler(authService, attachmentService, cookieStore)
	groupHandler := handler.NewGroupHandler(groupService)
	fileHandler := handler.NewFileHandler(attachmentService)

	router := handler.NewRouter(authHandler, groupHandler, fileHandler, realtimeHandler, cookieStore)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("Starting groupchat on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
}
