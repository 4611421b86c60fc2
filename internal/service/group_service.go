package service

import (
	"errors"
	"fmt"
	"time"

	"groupchat/internal/applog"
	"groupchat/internal/entity"
	"groupchat/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// GroupView is what a member sees on entering a group: the room itself,
// messages oldest first and files newest first.
type GroupView struct {
	Group    *entity.Group     `json:"group"`
	Messages []*entity.Message `json:"messages"`
	Files    []*entity.File    `json:"files"`
}

// ClearReport sums up a history clear. Failures lists stored files whose
// bytes could not be removed; the metadata is gone either way.
type ClearReport struct {
	MessagesCleared bool     `json:"messages_cleared"`
	FilesCleared    bool     `json:"files_cleared"`
	Failures        []string `json:"failures,omitempty"`
}

// GroupService owns the membership and moderation rules: passkey-gated
// joins, owner-only destructive operations.
type GroupService interface {
	CreateGroup(name string, ownerID uint, passkey string) (*entity.Group, error)
	ListGroups() ([]*entity.Group, error)
	GetGroup(id uint) (*entity.Group, error)

	// VerifyPasskey checks a candidate against the group's passkey hash.
	// Open groups accept anything.
	VerifyPasskey(group *entity.Group, candidate string) bool

	// RequestMembership adds the user to the group, gated by the passkey
	// when the group has one. Granting twice is harmless.
	RequestMembership(groupID, userID uint, passkey string) error

	// CanView reports whether the user may read the group: it has no
	// passkey, or the user already got past it.
	CanView(group *entity.Group, userID uint) (bool, error)

	// CanModerate reports whether the user may run destructive operations.
	CanModerate(group *entity.Group, userID uint) bool

	// EnterGroup runs the membership gate and returns the group's history.
	EnterGroup(groupID, userID uint, passkey string) (*GroupView, error)

	// ClearHistory wipes the group's messages and files. The caller must be
	// the owner AND present the passkey again; owning the group alone is
	// not enough.
	ClearHistory(groupID, actingUserID uint, passkey string) (*ClearReport, error)
}

type groupService struct {
	groupRepository repository.GroupRepository
	userRepository  repository.UserRepository
	history         HistoryService
	attachments     AttachmentService
	logger          applog.Logger
}

func NewGroupService(groupRepo repository.GroupRepository, userRepo repository.UserRepository, history HistoryService, attachments AttachmentService, logger applog.Logger) GroupService {
	return &groupService{
		groupRepository: groupRepo,
		userRepository:  userRepo,
		history:         history,
		attachments:     attachments,
		logger:          logger,
	}
}

func (g *groupService) Logf(format string, v ...any) {
	g.logger.Logf(format, v...)
}

func (g *groupService) CreateGroup(name string, ownerID uint, passkey string) (*entity.Group, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: the group needs a name", ErrInvalidInput)
	}

	owner, err := g.userRepository.GetByID(ownerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, ownerID)
	} else if err != nil {
		return nil, err
	}

	group := &entity.Group{
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: time.Now(),
		Members:   []entity.User{*owner},
	}
	if passkey != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(passkey), bcrypt.DefaultCost)
		if err != nil {
			g.Logf("Could not calculate passkey hash {%v}", err)
			return nil, err
		}
		group.PasskeyHash = string(hash)
	}

	if err := g.groupRepository.Create(group); err != nil {
		return nil, err
	}

	g.Logf("Group %q created by user %d (protected: %v)", name, ownerID, group.Protected())
	return group, nil
}

func (g *groupService) ListGroups() ([]*entity.Group, error) {
	return g.groupRepository.GetAll()
}

func (g *groupService) GetGroup(id uint) (*entity.Group, error) {
	group, err := g.groupRepository.GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: group %d", ErrNotFound, id)
	}
	return group, err
}

func (g *groupService) VerifyPasskey(group *entity.Group, candidate string) bool {
	if !group.Protected() {
		return true
	}
	return bcrypt.CompareHashAndPassword([]byte(group.PasskeyHash), []byte(candidate)) == nil
}

func (g *groupService) RequestMembership(groupID, userID uint, passkey string) error {
	group, err := g.GetGroup(groupID)
	if err != nil {
		return err
	}

	if !g.VerifyPasskey(group, passkey) {
		g.Logf("User %d failed the passkey for group %d", userID, groupID)
		return ErrWrongPasskey
	}

	if err := g.groupRepository.AddMember(groupID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return err
	}

	g.Logf("User %d joined group %d", userID, groupID)
	return nil
}

func (g *groupService) CanView(group *entity.Group, userID uint) (bool, error) {
	if !group.Protected() {
		return true, nil
	}
	return g.groupRepository.IsMember(group.ID, userID)
}

func (g *groupService) CanModerate(group *entity.Group, userID uint) bool {
	return group.OwnerID == userID
}

func (g *groupService) EnterGroup(groupID, userID uint, passkey string) (*GroupView, error) {
	group, err := g.GetGroup(groupID)
	if err != nil {
		return nil, err
	}

	ok, err := g.CanView(group, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Not yet a member; the supplied passkey decides.
		if err := g.RequestMembership(groupID, userID, passkey); err != nil {
			return nil, err
		}
		group, err = g.GetGroup(groupID)
		if err != nil {
			return nil, err
		}
	}

	messages, err := g.history.List(groupID)
	if err != nil {
		return nil, err
	}
	files, err := g.attachments.ListForGroup(groupID)
	if err != nil {
		return nil, err
	}

	return &GroupView{Group: group, Messages: messages, Files: files}, nil
}

func (g *groupService) ClearHistory(groupID, actingUserID uint, passkey string) (*ClearReport, error) {
	group, err := g.GetGroup(groupID)
	if err != nil {
		return nil, err
	}

	if !g.CanModerate(group, actingUserID) {
		g.Logf("User %d tried to clear group %d without owning it", actingUserID, groupID)
		return nil, ErrNotOwner
	}
	if !g.VerifyPasskey(group, passkey) {
		return nil, ErrWrongPasskey
	}

	report := &ClearReport{}

	if err := g.history.Clear(groupID); err != nil {
		return nil, err
	}
	report.MessagesCleared = true

	failures, err := g.attachments.DeleteAllForGroup(groupID)
	if err != nil {
		return report, err
	}
	report.FilesCleared = true
	report.Failures = failures

	g.Logf("Owner %d cleared group %d (%d file failures)", actingUserID, groupID, len(failures))
	return report, nil
}
