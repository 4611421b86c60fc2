package service

import (
	"errors"
	"fmt"
	"time"

	"groupchat/internal/applog"
	"groupchat/internal/entity"
	"groupchat/internal/repository"

	"gorm.io/gorm"
)

type AuthService interface {
	Register(username, email, password string) (*entity.User, error)
	Login(email, password string) (*entity.User, error)

	GetUser(id uint) (*entity.User, error)

	// UpdateProfile mutates username and email, and the password too when
	// newPassword is non-empty.
	UpdateProfile(userID uint, username, email, newPassword string) (*entity.User, error)
}

type authService struct {
	userRepository repository.UserRepository
	logger         applog.Logger
}

func NewAuthService(userRepo repository.UserRepository, logger applog.Logger) AuthService {
	return &authService{
		userRepository: userRepo,
		logger:         logger,
	}
}

func (a *authService) Logf(format string, v ...any) {
	a.logger.Logf(format, v...)
}

func (a *authService) Register(username, email, password string) (*entity.User, error) {
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: username, email and password are all required", ErrInvalidInput)
	}

	if _, err := a.userRepository.GetByUsername(username); err == nil {
		return nil, fmt.Errorf("%w: that username is taken", ErrInvalidInput)
	}
	if _, err := a.userRepository.GetByEmail(email); err == nil {
		return nil, fmt.Errorf("%w: that email is taken", ErrInvalidInput)
	}

	u := &entity.User{
		Username:  username,
		Email:     email,
		CreatedAt: time.Now(),
	}
	if err := u.SetPassword(password); err != nil {
		a.Logf("Could not calculate hash {%v}", err)
		return nil, err
	}

	if err := a.userRepository.Create(u); err != nil {
		return nil, err
	}
	a.Logf("User %q registered with id %d", u.Username, u.ID)
	return u, nil
}

func (a *authService) Login(email, password string) (*entity.User, error) {
	u, err := a.userRepository.GetByEmail(email)
	if err != nil {
		// One message for both failure modes, so login probing learns nothing.
		return nil, ErrBadCredentials
	}

	if !u.CheckPassword(password) {
		return nil, ErrBadCredentials
	}

	a.Logf("User %q logged in", u.Username)
	return u, nil
}

func (a *authService) GetUser(id uint) (*entity.User, error) {
	u, err := a.userRepository.GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	return u, err
}

func (a *authService) UpdateProfile(userID uint, username, email, newPassword string) (*entity.User, error) {
	if username == "" || email == "" {
		return nil, fmt.Errorf("%w: username and email are required", ErrInvalidInput)
	}

	u, err := a.GetUser(userID)
	if err != nil {
		return nil, err
	}

	if other, err := a.userRepository.GetByUsername(username); err == nil && other.ID != userID {
		return nil, fmt.Errorf("%w: that username is taken", ErrInvalidInput)
	}
	if other, err := a.userRepository.GetByEmail(email); err == nil && other.ID != userID {
		return nil, fmt.Errorf("%w: that email is taken", ErrInvalidInput)
	}

	u.Username = username
	u.Email = email
	if newPassword != "" {
		if err := u.SetPassword(newPassword); err != nil {
			return nil, err
		}
	}

	if err := a.userRepository.Update(u); err != nil {
		return nil, err
	}
	a.Logf("User %d updated their profile", u.ID)
	return u, nil
}
