package service

import (
	"bytes"
	"errors"
	"fmt"
	"path"
	"time"

	"notable-server/internal/domain"
	"notable-server/internal/repository"
	"notable-server/internal/storage"
)

type UserService struct {
	userRepo repository.UserRepository
	gateway  *storage.Gateway
}

func NewUserService(userRepo repository.UserRepository, gateway *storage.Gateway) *UserService {
	return &UserService{
		userRepo: userRepo,
		gateway:  gateway,
	}
}

func (s *UserService) GetByID(id string) (*domain.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user.Password = ""
	return user, nil
}

// UpdateProfile merges the supplied profile fields into the user record.
func (s *UserService) UpdateProfile(userID string, req *domain.UpdateProfileRequest) (*domain.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}
	if req.Timezone != nil {
		user.Timezone = *req.Timezone
	}

	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	user.Password = ""
	return user, nil
}

// UpdateAvatar uploads the image to the user's fixed avatar path
// ({id}/avatar/profile.{ext}, an upsert) and saves the path on the user
// record.
func (s *UserService) UpdateAvatar(userID, filename string, data []byte) (*domain.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	ext := path.Ext(filename)
	if ext == "" {
		ext = ".jpg"
	}

	avatarPath, err := s.gateway.Upload(userID, "avatar", "profile"+ext, filename, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	user.AvatarPath = avatarPath
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	user.Password = ""
	return user, nil
}
