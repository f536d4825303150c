package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"gopherblog/internal/media"
	"gopherblog/internal/model"
	"gopherblog/internal/repository"
)

type AccountService struct {
	userRepo *repository.UserRepository
	media    *media.Store
}

type UpdateAccountInput struct {
	UserID   uint
	Username string
	Email    string

	// Picture is nil when the user keeps their current image.
	Picture     io.Reader
	PictureName string
}

func NewAccountService(userRepo *repository.UserRepository, mediaStore *media.Store) *AccountService {
	return &AccountService{userRepo: userRepo, media: mediaStore}
}

// Update changes the profile. When a new picture is uploaded the order
// is: save the new file, commit the user row, then delete the old file.
// A crash in between leaves at worst an orphan file on disk, never a
// user row pointing at a missing picture.
func (s *AccountService) Update(input UpdateAccountInput) (*model.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if username == "" || email == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.userRepo.GetByID(input.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if username != user.Username {
		existing, err := s.userRepo.GetByUsername(username)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrUsernameExists
		}
	}
	if email != user.Email {
		existing, err := s.userRepo.GetByEmail(email)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrEmailExists
		}
	}

	oldImage := user.ImageFile
	newImage := ""
	if input.Picture != nil {
		newImage, err = s.media.SavePicture(input.Picture, input.PictureName)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
		}
		user.ImageFile = newImage
	}

	user.Username = username
	user.Email = email
	if err := s.userRepo.Update(user); err != nil {
		if newImage != "" {
			if delErr := s.media.DeletePicture(newImage); delErr != nil {
				logrus.WithError(delErr).WithField("file", newImage).Warn("cleanup of unreferenced picture failed")
			}
		}
		return nil, err
	}

	if newImage != "" && oldImage != newImage {
		if err := s.media.DeletePicture(oldImage); err != nil {
			logrus.WithError(err).WithField("file", oldImage).Warn("delete old profile picture failed")
		}
	}
	return user, nil
}
