// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/carterperez-dev/icetruck/internal/auth"
	"github.com/carterperez-dev/icetruck/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByLogin(
	ctx context.Context,
	identifier string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByLogin(ctx, strings.TrimSpace(identifier))
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) IncrementTokenVersion(
	ctx context.Context,
	userID string,
) error {
	return s.repo.IncrementTokenVersion(ctx, userID)
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID, passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func (s *Service) GetMe(
	ctx context.Context,
	userID string,
) (*User, []string, error) {
	if userID == "" {
		return nil, nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	groups, err := s.repo.Groups(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	return user, groups, nil
}

func (s *Service) UpdateMe(
	ctx context.Context,
	userID string,
	req UpdateMeRequest,
) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("update me: %w", core.ErrUnauthorized)
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}

	if req.Mobile != nil {
		mobile := NormalizeMobile(req.Mobile)
		if mobile != nil && (user.Mobile == nil || *user.Mobile != *mobile) {
			taken, err := s.repo.ExistsByMobile(ctx, *mobile)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, core.ValidationError(
					msgMobileTaken,
					map[string]string{"mobile": msgMobileTaken},
				)
			}
		}
		user.Mobile = mobile
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.ValidationError(
				msgMobileTaken,
				map[string]string{"mobile": msgMobileTaken},
			)
		}
		return nil, err
	}

	return user, nil
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		Name:         u.Name,
		UserType:     u.UserType,
		PasswordHash: u.PasswordHash,
		TokenVersion: u.TokenVersion,
	}
}

var _ auth.UserProvider = (*Service)(nil)
