// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/icetruck/internal/core"
	"github.com/carterperez-dev/icetruck/internal/middleware"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenReuse         = errors.New("token reuse detected")
)

const blacklistPrefix = "blacklist:"

type UserInfo struct {
	ID           string
	Username     string
	Email        string
	Name         string
	UserType     string
	PasswordHash string
	TokenVersion int
}

type UserProvider interface {
	GetByLogin(ctx context.Context, identifier string) (*UserInfo, error)
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	IncrementTokenVersion(ctx context.Context, userID string) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

type Service struct {
	repo         Repository
	jwt          *JWTManager
	userProvider UserProvider
	redis        *redis.Client
	logger       *slog.Logger
}

func NewService(
	repo Repository,
	jwt *JWTManager,
	userProvider UserProvider,
	redisClient *redis.Client,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:         repo,
		jwt:          jwt,
		userProvider: userProvider,
		redis:        redisClient,
		logger:       logger,
	}
}

var _ middleware.TokenVerifier = (*Service)(nil)

// VerifyAccessToken parses the token, then rejects it if its jti was
// blacklisted on logout or the user has since bumped token_version. A
// blacklist lookup failure is logged and does not reject the request.
func (s *Service) VerifyAccessToken(
	ctx context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	claims, err := s.jwt.ParseAccessToken(token)
	if err != nil {
		return nil, err
	}

	if claims.JTI != "" {
		revoked, err := s.isBlacklisted(ctx, claims.JTI)
		if err != nil {
			s.logger.WarnContext(ctx, "blacklist lookup failed",
				"error", err,
			)
		} else if revoked {
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
		}
	}

	user, err := s.userProvider.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
		}
		return nil, fmt.Errorf("verify token: %w", err)
	}

	if claims.TokenVersion < user.TokenVersion {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
	}

	return claims, nil
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
	userAgent, ipAddress string,
) (*AuthResponse, error) {
	user, err := s.userProvider.GetByLogin(ctx, req.Username)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // keeps unknown logins as slow as known ones
			_, _, _ = core.VerifyPasswordTimingSafe(req.Password, "")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(
		req.Password,
		user.PasswordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return nil, ErrInvalidCredentials
	}

	if newHash != "" {
		if err := s.userProvider.UpdatePassword(ctx, user.ID, newHash); err != nil {
			s.logger.WarnContext(ctx, "password rehash failed",
				"user_id", user.ID,
				"error", err,
			)
		}
	}

	return s.issue(ctx, user, userAgent, ipAddress, nil)
}

func (s *Service) Refresh(
	ctx context.Context,
	refreshToken, userAgent, ipAddress string,
) (*AuthResponse, error) {
	stored, err := s.repo.FindByHash(ctx, core.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("refresh: %w", core.ErrTokenInvalid)
		}
		return nil, fmt.Errorf("find token: %w", err)
	}

	if err := stored.Check(time.Now()); err != nil {
		if errors.Is(err, ErrTokenReuse) {
			s.revokeFamily(ctx, stored)
		}
		return nil, fmt.Errorf("refresh: %w", err)
	}

	user, err := s.userProvider.GetByID(ctx, stored.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return s.issue(ctx, user, userAgent, ipAddress, stored)
}

// Logout revokes the presented refresh token when it belongs to the caller
// and blacklists the access token until it would have expired anyway.
// Nothing here can fail the request.
func (s *Service) Logout(
	ctx context.Context,
	claims *middleware.AccessTokenClaims,
	refreshToken string,
) {
	if claims == nil {
		return
	}

	if refreshToken != "" {
		stored, err := s.repo.FindByHash(ctx, core.HashToken(refreshToken))
		switch {
		case err != nil:
			s.logger.DebugContext(ctx, "logout token lookup failed",
				"error", err,
			)
		case stored.UserID != claims.UserID:
			s.logger.WarnContext(ctx, "logout with foreign refresh token",
				"user_id", claims.UserID,
			)
		default:
			if err := s.repo.RevokeByID(ctx, stored.ID); err != nil &&
				!errors.Is(err, core.ErrNotFound) {
				s.logger.WarnContext(ctx, "revoke refresh token failed",
					"error", err,
				)
			}
		}
	}

	if err := s.RevokeAccessToken(ctx, claims.JTI, claims.ExpiresAt); err != nil {
		s.logger.WarnContext(ctx, "blacklist access token failed",
			"error", err,
		)
	}
}

func (s *Service) LogoutAll(ctx context.Context, userID string) error {
	if err := s.repo.RevokeAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("revoke all tokens: %w", err)
	}

	if err := s.userProvider.IncrementTokenVersion(ctx, userID); err != nil {
		return fmt.Errorf("increment token version: %w", err)
	}

	return nil
}

func (s *Service) RevokeAccessToken(
	ctx context.Context,
	jti string,
	expiresAt time.Time,
) error {
	if jti == "" || s.redis == nil {
		return nil
	}

	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	if err := s.redis.Set(ctx, blacklistPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}

	return nil
}

func (s *Service) isBlacklisted(ctx context.Context, jti string) (bool, error) {
	if s.redis == nil {
		return false, nil
	}

	n, err := s.redis.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("check blacklist: %w", err)
	}

	return n > 0, nil
}

func (s *Service) GetActiveSessions(
	ctx context.Context,
	userID string,
) ([]SessionInfo, error) {
	tokens, err := s.repo.GetActiveSessionsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get sessions: %w", err)
	}

	sessions := make([]SessionInfo, 0, len(tokens))
	for _, t := range tokens {
		sessions = append(sessions, SessionInfo{
			ID:        t.ID,
			UserAgent: t.UserAgent,
			IPAddress: t.IPAddress,
			CreatedAt: t.CreatedAt,
			ExpiresAt: t.ExpiresAt,
		})
	}

	return sessions, nil
}

func (s *Service) RevokeSession(
	ctx context.Context,
	userID, sessionID string,
) error {
	token, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("find session: %w", err)
	}

	// Someone else's session is reported the same as a missing one.
	if token.UserID != userID {
		return fmt.Errorf("revoke session: %w", core.ErrNotFound)
	}

	if err := s.repo.RevokeByID(ctx, sessionID); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	return nil
}

func (s *Service) ChangePassword(
	ctx context.Context,
	userID, currentPassword, newPassword string,
) error {
	user, err := s.userProvider.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	valid, err := core.VerifyPassword(currentPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return ErrInvalidCredentials
	}

	newHash, err := core.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.userProvider.UpdatePassword(ctx, userID, newHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	return s.LogoutAll(ctx, userID)
}

func (s *Service) GetCurrentUser(
	ctx context.Context,
	userID string,
) (*UserResponse, error) {
	user, err := s.userProvider.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

// PruneExpiredTokens deletes refresh tokens that expired more than grace
// ago.
func (s *Service) PruneExpiredTokens(
	ctx context.Context,
	grace time.Duration,
) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx, grace)
	if err != nil {
		return 0, err
	}

	s.logger.InfoContext(ctx, "pruned refresh tokens", "deleted", n)
	return n, nil
}

func (s *Service) revokeFamily(ctx context.Context, token *RefreshToken) {
	s.logger.WarnContext(ctx, "refresh token reuse detected",
		"user_id", token.UserID,
		"family_id", token.FamilyID,
	)

	if err := s.repo.RevokeByFamilyID(ctx, token.FamilyID); err != nil {
		s.logger.ErrorContext(ctx, "revoke token family failed",
			"family_id", token.FamilyID,
			"error", err,
		)
	}
}

// issue mints an access token and a refresh token. With prev set the new
// refresh token joins prev's family and prev is consumed atomically.
func (s *Service) issue(
	ctx context.Context,
	user *UserInfo,
	userAgent, ipAddress string,
	prev *RefreshToken,
) (*AuthResponse, error) {
	access, err := s.jwt.CreateAccessToken(AccessTokenClaims{
		UserID:       user.ID,
		UserType:     user.UserType,
		TokenVersion: user.TokenVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	familyID := ""
	if prev != nil {
		familyID = prev.FamilyID
	}

	refreshData, err := s.jwt.CreateRefreshToken(familyID)
	if err != nil {
		return nil, fmt.Errorf("create refresh token: %w", err)
	}

	next := &RefreshToken{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		TokenHash: refreshData.Hash,
		FamilyID:  refreshData.FamilyID,
		ExpiresAt: refreshData.ExpiresAt,
		UserAgent: userAgent,
		IPAddress: ipAddress,
	}

	if prev == nil {
		err = s.repo.Create(ctx, next)
	} else {
		err = s.repo.Rotate(ctx, prev.ID, next)
		if errors.Is(err, ErrTokenReuse) {
			s.revokeFamily(ctx, prev)
			return nil, fmt.Errorf("refresh: %w", ErrTokenReuse)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &AuthResponse{
		User: toUserResponse(user),
		Tokens: TokenResponse{
			AccessToken:  access.Token,
			RefreshToken: refreshData.Token,
			TokenType:    "Bearer",
			ExpiresIn:    int(s.jwt.AccessTokenTTL() / time.Second),
			ExpiresAt:    access.ExpiresAt,
		},
	}, nil
}
