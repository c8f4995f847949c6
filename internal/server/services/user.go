package services

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/cryptox"
	"github.com/dmitrijs2005/filesmanager/internal/logging"
	"github.com/dmitrijs2005/filesmanager/internal/server/config"
	"github.com/dmitrijs2005/filesmanager/internal/server/jobs"
	"github.com/dmitrijs2005/filesmanager/internal/server/models"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// UserService registers users, checks credentials and manages sessions.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	sessions    SessionStore
	queue       Enqueuer
	cache       *expirable.LRU[string, *models.User]
	logger      logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, sessions SessionStore, q Enqueuer, cfg *config.Config, l logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		sessions:    sessions,
		queue:       q,
		cache:       expirable.NewLRU[string, *models.User](cfg.UserCacheSize, nil, cfg.UserCacheTTL),
		logger:      l.With("module", "users"),
	}
}

// Register creates a user and schedules the welcome notification. The
// notification is best effort and never fails the registration.
func (s *UserService) Register(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" {
		return nil, common.NewValidationError(common.ReasonMissingEmail)
	}
	if password == "" {
		return nil, common.NewValidationError(common.ReasonMissingPassword)
	}

	repo := s.repomanager.Users(s.db)

	_, err := repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, common.ErrorAlreadyExists
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("error looking up user: %w", err)
	}

	salt, err := cryptox.NewSalt()
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		PasswordSalt: salt,
		PasswordHash: cryptox.DigestPassword(password, salt),
	}
	u, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	enqueueAfterCommit(ctx, s.queue, s.logger, common.WelcomeQueue, jobs.WelcomePayload{UserID: u.ID})
	return u, nil
}

// Authenticate checks "Basic base64(email:password)" credentials and opens
// a session. Every credential problem is reported as ErrorUnauthorized.
func (s *UserService) Authenticate(ctx context.Context, authorization string) (string, error) {
	email, password, ok := parseBasicAuth(authorization)
	if !ok {
		return "", common.ErrorUnauthorized
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorUnauthorized
		}
		return "", fmt.Errorf("error looking up user: %w", err)
	}

	if !cryptox.CheckPassword(password, user.PasswordSalt, user.PasswordHash) {
		return "", common.ErrorUnauthorized
	}

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return "", err
	}
	return token, nil
}

// Authorize resolves a session token to its user id.
func (s *UserService) Authorize(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", common.ErrorUnauthorized
	}
	userID, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorUnauthorized
		}
		return "", err
	}
	return userID, nil
}

// Disconnect closes a valid session.
func (s *UserService) Disconnect(ctx context.Context, token string) error {
	if _, err := s.Authorize(ctx, token); err != nil {
		return err
	}
	return s.sessions.Destroy(ctx, token)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByEmail(ctx, email)
}

// GetByID returns the user with id. Users never change once created, so
// lookups are cached.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := s.cache.Get(id); ok {
		userCacheHitsTotal.Inc()
		return u, nil
	}
	userCacheMissesTotal.Inc()

	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}
	u, err := s.repomanager.Users(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Add(id, u)
	return u, nil
}

func parseBasicAuth(header string) (email, password string, ok bool) {
	const prefix = "Basic "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", "", false
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(header[len(prefix):]))
	if err != nil {
		return "", "", false
	}
	email, password, ok = strings.Cut(string(raw), ":")
	if !ok || email == "" || password == "" {
		return "", "", false
	}
	return email, password, true
}

// enqueueAfterCommit schedules a job for data that is already durable. A
// failure is logged and counted, never returned.
func enqueueAfterCommit(ctx context.Context, q Enqueuer, l logging.Logger, name string, payload any) {
	if err := q.Enqueue(ctx, name, payload); err != nil {
		enqueueFailuresTotal.WithLabelValues(name).Inc()
		l.Error(ctx, "enqueue failed", "queue", name, "error", err)
	}
}
