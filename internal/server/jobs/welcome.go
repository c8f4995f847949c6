package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/logging"
	"github.com/dmitrijs2005/filesmanager/internal/server/queue"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// WelcomeHandler greets newly registered users. Delivery is a log line.
type WelcomeHandler struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewWelcomeHandler(db *sql.DB, rm repomanager.RepositoryManager, l logging.Logger) *WelcomeHandler {
	return &WelcomeHandler{db: db, repomanager: rm, logger: l.With("module", "welcome")}
}

func (h *WelcomeHandler) Handle(ctx context.Context, payload json.RawMessage) error {
	var p WelcomePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return queue.Permanent(fmt.Errorf("decode payload: %w", err))
	}
	if p.UserID == "" {
		return queue.Permanent(errors.New("missing userId"))
	}
	if _, err := uuid.Parse(p.UserID); err != nil {
		return queue.Permanent(errors.New("user not found"))
	}

	user, err := h.repomanager.Users(h.db).GetByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return queue.Permanent(errors.New("user not found"))
		}
		return fmt.Errorf("load user: %w", err)
	}

	h.logger.Info(ctx, fmt.Sprintf("Welcome %s!", user.Email), "user_id", user.ID)
	return nil
}
