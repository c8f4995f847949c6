// Package httpapi exposes the files manager over HTTP/JSON.
package httpapi

import (
	"context"

	"github.com/dmitrijs2005/filesmanager/internal/logging"
	"github.com/dmitrijs2005/filesmanager/internal/server/models"
	"github.com/dmitrijs2005/filesmanager/internal/server/services"
)

// Users is the part of services.UserService used by the handlers.
type Users interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
	Authenticate(ctx context.Context, authorization string) (string, error)
	Authorize(ctx context.Context, token string) (string, error)
	Disconnect(ctx context.Context, token string) error
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// Files is the part of services.FileService used by the handlers.
type Files interface {
	Create(ctx context.Context, ownerID string, req services.CreateFileRequest) (*models.File, error)
	Get(ctx context.Context, requesterID, fileID string) (*models.File, error)
	List(ctx context.Context, requesterID, parentID string, page int) ([]*models.File, error)
	SetVisibility(ctx context.Context, requesterID, fileID string, isPublic bool) (*models.File, error)
	ReadContent(ctx context.Context, requesterID, fileID, size string) ([]byte, string, error)
}

type Status interface {
	Status(ctx context.Context) services.Status
	Stats(ctx context.Context) (services.Stats, error)
}

// Handler holds the HTTP handlers and their dependencies.
type Handler struct {
	users  Users
	files  Files
	status Status
	logger logging.Logger
}

func NewHandler(u Users, f Files, s Status, l logging.Logger) *Handler {
	return &Handler{users: u, files: f, status: s, logger: l.With("module", "http")}
}
