// Package services contains the server-side business logic: credentials and
// sessions (UserService), the file metadata engine (FileService) and
// operational reporting (StatusService).
package services

import (
	"context"
)

// SessionStore maps opaque tokens to user ids.
type SessionStore interface {
	Create(ctx context.Context, userID string) (string, error)
	Resolve(ctx context.Context, token string) (string, error)
	Destroy(ctx context.Context, token string) error
}

// Enqueuer hands a job to a background queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, name string, payload any) error
}

// Pinger reports whether a backing service answers.
type Pinger interface {
	Ping(ctx context.Context) error
}
