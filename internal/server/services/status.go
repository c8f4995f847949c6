package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/filesmanager/internal/dbx"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/repomanager"
)

// Status tells whether the backing stores answer.
type Status struct {
	Redis bool `json:"redis"`
	DB    bool `json:"db"`
}

// Stats holds global record counts.
type Stats struct {
	Users int64 `json:"users"`
	Files int64 `json:"files"`
}

type StatusService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	redis       Pinger
}

func NewStatusService(db *sql.DB, m repomanager.RepositoryManager, redis Pinger) *StatusService {
	return &StatusService{db: db, repomanager: m, redis: redis}
}

func (s *StatusService) Status(ctx context.Context) Status {
	return Status{
		Redis: s.redis.Ping(ctx) == nil,
		DB:    s.db.PingContext(ctx) == nil,
	}
}

// Stats counts users and files from one snapshot.
func (s *StatusService) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := dbx.WithReadOnlyTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		if st.Users, err = s.repomanager.Users(tx).Count(ctx); err != nil {
			return err
		}
		st.Files, err = s.repomanager.Files(tx).Count(ctx)
		return err
	})
	if err != nil {
		return Stats{}, fmt.Errorf("error counting records: %w", err)
	}
	return st, nil
}
