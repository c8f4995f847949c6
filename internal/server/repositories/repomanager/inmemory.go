package repomanager

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/dbx"
	"github.com/dmitrijs2005/filesmanager/internal/server/models"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/files"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/users"
	"github.com/google/uuid"
)

// InMemoryRepositoryManager keeps users and files in process memory. The
// DBTX handed to Users and Files is ignored, so transactions are not
// isolated. It backs service and handler tests.
type InMemoryRepositoryManager struct {
	mu    sync.RWMutex
	users []*models.User
	files []*models.File
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{}
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m *InMemoryRepositoryManager) Users(dbx.DBTX) users.Repository {
	return inMemoryUsers{m}
}

func (m *InMemoryRepositoryManager) Files(dbx.DBTX) files.Repository {
	return inMemoryFiles{m}
}

type inMemoryUsers struct {
	m *InMemoryRepositoryManager
}

func (r inMemoryUsers) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for _, u := range r.m.users {
		if u.Email == user.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	c := *user
	r.m.users = append(r.m.users, &c)
	return user, nil
}

func (r inMemoryUsers) find(match func(*models.User) bool) (*models.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	for _, u := range r.m.users {
		if match(u) {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r inMemoryUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email })
}

func (r inMemoryUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ID == id })
}

func (r inMemoryUsers) Count(context.Context) (int64, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	return int64(len(r.m.users)), nil
}

type inMemoryFiles struct {
	m *InMemoryRepositoryManager
}

func (r inMemoryFiles) Create(_ context.Context, file *models.File) (*models.File, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	file.ID = uuid.NewString()
	file.CreatedAt = time.Now()
	if file.ParentID == "" {
		file.ParentID = common.RootParentID
	}
	c := *file
	r.m.files = append(r.m.files, &c)
	return file, nil
}

func (r inMemoryFiles) find(match func(*models.File) bool) (*models.File, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	for _, f := range r.m.files {
		if match(f) {
			c := *f
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r inMemoryFiles) GetByID(_ context.Context, id string) (*models.File, error) {
	return r.find(func(f *models.File) bool { return strings.EqualFold(f.ID, id) })
}

func (r inMemoryFiles) GetByIDAndOwner(_ context.Context, id, userID string) (*models.File, error) {
	return r.find(func(f *models.File) bool { return strings.EqualFold(f.ID, id) && f.UserID == userID })
}

func (r inMemoryFiles) ListByParent(_ context.Context, userID, parentID string, limit, offset int) ([]*models.File, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	out := make([]*models.File, 0, limit)
	skipped := 0
	for _, f := range r.m.files {
		if f.UserID != userID || f.ParentID != parentID {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		if len(out) == limit {
			break
		}
		c := *f
		out = append(out, &c)
	}
	return out, nil
}

func (r inMemoryFiles) SetPublic(_ context.Context, id, userID string, isPublic bool) (*models.File, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for _, f := range r.m.files {
		if strings.EqualFold(f.ID, id) && f.UserID == userID {
			f.IsPublic = isPublic
			c := *f
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r inMemoryFiles) Count(context.Context) (int64, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	return int64(len(r.m.files)), nil
}
