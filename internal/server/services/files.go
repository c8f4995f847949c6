package services

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"mime"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/logging"
	"github.com/dmitrijs2005/filesmanager/internal/server/jobs"
	"github.com/dmitrijs2005/filesmanager/internal/server/models"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/filesmanager/internal/server/storage"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// CreateFileRequest is the input of FileService.Create. Data holds the
// base64 encoded content and is ignored for folders.
type CreateFileRequest struct {
	Name     string
	Type     string
	ParentID string
	IsPublic bool
	Data     string
}

// FileService is the file metadata engine.
type FileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       storage.ContentStore
	queue       Enqueuer
	logger      logging.Logger
}

func NewFileService(db *sql.DB, m repomanager.RepositoryManager, store storage.ContentStore, q Enqueuer, l logging.Logger) *FileService {
	return &FileService{
		db:          db,
		repomanager: m,
		store:       store,
		queue:       q,
		logger:      l.With("module", "files"),
	}
}

// CanRead reports whether requesterID may see f. An empty requesterID is
// an anonymous caller.
func CanRead(requesterID string, f *models.File) bool {
	return f.IsPublic || (requesterID != "" && f.UserID == requesterID)
}

// CanWrite reports whether requesterID may modify f.
func CanWrite(requesterID string, f *models.File) bool {
	return requesterID != "" && f.UserID == requesterID
}

// Create validates req, stores the content of non-folders and records the
// node. Validation stops at the first failing field in the order name,
// type, data, parent.
func (s *FileService) Create(ctx context.Context, ownerID string, req CreateFileRequest) (*models.File, error) {
	if req.Name == "" {
		return nil, common.NewValidationError(common.ReasonMissingName)
	}
	typ := models.FileType(req.Type)
	if !typ.Valid() {
		return nil, common.NewValidationError(common.ReasonMissingType)
	}
	if typ != models.FileTypeFolder && req.Data == "" {
		return nil, common.NewValidationError(common.ReasonMissingData)
	}

	parentID := normalizeParentID(req.ParentID)
	if parentID != common.RootParentID {
		if err := s.checkParent(ctx, parentID); err != nil {
			return nil, err
		}
	}

	file := &models.File{
		UserID:   ownerID,
		Name:     req.Name,
		Type:     typ,
		IsPublic: req.IsPublic,
		ParentID: parentID,
	}

	if typ != models.FileTypeFolder {
		data, err := base64.StdEncoding.DecodeString(req.Data)
		if err != nil {
			return nil, common.NewValidationError(common.ReasonInvalidData)
		}
		path, err := s.store.Put(ctx, uuid.NewString(), data)
		if err != nil {
			return nil, fmt.Errorf("error storing content: %w", err)
		}
		file.LocalPath = path
	}

	created, err := s.repomanager.Files(s.db).Create(ctx, file)
	if err != nil {
		if file.LocalPath != "" {
			if derr := s.store.Delete(ctx, file.LocalPath); derr != nil {
				s.logger.Warn(ctx, "orphaned content", "path", file.LocalPath, "error", derr)
			}
		}
		return nil, fmt.Errorf("error creating file: %w", err)
	}

	if created.Type == models.FileTypeImage {
		enqueueAfterCommit(ctx, s.queue, s.logger, common.ThumbnailQueue,
			jobs.ThumbnailPayload{UserID: ownerID, FileID: created.ID})
	}

	s.logger.Debug(ctx, "file created", "file_id", created.ID, "type", created.Type)
	return created, nil
}

func (s *FileService) checkParent(ctx context.Context, parentID string) error {
	if _, err := uuid.Parse(parentID); err != nil {
		return common.NewValidationError(common.ReasonParentNotFound)
	}
	parent, err := s.repomanager.Files(s.db).GetByID(ctx, parentID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.NewValidationError(common.ReasonParentNotFound)
		}
		return fmt.Errorf("error looking up parent: %w", err)
	}
	if !parent.IsFolder() {
		return common.NewValidationError(common.ReasonParentIsNotAFolder)
	}
	return nil
}

// Get returns the node if requesterID may read it. Nodes the requester
// cannot see are reported as absent.
func (s *FileService) Get(ctx context.Context, requesterID, fileID string) (*models.File, error) {
	f, err := s.lookup(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if !CanRead(requesterID, f) {
		return nil, common.ErrorNotFound
	}
	return f, nil
}

// maxPage is the last page whose offset fits in an int.
const maxPage = math.MaxInt / common.PageSize

// List returns one page of the requester's own nodes under parentID in
// insertion order. Pages past maxPage are empty.
func (s *FileService) List(ctx context.Context, requesterID, parentID string, page int) ([]*models.File, error) {
	if page < 0 {
		page = 0
	}
	if page > maxPage {
		return []*models.File{}, nil
	}
	files, err := s.repomanager.Files(s.db).ListByParent(ctx, requesterID, normalizeParentID(parentID),
		common.PageSize, page*common.PageSize)
	if err != nil {
		return nil, fmt.Errorf("error listing files: %w", err)
	}
	return files, nil
}

// SetVisibility publishes or unpublishes a node owned by requesterID.
func (s *FileService) SetVisibility(ctx context.Context, requesterID, fileID string, isPublic bool) (*models.File, error) {
	f, err := s.lookup(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if !CanWrite(requesterID, f) {
		return nil, common.ErrorNotFound
	}

	// owner is re-checked by the update itself
	updated, err := s.repomanager.Files(s.db).SetPublic(ctx, f.ID, requesterID, isPublic)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error updating file: %w", err)
	}
	return updated, nil
}

// ReadContent returns the bytes of a node, or of one of its thumbnails when
// size names a generated width, along with their MIME type. Other size
// values select the original.
func (s *FileService) ReadContent(ctx context.Context, requesterID, fileID, size string) ([]byte, string, error) {
	f, err := s.Get(ctx, requesterID, fileID)
	if err != nil {
		return nil, "", err
	}
	if f.IsFolder() {
		return nil, "", common.ErrorFolderContent
	}

	path := f.LocalPath
	if w, err := strconv.Atoi(size); err == nil && slices.Contains(common.ThumbnailWidths, w) {
		path = storage.VariantPath(path, strconv.Itoa(w))
	}

	data, err := s.store.Get(ctx, path)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("error reading content: %w", err)
	}
	return data, contentType(f.Name, data), nil
}

func (s *FileService) lookup(ctx context.Context, fileID string) (*models.File, error) {
	if _, err := uuid.Parse(fileID); err != nil {
		return nil, common.ErrorNotFound
	}
	f, err := s.repomanager.Files(s.db).GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error looking up file: %w", err)
	}
	return f, nil
}

func normalizeParentID(id string) string {
	if id == "" {
		return common.RootParentID
	}
	return id
}

// contentType guesses from the extension first and sniffs the bytes when
// the name has none or it is unknown.
func contentType(name string, data []byte) string {
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return mimetype.Detect(data).String()
}
