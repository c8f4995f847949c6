package jobs

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/logging"
	"github.com/dmitrijs2005/filesmanager/internal/server/queue"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/filesmanager/internal/server/storage"
	"github.com/google/uuid"
)

// ThumbnailHandler renders the width variants of an uploaded image next to
// the original blob.
type ThumbnailHandler struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       storage.ContentStore
	widths      []int
	logger      logging.Logger
}

func NewThumbnailHandler(db *sql.DB, rm repomanager.RepositoryManager, store storage.ContentStore, l logging.Logger) *ThumbnailHandler {
	return &ThumbnailHandler{
		db:          db,
		repomanager: rm,
		store:       store,
		widths:      common.ThumbnailWidths,
		logger:      l.With("module", "thumbnails"),
	}
}

func (h *ThumbnailHandler) Handle(ctx context.Context, payload json.RawMessage) error {
	var p ThumbnailPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return queue.Permanent(fmt.Errorf("decode payload: %w", err))
	}
	if p.FileID == "" {
		return queue.Permanent(errors.New("missing fileId"))
	}
	if p.UserID == "" {
		return queue.Permanent(errors.New("missing userId"))
	}
	if _, err := uuid.Parse(p.FileID); err != nil {
		return queue.Permanent(errors.New("file not found"))
	}

	file, err := h.repomanager.Files(h.db).GetByIDAndOwner(ctx, p.FileID, p.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return queue.Permanent(errors.New("file not found"))
		}
		return fmt.Errorf("load file: %w", err)
	}

	data, err := h.store.Get(ctx, file.LocalPath)
	if err != nil {
		return queue.Permanent(fmt.Errorf("read content: %w", err))
	}

	src, format, err := decode(data)
	if err != nil {
		return queue.Permanent(err)
	}

	for _, w := range h.widths {
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, imaging.Resize(src, w, 0, imaging.Lanczos), format); err != nil {
			return queue.Permanent(fmt.Errorf("encode %dpx: %w", w, err))
		}
		if err := h.store.Write(ctx, storage.VariantPath(file.LocalPath, strconv.Itoa(w)), buf.Bytes()); err != nil {
			return fmt.Errorf("write %dpx: %w", w, err)
		}
	}

	h.logger.Info(ctx, "thumbnails generated", "file_id", file.ID, "widths", h.widths)
	return nil
}

// decode returns the image and the format it was stored in. Unknown
// formats are re-encoded as PNG.
func decode(data []byte) (image.Image, imaging.Format, error) {
	_, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("decode image: %w", err)
	}
	format, err := imaging.FormatFromExtension(name)
	if err != nil {
		format = imaging.PNG
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, 0, fmt.Errorf("decode image: %w", err)
	}
	return img, format, nil
}
