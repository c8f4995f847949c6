package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"math"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/dbx"
	"github.com/dmitrijs2005/filesmanager/internal/logging"
	"github.com/dmitrijs2005/filesmanager/internal/server/jobs"
	"github.com/dmitrijs2005/filesmanager/internal/server/models"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/files"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/filesmanager/internal/server/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func b64(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }

func assertReason(t *testing.T, err error, want string) {
	t.Helper()
	reason, ok := common.ValidationReason(err)
	require.True(t, ok, "expected validation error, got %v", err)
	assert.Equal(t, want, reason)
}

func TestCreate_ValidationOrder(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	folder, err := fx.files.Create(ctx, "u1", CreateFileRequest{Name: "docs", Type: "folder"})
	require.NoError(t, err)
	file, err := fx.files.Create(ctx, "u1", CreateFileRequest{Name: "a.txt", Type: "file", Data: b64("hi")})
	require.NoError(t, err)

	tests := []struct {
		name string
		req  CreateFileRequest
		want string
	}{
		{"everything missing", CreateFileRequest{}, "Missing name"},
		{"bad type wins over data", CreateFileRequest{Name: "x", Type: "video"}, "Missing type"},
		{"missing type", CreateFileRequest{Name: "x"}, "Missing type"},
		{"missing data", CreateFileRequest{Name: "x", Type: "file", ParentID: "nope"}, "Missing data"},
		{"missing data image", CreateFileRequest{Name: "x", Type: "image"}, "Missing data"},
		{"parent malformed", CreateFileRequest{Name: "x", Type: "folder", ParentID: "nope"}, "Parent not found"},
		{"parent unknown", CreateFileRequest{Name: "x", Type: "folder", ParentID: "7f8e2c1a-0000-4000-8000-000000000000"}, "Parent not found"},
		{"parent is a file", CreateFileRequest{Name: "x", Type: "file", ParentID: file.ID, Data: b64("x")}, "Parent is not a folder"},
		{"invalid base64", CreateFileRequest{Name: "x", Type: "file", ParentID: folder.ID, Data: "%%%"}, "Invalid data"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.files.Create(ctx, "u1", tt.req)
			assertReason(t, err, tt.want)
		})
	}
}

func TestCreate_StoresContentBeforeRecord(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	folder, err := fx.files.Create(ctx, "u1", CreateFileRequest{Name: "docs", Type: "folder", IsPublic: true})
	require.NoError(t, err)
	assert.Equal(t, common.RootParentID, folder.ParentID)
	assert.Empty(t, folder.LocalPath)
	assert.True(t, folder.IsPublic)

	f, err := fx.files.Create(ctx, "u1", CreateFileRequest{Name: "n.txt", Type: "file", ParentID: folder.ID, Data: b64("hi")})
	require.NoError(t, err)
	assert.Equal(t, folder.ID, f.ParentID)
	require.NotEmpty(t, f.LocalPath)

	data, err := fx.store.Get(ctx, f.LocalPath)
	require.NoError(t, err)
	assert.Equal(t, "hi", string(data))

	raw := []byte{0x00, 0xff, 0x80, 0x0a, 0x00, 0xfe, 0x7f, 0xc3, 0x28, 0x00}
	bin, err := fx.files.Create(ctx, "u1", CreateFileRequest{
		Name: "blob.bin",
		Type: "file",
		Data: base64.StdEncoding.EncodeToString(raw),
	})
	require.NoError(t, err)

	data, err = fx.store.Get(ctx, bin.LocalPath)
	require.NoError(t, err)
	assert.Equal(t, raw, data)

	// only images produce a thumbnail job
	assert.Empty(t, fx.queue.jobs)
}

func TestCreate_ImageEnqueuesThumbnails(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	img, err := fx.files.Create(ctx, "u1", CreateFileRequest{Name: "cat.png", Type: "image", Data: b64("png")})
	require.NoError(t, err)

	require.Len(t, fx.queue.jobs, 1)
	assert.Equal(t, common.ThumbnailQueue, fx.queue.jobs[0].queue)
	assert.Equal(t, jobs.ThumbnailPayload{UserID: "u1", FileID: img.ID}, fx.queue.jobs[0].payload)

	fx.queue.err = errBoom
	_, err = fx.files.Create(ctx, "u1", CreateFileRequest{Name: "dog.png", Type: "image", Data: b64("png")})
	require.NoError(t, err)
}

func TestCreate_ContentStoreFailure(t *testing.T) {
	fx := newFixture(t)
	svc := NewFileService(nil, fx.rm, &failingStore{ContentStore: fx.store, putErr: errBoom}, fx.queue, logging.Nop{})

	_, err := svc.Create(context.Background(), "u1", CreateFileRequest{Name: "a", Type: "file", Data: b64("x")})
	require.ErrorIs(t, err, errBoom)
	_, isValidation := common.ValidationReason(err)
	assert.False(t, isValidation)

	n, err := fx.rm.Files(nil).Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGet_Visibility(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	private, err := fx.files.Create(ctx, "u1", CreateFileRequest{Name: "p", Type: "folder"})
	require.NoError(t, err)
	public, err := fx.files.Create(ctx, "u1", CreateFileRequest{Name: "q", Type: "folder", IsPublic: true})
	require.NoError(t, err)

	got, err := fx.files.Get(ctx, "u1", private.ID)
	require.NoError(t, err)
	assert.Equal(t, private.ID, got.ID)

	_, err = fx.files.Get(ctx, "u2", private.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = fx.files.Get(ctx, "u2", public.ID)
	assert.NoError(t, err)

	_, err = fx.files.Get(ctx, "u1", "not-a-uuid")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestList_StablePartition(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	const n = 45
	want := map[string]bool{}
	for i := 0; i < n; i++ {
		f, err := fx.files.Create(ctx, "u1", CreateFileRequest{Name: fmt.Sprintf("f%d", i), Type: "folder", IsPublic: i%2 == 0})
		require.NoError(t, err)
		want[f.ID] = true
	}
	// other users' files never show up, public or not
	_, err := fx.files.Create(ctx, "u2", CreateFileRequest{Name: "other", Type: "folder", IsPublic: true})
	require.NoError(t, err)

	seen := map[string]bool{}
	for page := 0; page < 3; page++ {
		got, err := fx.files.List(ctx, "u1", "0", page)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(got), common.PageSize)
		for _, f := range got {
			assert.False(t, seen[f.ID], "duplicate %s", f.ID)
			seen[f.ID] = true
		}
	}
	assert.Equal(t, want, seen)

	again, err := fx.files.List(ctx, "u1", "", 0)
	require.NoError(t, err)
	first, err := fx.files.List(ctx, "u1", "0", -3)
	require.NoError(t, err)
	assert.Equal(t, again, first)

	empty, err := fx.files.List(ctx, "u1", "0", 10)
	require.NoError(t, err)
	assert.Empty(t, empty)

	// offsets that would overflow never wrap back to the first page
	for _, page := range []int{maxPage + 1, maxPage * 2, math.MaxInt} {
		got, err := fx.files.List(ctx, "u1", "0", page)
		require.NoError(t, err)
		assert.Empty(t, got, "page %d", page)
		assert.NotNil(t, got, "page %d", page)
	}
}

func TestList_PastLastPageSkipsQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	svc := NewFileService(db, repomanager.NewPostgresRepositoryManager(), nil, &fakeQueue{}, logging.Nop{})

	got, err := svc.List(context.Background(), "u1", "0", maxPage+1)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetVisibility(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	f, err := fx.files.Create(ctx, "u1", CreateFileRequest{Name: "a", Type: "folder"})
	require.NoError(t, err)

	pub, err := fx.files.SetVisibility(ctx, "u1", f.ID, true)
	require.NoError(t, err)
	assert.True(t, pub.IsPublic)

	// public but not owned: still not writable
	_, err = fx.files.SetVisibility(ctx, "u2", f.ID, false)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	still, err := fx.files.Get(ctx, "u1", f.ID)
	require.NoError(t, err)
	assert.True(t, still.IsPublic)

	priv, err := fx.files.Create(ctx, "u1", CreateFileRequest{Name: "b", Type: "folder"})
	require.NoError(t, err)
	_, err = fx.files.SetVisibility(ctx, "u2", priv.ID, true)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = fx.files.Get(ctx, "u2", priv.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	priv, err = fx.files.Get(ctx, "u1", priv.ID)
	require.NoError(t, err)
	assert.False(t, priv.IsPublic)

	unpub, err := fx.files.SetVisibility(ctx, "u1", f.ID, false)
	require.NoError(t, err)
	assert.False(t, unpub.IsPublic)

	_, err = fx.files.SetVisibility(ctx, "u1", "bogus", true)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestReadContent(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	folder, err := fx.files.Create(ctx, "u1", CreateFileRequest{Name: "docs", Type: "folder", IsPublic: true})
	require.NoError(t, err)
	txt, err := fx.files.Create(ctx, "u1", CreateFileRequest{Name: "n.txt", Type: "file", Data: b64("hi")})
	require.NoError(t, err)
	img, err := fx.files.Create(ctx, "u1", CreateFileRequest{Name: "cat.png", Type: "image", Data: b64("base"), IsPublic: true})
	require.NoError(t, err)

	data, typ, err := fx.files.ReadContent(ctx, "u1", txt.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "hi", string(data))
	assert.Contains(t, typ, "text/plain")

	_, _, err = fx.files.ReadContent(ctx, "", txt.ID, "")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, _, err = fx.files.ReadContent(ctx, "u2", txt.ID, "")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, _, err = fx.files.ReadContent(ctx, "u1", folder.ID, "")
	assert.ErrorIs(t, err, common.ErrorFolderContent)

	// thumbnail not generated yet
	_, _, err = fx.files.ReadContent(ctx, "", img.ID, "100")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	require.NoError(t, fx.store.Write(ctx, storage.VariantPath(lookupPath(t, fx, img.ID), "100"), []byte("small")))
	data, typ, err = fx.files.ReadContent(ctx, "", img.ID, "100")
	require.NoError(t, err)
	assert.Equal(t, "small", string(data))
	assert.Equal(t, "image/png", typ)

	// unsupported sizes fall back to the original
	data, _, err = fx.files.ReadContent(ctx, "", img.ID, "42")
	require.NoError(t, err)
	assert.Equal(t, "base", string(data))
}

func TestReadContent_SniffsUnknownExtension(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	f, err := fx.files.Create(ctx, "u1", CreateFileRequest{Name: "README", Type: "file", Data: b64("%PDF-1.4 hello")})
	require.NoError(t, err)

	_, typ, err := fx.files.ReadContent(ctx, "u1", f.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", typ)
}

func TestCanReadCanWrite(t *testing.T) {
	private := &models.File{UserID: "u1"}
	public := &models.File{UserID: "u1", IsPublic: true}

	assert.True(t, CanRead("u1", private))
	assert.False(t, CanRead("u2", private))
	assert.False(t, CanRead("", private))
	assert.True(t, CanRead("", public))

	assert.True(t, CanWrite("u1", public))
	assert.False(t, CanWrite("u2", public))
	assert.False(t, CanWrite("", &models.File{}))
}

func TestStatusAndStats(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	_, err = fx.users.Register(ctx, "a@x.com", "pw")
	require.NoError(t, err)
	_, err = fx.files.Create(ctx, "u1", CreateFileRequest{Name: "d", Type: "folder"})
	require.NoError(t, err)

	svc := NewStatusService(db, fx.rm, fx.sessions)

	mock.ExpectPing()
	assert.Equal(t, Status{Redis: true, DB: true}, svc.Status(ctx))

	mock.ExpectBegin()
	mock.ExpectCommit()
	st, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Users: 1, Files: 1}, st)

	mock.ExpectPing().WillReturnError(errBoom)
	fx.mr.Close()
	assert.Equal(t, Status{}, svc.Status(ctx))

	mock.ExpectBegin().WillReturnError(errBoom)
	_, err = svc.Stats(ctx)
	assert.ErrorIs(t, err, errBoom)

	require.NoError(t, mock.ExpectationsWereMet())
}

func lookupPath(t *testing.T, fx *fixture, id string) string {
	t.Helper()
	f, err := fx.rm.Files(nil).GetByID(context.Background(), id)
	require.NoError(t, err)
	return f.LocalPath
}

type failingCreateRepo struct {
	files.Repository
}

func (failingCreateRepo) Create(context.Context, *models.File) (*models.File, error) {
	return nil, errBoom
}

type failingCreateManager struct {
	*repomanager.InMemoryRepositoryManager
}

func (m failingCreateManager) Files(db dbx.DBTX) files.Repository {
	return failingCreateRepo{m.InMemoryRepositoryManager.Files(db)}
}

func TestCreate_RecordFailureRemovesContent(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	store := &failingStore{ContentStore: fx.store}
	svc := NewFileService(nil, failingCreateManager{fx.rm}, store, fx.queue, logging.Nop{})

	_, err := svc.Create(ctx, "u1", CreateFileRequest{Name: "a.png", Type: "image", Data: b64("x")})
	require.ErrorIs(t, err, errBoom)

	require.Len(t, store.deleted, 1)
	_, err = fx.store.Get(ctx, store.deleted[0])
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.Empty(t, fx.queue.jobs)
}
