package files

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fileCols = []string{"id", "user_id", "name", "type", "is_public", "parent_id", "local_path", "created_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock, db
}

func TestCreate_File(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	now := time.Now()
	q := `(?s)^\s*INSERT\s+INTO\s+files\s*\(user_id,\s*name,\s*type,\s*is_public,\s*parent_id,\s*local_path\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6\)\s*RETURNING\s+id,`
	mock.ExpectQuery(q).
		WithArgs("u-1", "n.txt", "file", false, "0", sql.NullString{String: "/tmp/x", Valid: true}).
		WillReturnRows(sqlmock.NewRows(fileCols).AddRow("f-1", "u-1", "n.txt", "file", false, "0", "/tmp/x", now))

	got, err := repo.Create(context.Background(), &models.File{
		UserID: "u-1", Name: "n.txt", Type: models.FileTypeFile, ParentID: "0", LocalPath: "/tmp/x",
	})
	require.NoError(t, err)
	assert.Equal(t, "f-1", got.ID)
	assert.Equal(t, models.FileTypeFile, got.Type)
	assert.Equal(t, "/tmp/x", got.LocalPath)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_FolderStoresNullPath(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(`INSERT\s+INTO\s+files`).
		WithArgs("u-1", "docs", "folder", true, "0", sql.NullString{}).
		WillReturnRows(sqlmock.NewRows(fileCols).AddRow("f-2", "u-1", "docs", "folder", true, "0", nil, time.Now()))

	got, err := repo.Create(context.Background(), &models.File{
		UserID: "u-1", Name: "docs", Type: models.FileTypeFolder, ParentID: "0", IsPublic: true,
	})
	require.NoError(t, err)
	assert.Empty(t, got.LocalPath)
	assert.True(t, got.IsPublic)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(`INSERT\s+INTO\s+files`).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.File{UserID: "u", Name: "n", Type: models.FileTypeFolder, ParentID: "0"})
	require.Error(t, err)
	assert.Regexp(t, regexp.MustCompile(`db error: .*db down`), err.Error())
}

func TestGetByID(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	q := `(?s)^SELECT\s+id,.*FROM\s+files\s+WHERE\s+id\s*=\s*\$1$`
	mock.ExpectQuery(q).WithArgs("f-1").
		WillReturnRows(sqlmock.NewRows(fileCols).AddRow("f-1", "u-1", "a.png", "image", false, "0", "/p", time.Now()))
	mock.ExpectQuery(q).WithArgs("ghost").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(q).WithArgs("boom").WillReturnError(errors.New("db err"))

	got, err := repo.GetByID(context.Background(), "f-1")
	require.NoError(t, err)
	assert.Equal(t, models.FileTypeImage, got.Type)

	_, err = repo.GetByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = repo.GetByID(context.Background(), "boom")
	assert.ErrorContains(t, err, "db error: db err")
}

func TestGetByIDAndOwner(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	q := `(?s)^SELECT\s+id,.*FROM\s+files\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2$`
	mock.ExpectQuery(q).WithArgs("f-1", "u-2").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByIDAndOwner(context.Background(), "f-1", "u-2")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListByParent(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	q := `(?s)^SELECT\s+id,.*FROM\s+files\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+parent_id\s*=\s*\$2\s+ORDER\s+BY\s+seq\s+LIMIT\s+\$3\s+OFFSET\s+\$4$`
	rows := sqlmock.NewRows(fileCols).
		AddRow("f-1", "u-1", "a", "folder", false, "0", nil, time.Now()).
		AddRow("f-2", "u-1", "b", "file", true, "0", "/p/b", time.Now())
	mock.ExpectQuery(q).WithArgs("u-1", "0", 20, 40).WillReturnRows(rows)

	got, err := repo.ListByParent(context.Background(), "u-1", "0", 20, 40)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "f-1", got[0].ID)
	assert.Equal(t, "/p/b", got[1].LocalPath)
}

func TestListByParent_Empty(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(`FROM\s+files`).WithArgs("u-1", "0", 20, 0).WillReturnRows(sqlmock.NewRows(fileCols))

	got, err := repo.ListByParent(context.Background(), "u-1", "0", 20, 0)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestListByParent_QueryError(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(`FROM\s+files`).WillReturnError(errors.New("down"))

	_, err := repo.ListByParent(context.Background(), "u-1", "0", 20, 0)
	assert.ErrorContains(t, err, "failed to select files")
}

func TestSetPublic(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	q := `(?s)^UPDATE\s+files\s+SET\s+is_public\s*=\s*\$3\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2\s+RETURNING\s+id,`
	mock.ExpectQuery(q).WithArgs("f-1", "u-1", true).
		WillReturnRows(sqlmock.NewRows(fileCols).AddRow("f-1", "u-1", "a", "file", true, "0", "/p", time.Now()))
	mock.ExpectQuery(q).WithArgs("f-1", "u-2", true).WillReturnError(sql.ErrNoRows)

	got, err := repo.SetPublic(context.Background(), "f-1", "u-1", true)
	require.NoError(t, err)
	assert.True(t, got.IsPublic)

	_, err = repo.SetPublic(context.Background(), "f-1", "u-2", true)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestCount(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(`^SELECT COUNT\(\*\) FROM files$`).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(9)))

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(9), n)
}
