package httpapi

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/server/models"
)

// parentRef is a parent folder reference. On the wire the root is the
// number 0; requests may also send "0" or a folder id.
type parentRef string

func (p *parentRef) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*p = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*p = parentRef(s)
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err == nil {
		*p = parentRef(strconv.FormatInt(n, 10))
		return nil
	}
	return errors.New("parentId must be a string or an integer")
}

func (p parentRef) MarshalJSON() ([]byte, error) {
	if p == "" || string(p) == common.RootParentID {
		return []byte("0"), nil
	}
	return json.Marshal(string(p))
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type createFileRequest struct {
	Name     string    `json:"name"`
	Type     string    `json:"type"`
	ParentID parentRef `json:"parentId"`
	IsPublic bool      `json:"isPublic"`
	Data     string    `json:"data"`
}

// fileResponse never carries the storage path.
type fileResponse struct {
	ID       string    `json:"id"`
	UserID   string    `json:"userId"`
	Name     string    `json:"name"`
	Type     string    `json:"type"`
	IsPublic bool      `json:"isPublic"`
	ParentID parentRef `json:"parentId"`
}

func newFileResponse(f *models.File) fileResponse {
	return fileResponse{
		ID:       f.ID,
		UserID:   f.UserID,
		Name:     f.Name,
		Type:     string(f.Type),
		IsPublic: f.IsPublic,
		ParentID: parentRef(f.ParentID),
	}
}

func newFileListResponse(files []*models.File) []fileResponse {
	out := make([]fileResponse, 0, len(files))
	for _, f := range files {
		out = append(out, newFileResponse(f))
	}
	return out
}
