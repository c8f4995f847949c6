// Package models defines server-side data models persisted in the database.
package models

import "time"

// FileType is the kind of a file node.
type FileType string

const (
	FileTypeFolder FileType = "folder"
	FileTypeFile   FileType = "file"
	FileTypeImage  FileType = "image"
)

// Valid reports whether t is one of the known node kinds.
func (t FileType) Valid() bool {
	switch t {
	case FileTypeFolder, FileTypeFile, FileTypeImage:
		return true
	}
	return false
}

// File is a node of a user's tree: a folder, a plain file or an image.
type File struct {
	ID       string
	UserID   string
	Name     string
	Type     FileType
	IsPublic bool
	// ParentID is common.RootParentID for top-level nodes.
	ParentID string
	// LocalPath is the content store path. Empty for folders.
	LocalPath string
	CreatedAt time.Time
}

// IsFolder reports whether f can hold children.
func (f *File) IsFolder() bool {
	return f.Type == FileTypeFolder
}
