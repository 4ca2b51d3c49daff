package drive

import (
	"context"

	"golang.org/x/oauth2"
)

type FileState int

const (
	FileNotExist FileState = iota
	FileExists
	FileTrashed
)

func (s FileState) String() string {
	switch s {
	case FileExists:
		return "EXISTS"
	case FileTrashed:
		return "TRASHED"
	default:
		return "NOTEXIST"
	}
}

// Usable reports whether the file can be written to and shared.
func (s FileState) Usable() bool {
	return s == FileExists
}

const (
	PermissionTypeUser = "user"
	RoleReader         = "reader"
)

type Permission struct {
	Email string
	Type  string
	Role  string
}

// API is the remote file store. Implementations return an error wrapping
// errors.ErrUnauthorized when cred is expired or revoked.
type API interface {
	CreateFolder(ctx context.Context, cred *oauth2.Token, name, parentID string) (string, error)
	FileState(ctx context.Context, cred *oauth2.Token, fileID string) (FileState, error)
	MoveFile(ctx context.Context, cred *oauth2.Token, fileID, folderID string) error
	CreatePermission(ctx context.Context, cred *oauth2.Token, fileID string, p Permission) error
	// DeletePermission removes every permission held by email on the file.
	DeletePermission(ctx context.Context, cred *oauth2.Token, fileID, email string) error
}
