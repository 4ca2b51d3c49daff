package fakes

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/karac38/gdevapps-portal/internal/drive"
	"github.com/karac38/gdevapps-portal/pkg/errors"

	"golang.org/x/oauth2"
)

// DriveFile is one file or folder held by Drive.
type DriveFile struct {
	Name        string
	Folder      bool
	Parent      string
	Trashed     bool
	Permissions []drive.Permission
}

// Drive is an in-memory drive.API.
type Drive struct {
	mu     sync.Mutex
	nextID int

	Files map[string]*DriveFile
	// Expired lists access tokens answered with ErrUnauthorized.
	Expired map[string]bool
	// Fail makes the named method fail with the given error.
	Fail  map[string]error
	Calls []string
}

var _ drive.API = (*Drive)(nil)

func NewDrive() *Drive {
	return &Drive{
		Files:   map[string]*DriveFile{},
		Expired: map[string]bool{},
		Fail:    map[string]error{},
	}
}

// AddFile registers a plain file under parent.
func (d *Drive) AddFile(id, name, parent string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Files[id] = &DriveFile{Name: name, Parent: parent}
}

// Trash moves a file to the trash.
func (d *Drive) Trash(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if f, ok := d.Files[id]; ok {
		f.Trashed = true
	}
}

// Remove deletes a file permanently.
func (d *Drive) Remove(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.Files, id)
}

// File returns a copy of the file, or nil.
func (d *Drive) File(id string) *DriveFile {
	d.mu.Lock()
	defer d.mu.Unlock()
	f, ok := d.Files[id]
	if !ok {
		return nil
	}
	cp := *f
	cp.Permissions = append([]drive.Permission(nil), f.Permissions...)
	return &cp
}

// Count returns how many recorded calls start with method.
func (d *Drive) Count(method string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, c := range d.Calls {
		if strings.HasPrefix(c, method+" ") {
			n++
		}
	}
	return n
}

func (d *Drive) begin(method string, cred *oauth2.Token, id string) error {
	d.Calls = append(d.Calls, method+" "+id)
	if cred == nil || d.Expired[cred.AccessToken] {
		return fmt.Errorf("drive %s: %w", method, errors.ErrUnauthorized)
	}
	return d.Fail[method]
}

func (d *Drive) CreateFolder(_ context.Context, cred *oauth2.Token, name, parentID string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.begin("CreateFolder", cred, name); err != nil {
		return "", err
	}
	d.nextID++
	id := fmt.Sprintf("folder-%d", d.nextID)
	d.Files[id] = &DriveFile{Name: name, Folder: true, Parent: parentID}
	return id, nil
}

func (d *Drive) FileState(_ context.Context, cred *oauth2.Token, fileID string) (drive.FileState, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.begin("FileState", cred, fileID); err != nil {
		return drive.FileNotExist, err
	}
	f, ok := d.Files[fileID]
	switch {
	case !ok:
		return drive.FileNotExist, nil
	case f.Trashed:
		return drive.FileTrashed, nil
	default:
		return drive.FileExists, nil
	}
}

func (d *Drive) MoveFile(_ context.Context, cred *oauth2.Token, fileID, folderID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.begin("MoveFile", cred, fileID); err != nil {
		return err
	}
	f, ok := d.Files[fileID]
	if !ok {
		return notFound("file " + fileID)
	}
	f.Parent = folderID
	return nil
}

func (d *Drive) CreatePermission(_ context.Context, cred *oauth2.Token, fileID string, p drive.Permission) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.begin("CreatePermission", cred, fileID); err != nil {
		return err
	}
	f, ok := d.Files[fileID]
	if !ok {
		return notFound("file " + fileID)
	}
	f.Permissions = append(f.Permissions, p)
	return nil
}

func (d *Drive) DeletePermission(_ context.Context, cred *oauth2.Token, fileID, email string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.begin("DeletePermission", cred, fileID); err != nil {
		return err
	}
	f, ok := d.Files[fileID]
	if !ok {
		return notFound("file " + fileID)
	}
	kept := f.Permissions[:0]
	for _, p := range f.Permissions {
		if !strings.EqualFold(p.Email, email) {
			kept = append(kept, p)
		}
	}
	f.Permissions = kept
	return nil
}
