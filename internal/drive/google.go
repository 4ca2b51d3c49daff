package drive

import (
	"context"
	"errors"
	"strings"

	"github.com/karac38/gdevapps-portal/internal/config"
	"github.com/karac38/gdevapps-portal/internal/gapi"
	perrors "github.com/karac38/gdevapps-portal/pkg/errors"

	"golang.org/x/oauth2"
	gdrive "google.golang.org/api/drive/v3"
)

const folderMimeType = "application/vnd.google-apps.folder"

// GoogleAPI is API backed by Google Drive v3.
type GoogleAPI struct {
	cfg *config.Config
}

func NewGoogleAPI(cfg *config.Config) *GoogleAPI {
	return &GoogleAPI{cfg: cfg}
}

func (g *GoogleAPI) service(ctx context.Context, cred *oauth2.Token) (*gdrive.Service, error) {
	return gdrive.NewService(ctx, gapi.ClientOptions(g.cfg, cred)...)
}

func (g *GoogleAPI) CreateFolder(ctx context.Context, cred *oauth2.Token, name, parentID string) (string, error) {
	srv, err := g.service(ctx, cred)
	if err != nil {
		return "", err
	}

	folder := &gdrive.File{Name: name, MimeType: folderMimeType}
	if parentID != "" {
		folder.Parents = []string{parentID}
	}

	created, err := srv.Files.Create(folder).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", gapi.Classify(err, "create folder "+name)
	}
	return created.Id, nil
}

func (g *GoogleAPI) FileState(ctx context.Context, cred *oauth2.Token, fileID string) (FileState, error) {
	srv, err := g.service(ctx, cred)
	if err != nil {
		return FileNotExist, err
	}

	f, err := srv.Files.Get(fileID).Fields("id", "trashed").Context(ctx).Do()
	if err != nil {
		err = gapi.Classify(err, "get file "+fileID)
		if errors.Is(err, perrors.ErrNotFound) {
			return FileNotExist, nil
		}
		return FileNotExist, err
	}
	if f.Trashed {
		return FileTrashed, nil
	}
	return FileExists, nil
}

func (g *GoogleAPI) MoveFile(ctx context.Context, cred *oauth2.Token, fileID, folderID string) error {
	srv, err := g.service(ctx, cred)
	if err != nil {
		return err
	}

	f, err := srv.Files.Get(fileID).Fields("parents").Context(ctx).Do()
	if err != nil {
		return gapi.Classify(err, "get file parents "+fileID)
	}

	_, err = srv.Files.Update(fileID, &gdrive.File{}).
		AddParents(folderID).
		RemoveParents(strings.Join(f.Parents, ",")).
		Fields("id", "parents").
		Context(ctx).
		Do()
	return gapi.Classify(err, "move file "+fileID)
}

func (g *GoogleAPI) CreatePermission(ctx context.Context, cred *oauth2.Token, fileID string, p Permission) error {
	srv, err := g.service(ctx, cred)
	if err != nil {
		return err
	}

	_, err = srv.Permissions.Create(fileID, &gdrive.Permission{
		Type:         p.Type,
		Role:         p.Role,
		EmailAddress: p.Email,
	}).Context(ctx).Do()
	return gapi.Classify(err, "create permission on "+fileID)
}

func (g *GoogleAPI) DeletePermission(ctx context.Context, cred *oauth2.Token, fileID, email string) error {
	srv, err := g.service(ctx, cred)
	if err != nil {
		return err
	}

	list, err := srv.Permissions.List(fileID).Fields("permissions(id,emailAddress)").Context(ctx).Do()
	if err != nil {
		return gapi.Classify(err, "list permissions on "+fileID)
	}

	for _, p := range list.Permissions {
		if !strings.EqualFold(p.EmailAddress, email) {
			continue
		}
		if err := srv.Permissions.Delete(fileID, p.Id).Context(ctx).Do(); err != nil {
			return gapi.Classify(err, "delete permission on "+fileID)
		}
	}
	return nil
}
