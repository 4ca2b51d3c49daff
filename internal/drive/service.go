package drive

import (
	"context"
	"errors"
	"fmt"

	"github.com/karac38/gdevapps-portal/internal/auth"
	"github.com/karac38/gdevapps-portal/internal/db"
	"github.com/karac38/gdevapps-portal/internal/logger"
	"github.com/karac38/gdevapps-portal/internal/model"
	perrors "github.com/karac38/gdevapps-portal/pkg/errors"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// Service manages the teacher's Drive folders and file sharing. Folder ids
// are mirrored in the folder registry so they survive between requests.
type Service struct {
	api      API
	folders  db.FolderRepository
	guard    *auth.Guard
	rootName string
	log      zerolog.Logger
}

func NewService(api API, folders db.FolderRepository, guard *auth.Guard, rootName string) *Service {
	return &Service{
		api:      api,
		folders:  folders,
		guard:    guard,
		rootName: rootName,
		log:      logger.Get(),
	}
}

// RootFolder returns the registered root folder of userID, or nil.
func (s *Service) RootFolder(ctx context.Context, userID string) (*model.Folder, error) {
	f, err := s.folders.GetRootFolder(ctx, userID)
	if errors.Is(err, perrors.ErrNotFound) {
		return nil, nil
	}
	return f, err
}

func (s *Service) CreateRootFolder(ctx context.Context, sess auth.Session) (auth.Result[*model.Folder], error) {
	return s.createFolder(ctx, sess, s.rootName, nil)
}

func (s *Service) DeleteRootFolder(ctx context.Context, id int64) error {
	return s.folders.DeleteFolder(ctx, id)
}

// InnerFolder returns the registered folder called name under root, or nil.
func (s *Service) InnerFolder(ctx context.Context, root *model.Folder, name string) (*model.Folder, error) {
	f, err := s.folders.GetInnerFolder(ctx, root.ID, name)
	if errors.Is(err, perrors.ErrNotFound) {
		return nil, nil
	}
	return f, err
}

func (s *Service) CreateInnerFolder(ctx context.Context, sess auth.Session, root *model.Folder, name string) (auth.Result[*model.Folder], error) {
	return s.createFolder(ctx, sess, name, root)
}

func (s *Service) DeleteInnerFolder(ctx context.Context, id int64) error {
	return s.folders.DeleteFolder(ctx, id)
}

// FileState reports whether fileID exists, is trashed or is gone. An empty
// id never exists.
func (s *Service) FileState(ctx context.Context, sess auth.Session, fileID string) (auth.Result[FileState], error) {
	if fileID == "" {
		return auth.Result[FileState]{Value: FileNotExist, Credential: sess.Credential}, nil
	}
	return auth.Call(ctx, s.guard, sess, func(ctx context.Context, cred *oauth2.Token) (FileState, error) {
		return s.api.FileState(ctx, cred, fileID)
	})
}

func (s *Service) MoveFile(ctx context.Context, sess auth.Session, fileID, folderID string) (*oauth2.Token, error) {
	return auth.Do(ctx, s.guard, sess, func(ctx context.Context, cred *oauth2.Token) error {
		return s.api.MoveFile(ctx, cred, fileID, folderID)
	})
}

func (s *Service) GrantPermission(ctx context.Context, sess auth.Session, fileID, email, permType, role string) (*oauth2.Token, error) {
	s.log.Info().
		Str("file_id", fileID).
		Str("email", email).
		Str("role", role).
		Msg("Granting permission")

	return auth.Do(ctx, s.guard, sess, func(ctx context.Context, cred *oauth2.Token) error {
		return s.api.CreatePermission(ctx, cred, fileID, Permission{Email: email, Type: permType, Role: role})
	})
}

func (s *Service) DeletePermission(ctx context.Context, sess auth.Session, fileID, email string) (*oauth2.Token, error) {
	s.log.Info().
		Str("file_id", fileID).
		Str("email", email).
		Msg("Revoking permission")

	return auth.Do(ctx, s.guard, sess, func(ctx context.Context, cred *oauth2.Token) error {
		return s.api.DeletePermission(ctx, cred, fileID, email)
	})
}

// EnsureRootFolder returns the teacher's root folder, creating it when the
// registry has none or Drive no longer has a usable copy. A stale registry
// entry is removed before the folder is recreated.
func (s *Service) EnsureRootFolder(ctx context.Context, sess auth.Session) (auth.Result[*model.Folder], error) {
	root, err := s.RootFolder(ctx, sess.UserID)
	if err != nil {
		return auth.Result[*model.Folder]{Credential: sess.Credential}, fmt.Errorf("failed to get root folder: %w", err)
	}

	if root != nil {
		state, err := s.FileState(ctx, sess, root.GoogleFileID)
		sess = sess.With(state.Credential)
		if err != nil {
			return auth.Result[*model.Folder]{Credential: sess.Credential}, err
		}
		if state.Value.Usable() {
			return auth.Result[*model.Folder]{Value: root, Credential: sess.Credential}, nil
		}

		s.log.Warn().
			Str("user_id", sess.UserID).
			Str("folder_id", root.GoogleFileID).
			Stringer("state", state.Value).
			Msg("Root folder gone from Drive, recreating")
		if err := s.DeleteRootFolder(ctx, root.ID); err != nil {
			return auth.Result[*model.Folder]{Credential: sess.Credential}, fmt.Errorf("failed to delete root folder record: %w", err)
		}
	}

	return s.CreateRootFolder(ctx, sess)
}

// EnsureInnerFolder is EnsureRootFolder for the folder called name under root.
func (s *Service) EnsureInnerFolder(ctx context.Context, sess auth.Session, root *model.Folder, name string) (auth.Result[*model.Folder], error) {
	inner, err := s.InnerFolder(ctx, root, name)
	if err != nil {
		return auth.Result[*model.Folder]{Credential: sess.Credential}, fmt.Errorf("failed to get inner folder: %w", err)
	}

	if inner != nil {
		state, err := s.FileState(ctx, sess, inner.GoogleFileID)
		sess = sess.With(state.Credential)
		if err != nil {
			return auth.Result[*model.Folder]{Credential: sess.Credential}, err
		}
		if state.Value.Usable() {
			return auth.Result[*model.Folder]{Value: inner, Credential: sess.Credential}, nil
		}

		s.log.Warn().
			Str("user_id", sess.UserID).
			Str("folder", name).
			Stringer("state", state.Value).
			Msg("Inner folder gone from Drive, recreating")
		if err := s.DeleteInnerFolder(ctx, inner.ID); err != nil {
			return auth.Result[*model.Folder]{Credential: sess.Credential}, fmt.Errorf("failed to delete inner folder record: %w", err)
		}
	}

	return s.CreateInnerFolder(ctx, sess, root, name)
}

func (s *Service) createFolder(ctx context.Context, sess auth.Session, name string, parent *model.Folder) (auth.Result[*model.Folder], error) {
	parentID := ""
	folder := &model.Folder{FolderName: name, CreatedBy: sess.UserID}
	if parent != nil {
		parentID = parent.GoogleFileID
		folder.ParentFolderID = &parent.ID
	}

	res, err := auth.Call(ctx, s.guard, sess, func(ctx context.Context, cred *oauth2.Token) (string, error) {
		return s.api.CreateFolder(ctx, cred, name, parentID)
	})
	if err != nil {
		s.log.Error().Err(err).Str("folder", name).Msg("Failed to create folder")
		return auth.Result[*model.Folder]{Credential: res.Credential}, err
	}

	folder.GoogleFileID = res.Value
	if err := s.folders.CreateFolder(ctx, folder); err != nil {
		return auth.Result[*model.Folder]{Credential: res.Credential}, fmt.Errorf("failed to save folder record: %w", err)
	}

	s.log.Info().
		Str("user_id", sess.UserID).
		Str("folder", name).
		Str("folder_id", folder.GoogleFileID).
		Msg("Folder created")
	return auth.Result[*model.Folder]{Value: folder, Credential: res.Credential}, nil
}
