package drive_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/karac38/gdevapps-portal/internal/auth"
	"github.com/karac38/gdevapps-portal/internal/drive"
	"github.com/karac38/gdevapps-portal/internal/fakes"
)

func newService() (*drive.Service, *fakes.Drive, *fakes.Store, auth.Session) {
	api := fakes.NewDrive()
	store := fakes.NewStore()
	guard := auth.NewGuard(&fakes.Refresher{Token: &oauth2.Token{AccessToken: "fresh"}}, store)
	sess := auth.Session{UserID: "teacher-1", RefreshToken: "r", Credential: &oauth2.Token{AccessToken: "a"}}
	return drive.NewService(api, store, guard, "GradeBook Parents"), api, store, sess
}

func TestEnsureRootFolderCreatesOnce(t *testing.T) {
	svc, api, store, sess := newService()
	ctx := context.Background()

	first, err := svc.EnsureRootFolder(ctx, sess)
	require.NoError(t, err)
	require.NotNil(t, first.Value)
	assert.True(t, first.Value.IsRoot())
	assert.Equal(t, "GradeBook Parents", first.Value.FolderName)
	assert.Equal(t, "teacher-1", first.Value.CreatedBy)

	second, err := svc.EnsureRootFolder(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, first.Value.GoogleFileID, second.Value.GoogleFileID)
	assert.Equal(t, 1, api.Count("CreateFolder"))
	assert.Len(t, store.Folders, 1)
}

func TestEnsureRootFolderRecreatesWhenGone(t *testing.T) {
	for _, tc := range []struct {
		name   string
		remove func(api *fakes.Drive, id string)
	}{
		{name: "trashed", remove: func(api *fakes.Drive, id string) { api.Trash(id) }},
		{name: "deleted", remove: func(api *fakes.Drive, id string) { api.Remove(id) }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			svc, api, store, sess := newService()
			ctx := context.Background()

			root, err := svc.EnsureRootFolder(ctx, sess)
			require.NoError(t, err)
			inner, err := svc.EnsureInnerFolder(ctx, sess, root.Value, "ann@school.org")
			require.NoError(t, err)

			tc.remove(api, root.Value.GoogleFileID)

			again, err := svc.EnsureRootFolder(ctx, sess)
			require.NoError(t, err)
			assert.NotEqual(t, root.Value.GoogleFileID, again.Value.GoogleFileID)
			assert.NotContains(t, store.Folders, root.Value.ID, "stale record removed")
			assert.NotContains(t, store.Folders, inner.Value.ID, "inner folders go with their root")
			assert.Len(t, store.Folders, 1)
		})
	}
}

func TestEnsureInnerFolder(t *testing.T) {
	svc, api, store, sess := newService()
	ctx := context.Background()

	root, err := svc.EnsureRootFolder(ctx, sess)
	require.NoError(t, err)

	inner, err := svc.EnsureInnerFolder(ctx, sess, root.Value, "ann@school.org")
	require.NoError(t, err)
	require.NotNil(t, inner.Value.ParentFolderID)
	assert.Equal(t, root.Value.ID, *inner.Value.ParentFolderID)
	assert.Equal(t, root.Value.GoogleFileID, api.File(inner.Value.GoogleFileID).Parent)

	same, err := svc.EnsureInnerFolder(ctx, sess, root.Value, "ann@school.org")
	require.NoError(t, err)
	assert.Equal(t, inner.Value.ID, same.Value.ID)

	api.Trash(inner.Value.GoogleFileID)
	recreated, err := svc.EnsureInnerFolder(ctx, sess, root.Value, "ann@school.org")
	require.NoError(t, err)
	assert.NotEqual(t, inner.Value.GoogleFileID, recreated.Value.GoogleFileID)
	assert.Len(t, store.Folders, 2)
}

func TestFileState(t *testing.T) {
	svc, api, _, sess := newService()
	ctx := context.Background()
	api.AddFile("f1", "file", "")
	api.AddFile("f2", "file", "")
	api.Trash("f2")

	tests := []struct {
		id   string
		want drive.FileState
	}{
		{id: "f1", want: drive.FileExists},
		{id: "f2", want: drive.FileTrashed},
		{id: "f3", want: drive.FileNotExist},
		{id: "", want: drive.FileNotExist},
	}
	for _, tt := range tests {
		res, err := svc.FileState(ctx, sess, tt.id)
		require.NoError(t, err)
		assert.Equal(t, tt.want, res.Value, tt.id)
	}
	assert.Equal(t, 3, api.Count("FileState"), "empty id makes no call")
	assert.Equal(t, "TRASHED", drive.FileTrashed.String())
}

func TestPermissions(t *testing.T) {
	svc, api, _, sess := newService()
	ctx := context.Background()
	api.AddFile("f1", "file", "")

	_, err := svc.GrantPermission(ctx, sess, "f1", "mom@mail.com", drive.PermissionTypeUser, drive.RoleReader)
	require.NoError(t, err)
	assert.Equal(t, []drive.Permission{{Email: "mom@mail.com", Type: "user", Role: "reader"}}, api.File("f1").Permissions)

	_, err = svc.DeletePermission(ctx, sess, "f1", "MOM@mail.com")
	require.NoError(t, err)
	assert.Empty(t, api.File("f1").Permissions)
}

func TestMoveFileRefreshesCredential(t *testing.T) {
	svc, api, _, sess := newService()
	api.AddFile("f1", "file", "")
	api.Expired["a"] = true

	cred, err := svc.MoveFile(context.Background(), sess, "f1", "folder-9")
	require.NoError(t, err)
	assert.Equal(t, "fresh", cred.AccessToken)
	assert.Equal(t, "folder-9", api.File("f1").Parent)
}
