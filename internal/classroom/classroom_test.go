package classroom_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/karac38/gdevapps-portal/internal/auth"
	"github.com/karac38/gdevapps-portal/internal/classroom"
	"github.com/karac38/gdevapps-portal/internal/fakes"
	"github.com/karac38/gdevapps-portal/internal/model"
	perrors "github.com/karac38/gdevapps-portal/pkg/errors"
)

type courses struct {
	calls []string
	err   error
}

func (c *courses) TeacherCourses(_ context.Context, cred *oauth2.Token) ([]model.ClassInfo, error) {
	c.calls = append(c.calls, cred.AccessToken)
	if c.err != nil {
		return nil, c.err
	}
	if cred.AccessToken == "stale" {
		return nil, perrors.ErrUnauthorized
	}
	return []model.ClassInfo{{ID: "c1", Name: "Math 7"}}, nil
}

func TestListCourses(t *testing.T) {
	api := &courses{}
	guard := auth.NewGuard(&fakes.Refresher{Token: &oauth2.Token{AccessToken: "fresh"}}, fakes.NewStore())
	client := classroom.NewClient(api, guard)

	res, err := client.ListCourses(context.Background(), auth.Session{
		UserID:     "teacher-1",
		Credential: &oauth2.Token{AccessToken: "stale"},
	})
	require.NoError(t, err)

	assert.Equal(t, []model.ClassInfo{{ID: "c1", Name: "Math 7"}}, res.Value)
	assert.Equal(t, "fresh", res.Credential.AccessToken)
	assert.Equal(t, []string{"stale", "fresh"}, api.calls)
}

func TestListCoursesError(t *testing.T) {
	boom := errors.New("forbidden")
	guard := auth.NewGuard(&fakes.Refresher{}, fakes.NewStore())
	client := classroom.NewClient(&courses{err: boom}, guard)

	_, err := client.ListCourses(context.Background(), auth.Session{Credential: &oauth2.Token{AccessToken: "a"}})
	assert.ErrorIs(t, err, boom)
}
