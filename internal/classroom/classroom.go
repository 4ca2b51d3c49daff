// Package classroom lists the teacher's Google Classroom courses so a
// gradebook can be attached to one of them.
package classroom

import (
	"context"

	"github.com/karac38/gdevapps-portal/internal/auth"
	"github.com/karac38/gdevapps-portal/internal/config"
	"github.com/karac38/gdevapps-portal/internal/gapi"
	"github.com/karac38/gdevapps-portal/internal/logger"
	"github.com/karac38/gdevapps-portal/internal/model"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	gclassroom "google.golang.org/api/classroom/v1"
)

// API lists courses the credential's owner teaches.
type API interface {
	TeacherCourses(ctx context.Context, cred *oauth2.Token) ([]model.ClassInfo, error)
}

// GoogleAPI is API backed by Google Classroom v1.
type GoogleAPI struct {
	cfg *config.Config
}

func NewGoogleAPI(cfg *config.Config) *GoogleAPI {
	return &GoogleAPI{cfg: cfg}
}

func (g *GoogleAPI) TeacherCourses(ctx context.Context, cred *oauth2.Token) ([]model.ClassInfo, error) {
	srv, err := gclassroom.NewService(ctx, gapi.ClientOptions(g.cfg, cred)...)
	if err != nil {
		return nil, err
	}

	var classes []model.ClassInfo
	err = srv.Courses.List().
		TeacherId("me").
		CourseStates("ACTIVE").
		Context(ctx).
		Pages(ctx, func(page *gclassroom.ListCoursesResponse) error {
			for _, c := range page.Courses {
				classes = append(classes, model.ClassInfo{
					ID:      c.Id,
					Name:    c.Name,
					Section: c.Section,
					Room:    c.Room,
					Link:    c.AlternateLink,
				})
			}
			return nil
		})
	if err != nil {
		return nil, gapi.Classify(err, "list courses")
	}
	return classes, nil
}

type Client struct {
	api   API
	guard *auth.Guard
	log   zerolog.Logger
}

func NewClient(api API, guard *auth.Guard) *Client {
	return &Client{api: api, guard: guard, log: logger.Get()}
}

// ListCourses returns the active courses taught by the session's user.
func (c *Client) ListCourses(ctx context.Context, sess auth.Session) (auth.Result[[]model.ClassInfo], error) {
	res, err := auth.Call(ctx, c.guard, sess, func(ctx context.Context, cred *oauth2.Token) ([]model.ClassInfo, error) {
		return c.api.TeacherCourses(ctx, cred)
	})
	if err != nil {
		c.log.Error().Err(err).Str("user_id", sess.UserID).Msg("Failed to list courses")
		return res, err
	}

	c.log.Debug().Str("user_id", sess.UserID).Int("count", len(res.Value)).Msg("Courses listed")
	return res, nil
}
