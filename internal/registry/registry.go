// Package registry keeps the teacher-registered gradebooks in memory and
// writes every change through to the gradebook repository.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/karac38/gdevapps-portal/internal/auth"
	"github.com/karac38/gdevapps-portal/internal/db"
	"github.com/karac38/gdevapps-portal/internal/gradebook"
	"github.com/karac38/gdevapps-portal/internal/logger"
	"github.com/karac38/gdevapps-portal/internal/model"
	perrors "github.com/karac38/gdevapps-portal/pkg/errors"

	"github.com/rs/zerolog"
)

// Validator decides whether a spreadsheet is a GradeBook.
type Validator interface {
	IsGradeBook(ctx context.Context, sess auth.Session, spreadsheetID, link string) (auth.Result[bool], error)
}

type key struct {
	classroomID string
	googleID    string
}

// Registry is safe for concurrent use. Create one per process and pass it to
// whatever needs it.
type Registry struct {
	mu     sync.RWMutex
	items  map[key]model.GradeBook
	loaded map[string]bool

	repo      db.GradeBookRepository
	validator Validator
	now       func() time.Time
	log       zerolog.Logger
}

func New(repo db.GradeBookRepository, validator Validator) *Registry {
	return &Registry{
		items:     make(map[key]model.GradeBook),
		loaded:    make(map[string]bool),
		repo:      repo,
		validator: validator,
		now:       time.Now,
		log:       logger.Named("registry"),
	}
}

// Add registers a gradebook for a classroom. The id is taken from the link
// when not given; the spreadsheet must carry every GradeBook sheet.
func (r *Registry) Add(ctx context.Context, sess auth.Session, req model.GradeBookRequest) (auth.Result[*model.GradeBook], error) {
	fail := func(err error) (auth.Result[*model.GradeBook], error) {
		return auth.Result[*model.GradeBook]{Credential: sess.Credential}, err
	}

	googleID := req.GoogleUniqueID
	if googleID == "" {
		id, ok := gradebook.IDFromLink(req.Link)
		if !ok {
			return fail(fmt.Errorf("%w: %s", perrors.ErrInvalidLink, req.Link))
		}
		googleID = id
	}

	if _, err := r.Get(ctx, req.ClassroomID, googleID); err == nil {
		return fail(fmt.Errorf("%w: gradebook %s in classroom %s", perrors.ErrAlreadyExists, googleID, req.ClassroomID))
	} else if !errors.Is(err, perrors.ErrGradeBookNotFound) {
		return fail(err)
	}

	valid, err := r.validator.IsGradeBook(ctx, sess, googleID, req.Link)
	sess = sess.With(valid.Credential)
	if err != nil {
		return fail(err)
	}
	if !valid.Value {
		return fail(perrors.ValidationError{Field: "link", Value: req.Link, Message: "spreadsheet is not a GradeBook"})
	}

	gb := &model.GradeBook{
		GoogleUniqueID: googleID,
		Name:           req.Name,
		Link:           req.Link,
		ClassroomID:    req.ClassroomID,
		ClassroomName:  req.ClassroomName,
		CreatedBy:      sess.UserID,
		CreatedDate:    r.now().UTC(),
	}
	if err := r.repo.CreateGradeBook(ctx, gb); err != nil {
		if errors.Is(err, perrors.ErrAlreadyExists) || db.IsDuplicate(err) {
			return fail(fmt.Errorf("%w: gradebook %s in classroom %s", perrors.ErrAlreadyExists, googleID, req.ClassroomID))
		}
		return fail(fmt.Errorf("failed to save gradebook: %w", err))
	}

	r.mu.Lock()
	r.items[key{gb.ClassroomID, gb.GoogleUniqueID}] = *gb
	r.mu.Unlock()

	r.log.Info().
		Str("classroom_id", gb.ClassroomID).
		Str("gradebook_id", gb.GoogleUniqueID).
		Msg("Gradebook registered")
	return auth.Result[*model.GradeBook]{Value: gb, Credential: sess.Credential}, nil
}

// Edit changes the name and link of a registered gradebook.
func (r *Registry) Edit(ctx context.Context, classroomID, googleID, name, link string) (*model.GradeBook, error) {
	gb, err := r.Get(ctx, classroomID, googleID)
	if err != nil {
		return nil, err
	}

	if name != "" {
		gb.Name = name
	}
	if link != "" {
		gb.Link = link
	}
	if err := r.repo.UpdateGradeBook(ctx, gb); err != nil {
		return nil, fmt.Errorf("failed to update gradebook: %w", err)
	}

	r.mu.Lock()
	r.items[key{classroomID, googleID}] = *gb
	r.mu.Unlock()
	return gb, nil
}

// Get returns a registered gradebook, loading it from the repository on a
// cache miss.
func (r *Registry) Get(ctx context.Context, classroomID, googleID string) (*model.GradeBook, error) {
	r.mu.RLock()
	gb, ok := r.items[key{classroomID, googleID}]
	r.mu.RUnlock()
	if ok {
		return &gb, nil
	}

	stored, err := r.repo.GetGradeBook(ctx, classroomID, googleID)
	if err != nil {
		if errors.Is(err, perrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s in classroom %s", perrors.ErrGradeBookNotFound, googleID, classroomID)
		}
		return nil, err
	}

	r.mu.Lock()
	r.items[key{classroomID, googleID}] = *stored
	r.mu.Unlock()
	return stored, nil
}

func (r *Registry) Remove(ctx context.Context, classroomID, googleID string) error {
	if _, err := r.Get(ctx, classroomID, googleID); err != nil {
		return err
	}
	if err := r.repo.DeleteGradeBook(ctx, classroomID, googleID); err != nil {
		return fmt.Errorf("failed to delete gradebook: %w", err)
	}

	r.mu.Lock()
	delete(r.items, key{classroomID, googleID})
	r.mu.Unlock()

	r.log.Info().
		Str("classroom_id", classroomID).
		Str("gradebook_id", googleID).
		Msg("Gradebook removed")
	return nil
}

// List returns the user's gradebooks in a classroom, or in every classroom
// when classroomID is empty, ordered by name. Each (user, classroom) scope is
// read from the repository once and served from memory afterwards.
func (r *Registry) List(ctx context.Context, userID, classroomID string) ([]model.GradeBook, error) {
	scope := userID + "/" + classroomID

	r.mu.RLock()
	loaded := r.loaded[scope]
	r.mu.RUnlock()

	if !loaded {
		stored, err := r.repo.ListGradeBooks(ctx, classroomID, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to list gradebooks: %w", err)
		}
		r.mu.Lock()
		for _, gb := range stored {
			r.items[key{gb.ClassroomID, gb.GoogleUniqueID}] = gb
		}
		r.loaded[scope] = true
		r.mu.Unlock()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.GradeBook
	for k, gb := range r.items {
		if gb.CreatedBy == userID && (classroomID == "" || k.classroomID == classroomID) {
			out = append(out, gb)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].GoogleUniqueID < out[j].GoogleUniqueID
	})
	return out, nil
}
