package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/karac38/gdevapps-portal/internal/auth"
	"github.com/karac38/gdevapps-portal/internal/db"
	"github.com/karac38/gdevapps-portal/internal/parentbook"
	perrors "github.com/karac38/gdevapps-portal/pkg/errors"
)

// SyncRepository is what parent gradebook syncing reads.
type SyncRepository interface {
	db.TokenRepository
	db.GradeBookRepository
	db.ParentGradeBookRepository
}

// ParentSyncer refreshes one parent gradebook from its main gradebook,
// acting as the teacher who owns it.
type ParentSyncer struct {
	repo  SyncRepository
	synth *parentbook.Synthesizer
}

func NewParentSyncer(repo SyncRepository, synth *parentbook.Synthesizer) *ParentSyncer {
	return &ParentSyncer{repo: repo, synth: synth}
}

// Sync rewrites the parent gradebook parentGradeBookID with the current
// student row. userID is the teacher whose credential is used.
func (s *ParentSyncer) Sync(ctx context.Context, userID string, parentGradeBookID int64) error {
	pgb, err := s.repo.GetParentGradeBookByID(ctx, parentGradeBookID)
	if err != nil {
		return missing(err, perrors.ErrParentGradeBookNotFound, parentGradeBookID)
	}

	main, err := s.repo.GetGradeBookByID(ctx, pgb.MainGradeBookID)
	if err != nil {
		return missing(err, perrors.ErrGradeBookNotFound, pgb.MainGradeBookID)
	}

	_, parentEmail, studentEmail, ok := parentbook.ParseName(pgb.Name)
	if !ok {
		return perrors.ValidationError{Field: "name", Value: pgb.Name, Message: "not a parent gradebook name"}
	}

	sess, err := auth.LoadSession(ctx, s.repo, userID)
	if err != nil {
		return err
	}

	_, err = s.synth.Sync(ctx, sess, main, studentEmail, parentEmail)
	return err
}

// missing reports a record that is not there as the domain error and passes
// every other repository failure through.
func missing(err, domain error, id int64) error {
	if errors.Is(err, perrors.ErrNotFound) {
		return fmt.Errorf("%w: %d", domain, id)
	}
	return fmt.Errorf("failed to load record %d: %w", id, err)
}
