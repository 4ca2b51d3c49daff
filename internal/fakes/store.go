package fakes

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/karac38/gdevapps-portal/internal/db"
	"github.com/karac38/gdevapps-portal/internal/model"
	"github.com/karac38/gdevapps-portal/pkg/errors"
)

// Store is an in-memory db.Repository.
type Store struct {
	mu     sync.Mutex
	nextID int64

	GradeBooks       map[int64]*model.GradeBook
	ParentGradeBooks map[int64]*model.ParentGradeBook
	Shares           map[int64]*model.ParentSharedGradeBook
	Parents          map[int64]*model.Parent
	ParentStudents   map[int64]*model.ParentStudent
	Folders          map[int64]*model.Folder
	Tokens           []model.UserToken
	ReportJobs       map[string]*model.ReportJob

	// FailTokenUpdate makes UpdateUserToken fail.
	FailTokenUpdate error
}

var _ db.Repository = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		GradeBooks:       map[int64]*model.GradeBook{},
		ParentGradeBooks: map[int64]*model.ParentGradeBook{},
		Shares:           map[int64]*model.ParentSharedGradeBook{},
		Parents:          map[int64]*model.Parent{},
		ParentStudents:   map[int64]*model.ParentStudent{},
		Folders:          map[int64]*model.Folder{},
		ReportJobs:       map[string]*model.ReportJob{},
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func notFound(what string) error {
	return fmt.Errorf("%s: %w", what, errors.ErrNotFound)
}

func sortedKeys[T any](m map[int64]T) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func (s *Store) CreateGradeBook(ctx context.Context, gb *model.GradeBook) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.GradeBooks {
		if existing.ClassroomID == gb.ClassroomID && existing.GoogleUniqueID == gb.GoogleUniqueID {
			return errors.ErrAlreadyExists
		}
	}
	gb.ID = s.id()
	c := *gb
	s.GradeBooks[gb.ID] = &c
	return nil
}

func (s *Store) UpdateGradeBook(ctx context.Context, gb *model.GradeBook) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.GradeBooks[gb.ID]; !ok {
		return notFound("gradebook")
	}
	c := *gb
	s.GradeBooks[gb.ID] = &c
	return nil
}

func (s *Store) DeleteGradeBook(ctx context.Context, classroomID, googleUniqueID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, gb := range s.GradeBooks {
		if gb.ClassroomID == classroomID && gb.GoogleUniqueID == googleUniqueID {
			delete(s.GradeBooks, id)
		}
	}
	return nil
}

func (s *Store) GetGradeBookByID(ctx context.Context, id int64) (*model.GradeBook, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gb, ok := s.GradeBooks[id]; ok {
		c := *gb
		return &c, nil
	}
	return nil, notFound("gradebook")
}

func (s *Store) GetGradeBookByGoogleID(ctx context.Context, googleUniqueID string) (*model.GradeBook, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range sortedKeys(s.GradeBooks) {
		if gb := s.GradeBooks[id]; gb.GoogleUniqueID == googleUniqueID {
			c := *gb
			return &c, nil
		}
	}
	return nil, notFound("gradebook")
}

func (s *Store) GetGradeBook(ctx context.Context, classroomID, googleUniqueID string) (*model.GradeBook, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range sortedKeys(s.GradeBooks) {
		if gb := s.GradeBooks[id]; gb.ClassroomID == classroomID && gb.GoogleUniqueID == googleUniqueID {
			c := *gb
			return &c, nil
		}
	}
	return nil, notFound("gradebook")
}

func (s *Store) ListGradeBooks(ctx context.Context, classroomID, userID string) ([]model.GradeBook, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.GradeBook
	for _, id := range sortedKeys(s.GradeBooks) {
		gb := s.GradeBooks[id]
		if gb.CreatedBy != userID || (classroomID != "" && gb.ClassroomID != classroomID) {
			continue
		}
		out = append(out, *gb)
	}
	return out, nil
}

func (s *Store) CreateParentGradeBook(ctx context.Context, pgb *model.ParentGradeBook) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pgb.ID = s.id()
	c := *pgb
	s.ParentGradeBooks[pgb.ID] = &c
	return nil
}

func (s *Store) DeleteParentGradeBook(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ParentGradeBooks, id)
	return nil
}

func (s *Store) findParentGradeBook(match func(*model.ParentGradeBook) bool) (*model.ParentGradeBook, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range sortedKeys(s.ParentGradeBooks) {
		if p := s.ParentGradeBooks[id]; match(p) {
			c := *p
			return &c, nil
		}
	}
	return nil, notFound("parent gradebook")
}

func (s *Store) GetParentGradeBookByID(ctx context.Context, id int64) (*model.ParentGradeBook, error) {
	return s.findParentGradeBook(func(p *model.ParentGradeBook) bool { return p.ID == id })
}

func (s *Store) GetParentGradeBookByGoogleID(ctx context.Context, googleUniqueID string) (*model.ParentGradeBook, error) {
	return s.findParentGradeBook(func(p *model.ParentGradeBook) bool { return p.GoogleUniqueID == googleUniqueID })
}

func (s *Store) GetParentGradeBookByName(ctx context.Context, name string) (*model.ParentGradeBook, error) {
	return s.findParentGradeBook(func(p *model.ParentGradeBook) bool { return p.Name == name })
}

func (s *Store) GetParentGradeBookByNameAndMain(ctx context.Context, name string, mainGradeBookID int64) (*model.ParentGradeBook, error) {
	return s.findParentGradeBook(func(p *model.ParentGradeBook) bool {
		return p.Name == name && p.MainGradeBookID == mainGradeBookID
	})
}

func (s *Store) FindActiveParentGradeBook(ctx context.Context, mainGradeBookID int64, createdBy string) (*model.ParentGradeBook, error) {
	return s.findParentGradeBook(func(p *model.ParentGradeBook) bool {
		return p.MainGradeBookID == mainGradeBookID && p.CreatedBy == createdBy && !p.IsDeleted
	})
}

func (s *Store) ListSharedParentGradeBooks(ctx context.Context) ([]model.SharedParentGradeBook, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[int64]bool{}
	var out []model.SharedParentGradeBook
	for _, id := range sortedKeys(s.Shares) {
		sh := s.Shares[id]
		p, ok := s.ParentGradeBooks[sh.ParentGradeBookID]
		if !ok || p.IsDeleted || sh.SharedStatus != model.SharedStatusShared || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, model.SharedParentGradeBook{ParentGradeBook: *p, TeacherAspID: sh.TeacherAspID})
	}
	return out, nil
}

func (s *Store) findShare(match func(*model.ParentSharedGradeBook) bool) (*model.ParentSharedGradeBook, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range sortedKeys(s.Shares) {
		if sh := s.Shares[id]; match(sh) {
			c := *sh
			return &c, nil
		}
	}
	return nil, notFound("share")
}

func (s *Store) GetShare(ctx context.Context, parentGradeBookID, parentID int64, teacherAspID string) (*model.ParentSharedGradeBook, error) {
	return s.findShare(func(sh *model.ParentSharedGradeBook) bool {
		return sh.ParentGradeBookID == parentGradeBookID && sh.ParentID == parentID && sh.TeacherAspID == teacherAspID
	})
}

func (s *Store) GetShareByStatus(ctx context.Context, parentGradeBookID int64, teacherAspID string, status model.SharedStatus) (*model.ParentSharedGradeBook, error) {
	return s.findShare(func(sh *model.ParentSharedGradeBook) bool {
		return sh.ParentGradeBookID == parentGradeBookID && sh.TeacherAspID == teacherAspID && sh.SharedStatus == status
	})
}

func (s *Store) ListShares(ctx context.Context, parentGradeBookID int64) ([]model.ParentSharedGradeBook, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.ParentSharedGradeBook
	for _, id := range sortedKeys(s.Shares) {
		if sh := s.Shares[id]; sh.ParentGradeBookID == parentGradeBookID {
			out = append(out, *sh)
		}
	}
	return out, nil
}

func (s *Store) CreateShare(ctx context.Context, share *model.ParentSharedGradeBook) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	share.ID = s.id()
	c := *share
	s.Shares[share.ID] = &c
	return nil
}

func (s *Store) UpdateShare(ctx context.Context, share *model.ParentSharedGradeBook) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Shares[share.ID]; !ok {
		return notFound("share")
	}
	c := *share
	s.Shares[share.ID] = &c
	return nil
}

func (s *Store) DeleteShare(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Shares, id)
	return nil
}

func (s *Store) GetParentByEmail(ctx context.Context, email string) (*model.Parent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range sortedKeys(s.Parents) {
		if p := s.Parents[id]; p.Email == email {
			c := *p
			return &c, nil
		}
	}
	return nil, notFound("parent")
}

func (s *Store) GetParentByID(ctx context.Context, id int64) (*model.Parent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.Parents[id]
	if !ok {
		return nil, notFound("parent")
	}
	c := *p
	return &c, nil
}

func (s *Store) CreateParent(ctx context.Context, p *model.Parent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id()
	c := *p
	s.Parents[p.ID] = &c
	return nil
}

func (s *Store) GetParentStudent(ctx context.Context, parentID int64, studentEmail string, gradeBookID int64) (*model.ParentStudent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range sortedKeys(s.ParentStudents) {
		ps := s.ParentStudents[id]
		if ps.ParentID == parentID && ps.StudentEmail == studentEmail && ps.GradeBookID == gradeBookID {
			c := *ps
			return &c, nil
		}
	}
	return nil, notFound("parent student")
}

func (s *Store) CreateParentStudent(ctx context.Context, ps *model.ParentStudent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ps.ID = s.id()
	c := *ps
	s.ParentStudents[ps.ID] = &c
	return nil
}

func (s *Store) ListParentStudents(ctx context.Context, parentEmail string) ([]model.ParentStudent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.ParentStudent
	for _, id := range sortedKeys(s.ParentStudents) {
		ps := *s.ParentStudents[id]
		p, ok := s.Parents[ps.ParentID]
		if !ok || p.Email != parentEmail {
			continue
		}
		ps.ParentEmail = p.Email
		if gb, ok := s.GradeBooks[ps.GradeBookID]; ok {
			ps.GradeBookGoogleID = gb.GoogleUniqueID
		}
		out = append(out, ps)
	}
	return out, nil
}

func (s *Store) GetRootFolder(ctx context.Context, userID string) (*model.Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range sortedKeys(s.Folders) {
		if f := s.Folders[id]; f.CreatedBy == userID && f.IsRoot() {
			c := *f
			return &c, nil
		}
	}
	return nil, notFound("root folder")
}

func (s *Store) GetInnerFolder(ctx context.Context, rootFolderID int64, name string) (*model.Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range sortedKeys(s.Folders) {
		f := s.Folders[id]
		if f.ParentFolderID != nil && *f.ParentFolderID == rootFolderID && f.FolderName == name {
			c := *f
			return &c, nil
		}
	}
	return nil, notFound("inner folder")
}

func (s *Store) CreateFolder(ctx context.Context, f *model.Folder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f.ID = s.id()
	c := *f
	s.Folders[f.ID] = &c
	return nil
}

func (s *Store) DeleteFolder(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for fid, f := range s.Folders {
		if f.ParentFolderID != nil && *f.ParentFolderID == id {
			delete(s.Folders, fid)
		}
	}
	delete(s.Folders, id)
	return nil
}

func (s *Store) GetAllTokensByUserID(ctx context.Context, userID string) ([]model.UserToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.UserToken
	for _, t := range s.Tokens {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) UpdateUserToken(ctx context.Context, token model.UserToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailTokenUpdate != nil {
		return s.FailTokenUpdate
	}
	for i, t := range s.Tokens {
		if t.UserID == token.UserID && t.LoginProvider == token.LoginProvider && t.Name == token.Name {
			s.Tokens[i].Value = token.Value
			return nil
		}
	}
	s.Tokens = append(s.Tokens, token)
	return nil
}

// Token returns the stored value of a named token.
func (s *Store) Token(userID, name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.Tokens {
		if t.UserID == userID && t.Name == name {
			return t.Value
		}
	}
	return ""
}

func (s *Store) CreateReportJob(ctx context.Context, job *model.ReportJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	job.CreatedAt, job.UpdatedAt = now, now
	c := *job
	s.ReportJobs[job.ID] = &c
	return nil
}

func (s *Store) GetReportJob(ctx context.Context, id string) (*model.ReportJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.ReportJobs[id]; ok {
		c := *j
		return &c, nil
	}
	return nil, notFound("report job")
}

func (s *Store) UpdateReportJobStatus(ctx context.Context, id string, status model.JobStatus, objectKey, errorMessage *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.ReportJobs[id]
	if !ok {
		return notFound("report job")
	}
	j.Status = status
	if objectKey != nil {
		j.ObjectKey = objectKey
	}
	j.ErrorMessage = errorMessage
	j.UpdatedAt = time.Now()
	return nil
}
