package fakes

import (
	"context"
	"fmt"
	"sync"

	"github.com/karac38/gdevapps-portal/internal/spreadsheet"
	"github.com/karac38/gdevapps-portal/pkg/errors"

	"golang.org/x/oauth2"
)

// SheetFile is one spreadsheet held by Sheets. Values are keyed by the exact
// range string they were written with.
type SheetFile struct {
	Title  string
	Sheets []spreadsheet.SheetSpec
	Values map[string][][]interface{}
	Modes  map[string]spreadsheet.InputMode
}

// Sheets is an in-memory spreadsheet.API.
type Sheets struct {
	mu     sync.Mutex
	nextID int

	Files map[string]*SheetFile
	// Expired lists access tokens answered with ErrUnauthorized.
	Expired map[string]bool
	// Fail makes the named method fail with the given error.
	Fail map[string]error
	// Calls records "method id range" for every call, in order.
	Calls []string
	// Drive, when set, learns about every created spreadsheet.
	Drive *Drive
}

var _ spreadsheet.API = (*Sheets)(nil)

func NewSheets() *Sheets {
	return &Sheets{
		Files:   map[string]*SheetFile{},
		Expired: map[string]bool{},
		Fail:    map[string]error{},
	}
}

// Put stores rows under rng of spreadsheet id, creating the file if needed.
func (s *Sheets) Put(id, rng string, rows [][]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.file(id).Values[rng] = rows
}

// AddGradeBook registers a spreadsheet carrying the given sheet titles.
func (s *Sheets) AddGradeBook(id string, titles ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.file(id)
	f.Sheets = f.Sheets[:0]
	for i, t := range titles {
		f.Sheets = append(f.Sheets, spreadsheet.SheetSpec{Index: int64(i), Title: t})
	}
}

// Values returns what is stored under rng, or nil.
func (s *Sheets) Values(id, rng string) [][]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.Files[id]; ok {
		return f.Values[rng]
	}
	return nil
}

func (s *Sheets) file(id string) *SheetFile {
	f, ok := s.Files[id]
	if !ok {
		f = &SheetFile{Values: map[string][][]interface{}{}, Modes: map[string]spreadsheet.InputMode{}}
		s.Files[id] = f
	}
	return f
}

func (s *Sheets) begin(method string, cred *oauth2.Token, id, rng string) error {
	s.Calls = append(s.Calls, fmt.Sprintf("%s %s %s", method, id, rng))
	if cred == nil || s.Expired[cred.AccessToken] {
		return fmt.Errorf("sheets %s: %w", method, errors.ErrUnauthorized)
	}
	if err := s.Fail[method]; err != nil {
		return err
	}
	return nil
}

func (s *Sheets) SheetTitles(_ context.Context, cred *oauth2.Token, id string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("SheetTitles", cred, id, ""); err != nil {
		return nil, err
	}
	f, ok := s.Files[id]
	if !ok {
		return nil, notFound("spreadsheet " + id)
	}
	titles := make([]string, 0, len(f.Sheets))
	for _, sh := range f.Sheets {
		titles = append(titles, sh.Title)
	}
	return titles, nil
}

func (s *Sheets) GetValues(_ context.Context, cred *oauth2.Token, id, rng string) ([][]interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("GetValues", cred, id, rng); err != nil {
		return nil, err
	}
	f, ok := s.Files[id]
	if !ok {
		return nil, notFound("spreadsheet " + id)
	}
	return f.Values[rng], nil
}

func (s *Sheets) UpdateValues(_ context.Context, cred *oauth2.Token, id, rng string, values [][]interface{}, mode spreadsheet.InputMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("UpdateValues", cred, id, rng); err != nil {
		return err
	}
	f, ok := s.Files[id]
	if !ok {
		return notFound("spreadsheet " + id)
	}
	f.Values[rng] = values
	f.Modes[rng] = mode
	return nil
}

func (s *Sheets) ClearValues(_ context.Context, cred *oauth2.Token, id, rng string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("ClearValues", cred, id, rng); err != nil {
		return err
	}
	f, ok := s.Files[id]
	if !ok {
		return notFound("spreadsheet " + id)
	}
	delete(f.Values, rng)
	return nil
}

func (s *Sheets) Create(_ context.Context, cred *oauth2.Token, title string, sheets []spreadsheet.SheetSpec) (spreadsheet.Created, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("Create", cred, "", title); err != nil {
		return spreadsheet.Created{}, err
	}

	s.nextID++
	id := fmt.Sprintf("sheet-%d", s.nextID)
	f := s.file(id)
	f.Title = title
	f.Sheets = append([]spreadsheet.SheetSpec(nil), sheets...)

	if s.Drive != nil {
		s.Drive.AddFile(id, title, "")
	}
	return spreadsheet.Created{
		ID:  id,
		URL: "https://docs.google.com/spreadsheets/d/" + id + "/edit",
	}, nil
}

// Refresher is an auth.Refresher handing out a fixed token.
type Refresher struct {
	mu    sync.Mutex
	Token *oauth2.Token
	Err   error
	// Seen records the refresh tokens presented.
	Seen []string
}

func (r *Refresher) Refresh(_ context.Context, refreshToken string) (*oauth2.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Seen = append(r.Seen, refreshToken)
	if r.Err != nil {
		return nil, r.Err
	}
	tok := *r.Token
	return &tok, nil
}
