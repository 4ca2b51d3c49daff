package spreadsheet

import (
	"context"

	"golang.org/x/oauth2"
)

type InputMode string

const (
	InputRaw         InputMode = "RAW"
	InputUserEntered InputMode = "USER_ENTERED"
)

type SheetSpec struct {
	Index int64
	Title string
}

type Created struct {
	ID  string
	URL string
}

// API is the remote spreadsheet store. Implementations return an error
// wrapping errors.ErrUnauthorized when cred is expired or revoked.
type API interface {
	SheetTitles(ctx context.Context, cred *oauth2.Token, spreadsheetID string) ([]string, error)
	GetValues(ctx context.Context, cred *oauth2.Token, spreadsheetID, rng string) ([][]interface{}, error)
	UpdateValues(ctx context.Context, cred *oauth2.Token, spreadsheetID, rng string, values [][]interface{}, mode InputMode) error
	ClearValues(ctx context.Context, cred *oauth2.Token, spreadsheetID, rng string) error
	Create(ctx context.Context, cred *oauth2.Token, title string, sheets []SheetSpec) (Created, error)
}
