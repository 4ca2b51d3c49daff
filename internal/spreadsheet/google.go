package spreadsheet

import (
	"context"

	"github.com/karac38/gdevapps-portal/internal/config"
	"github.com/karac38/gdevapps-portal/internal/gapi"

	"golang.org/x/oauth2"
	"google.golang.org/api/sheets/v4"
)

// GoogleAPI is API backed by Google Sheets v4. Values are read unformatted so
// numbers arrive as numbers and dates as serials.
type GoogleAPI struct {
	cfg *config.Config
}

func NewGoogleAPI(cfg *config.Config) *GoogleAPI {
	return &GoogleAPI{cfg: cfg}
}

func (g *GoogleAPI) service(ctx context.Context, cred *oauth2.Token) (*sheets.Service, error) {
	return sheets.NewService(ctx, gapi.ClientOptions(g.cfg, cred)...)
}

func (g *GoogleAPI) SheetTitles(ctx context.Context, cred *oauth2.Token, spreadsheetID string) ([]string, error) {
	srv, err := g.service(ctx, cred)
	if err != nil {
		return nil, err
	}

	ss, err := srv.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, gapi.Classify(err, "get spreadsheet")
	}

	titles := make([]string, 0, len(ss.Sheets))
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			titles = append(titles, sh.Properties.Title)
		}
	}
	return titles, nil
}

func (g *GoogleAPI) GetValues(ctx context.Context, cred *oauth2.Token, spreadsheetID, rng string) ([][]interface{}, error) {
	srv, err := g.service(ctx, cred)
	if err != nil {
		return nil, err
	}

	resp, err := srv.Spreadsheets.Values.Get(spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, gapi.Classify(err, "get values "+rng)
	}
	return resp.Values, nil
}

func (g *GoogleAPI) UpdateValues(ctx context.Context, cred *oauth2.Token, spreadsheetID, rng string, values [][]interface{}, mode InputMode) error {
	srv, err := g.service(ctx, cred)
	if err != nil {
		return err
	}

	body := &sheets.ValueRange{
		Range:          rng,
		MajorDimension: "ROWS",
		Values:         values,
	}
	_, err = srv.Spreadsheets.Values.Update(spreadsheetID, rng, body).
		ValueInputOption(string(mode)).
		Context(ctx).
		Do()
	return gapi.Classify(err, "update values "+rng)
}

func (g *GoogleAPI) ClearValues(ctx context.Context, cred *oauth2.Token, spreadsheetID, rng string) error {
	srv, err := g.service(ctx, cred)
	if err != nil {
		return err
	}

	_, err = srv.Spreadsheets.Values.Clear(spreadsheetID, rng, &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return gapi.Classify(err, "clear values "+rng)
}

func (g *GoogleAPI) Create(ctx context.Context, cred *oauth2.Token, title string, specs []SheetSpec) (Created, error) {
	srv, err := g.service(ctx, cred)
	if err != nil {
		return Created{}, err
	}

	ss := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: title},
	}
	for _, spec := range specs {
		ss.Sheets = append(ss.Sheets, &sheets.Sheet{
			Properties: &sheets.SheetProperties{
				Index: spec.Index,
				Title: spec.Title,
				// Index 0 is the zero value and would be dropped otherwise.
				ForceSendFields: []string{"Index"},
			},
		})
	}

	created, err := srv.Spreadsheets.Create(ss).Context(ctx).Do()
	if err != nil {
		return Created{}, gapi.Classify(err, "create spreadsheet")
	}
	return Created{ID: created.SpreadsheetId, URL: created.SpreadsheetUrl}, nil
}
