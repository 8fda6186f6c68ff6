package sheets

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"hwharvest/internal/config"
)

// Connector writes the import sheet into one tab of a Google Sheets
// spreadsheet, replacing whatever the tab held before.
type Connector struct {
	service       *sheets.Service
	spreadsheetID string
	tab           string
}

func NewConnector(cfg config.Config) (*Connector, error) {
	if err := cfg.Require("SHEETS_CLIENT_ID", cfg.SheetsClientID); err != nil {
		return nil, err
	}
	if err := cfg.Require("SHEETS_CLIENT_SECRET", cfg.SheetsClientSecret); err != nil {
		return nil, err
	}
	if err := cfg.Require("SHEETS_REFRESH_TOKEN", cfg.SheetsRefreshToken); err != nil {
		return nil, err
	}
	if err := cfg.Require("SHEETS_SPREADSHEET_ID", cfg.SheetsSpreadsheetID); err != nil {
		return nil, err
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.SheetsClientID,
		ClientSecret: cfg.SheetsClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  cfg.SheetsRedirectURI,
		Scopes:       []string{sheets.SpreadsheetsScope},
	}

	tokenSource := oauthCfg.TokenSource(context.Background(), &oauth2.Token{RefreshToken: cfg.SheetsRefreshToken})

	service, err := sheets.NewService(context.Background(), option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, err
	}

	return &Connector{
		service:       service,
		spreadsheetID: cfg.SheetsSpreadsheetID,
		tab:           cfg.SheetsTab,
	}, nil
}

func (c *Connector) Push(ctx context.Context, header []string, rows [][]string) error {
	if _, err := c.service.Spreadsheets.Values.Clear(c.spreadsheetID, c.tab, &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear sheet tab %s: %w", c.tab, err)
	}

	values := make([][]interface{}, 0, len(rows)+1)
	values = append(values, cells(header))
	for _, row := range rows {
		values = append(values, cells(row))
	}

	update := c.service.Spreadsheets.Values.Update(c.spreadsheetID, c.tab+"!A1", &sheets.ValueRange{Values: values})
	if _, err := update.ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("update sheet tab %s: %w", c.tab, err)
	}

	return nil
}

func cells(row []string) []interface{} {
	out := make([]interface{}, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}
