// Package google writes subscriptions to a Google spreadsheet with a service
// account.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"github.com/sibintb/submanager/internal/models"
	ports "github.com/sibintb/submanager/internal/sheets"
)

// DefaultSheetName is used when Config.SheetName is empty.
const DefaultSheetName = "Subscriptions"

var _ ports.SubscriptionWriter = (*Client)(nil)

// Config selects the spreadsheet and the credentials used to reach it.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsFile string
	CredentialsJSON string
}

// Client is a Sheets API backed SubscriptionWriter.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// New builds a client from cfg. Extra options are passed to the Sheets
// service and take precedence over the credentials in cfg.
func New(ctx context.Context, cfg Config, opts ...goption.ClientOption) (*Client, error) {
	const op = "sheets.google.New"

	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, fmt.Errorf("%s: missing spreadsheet id", op)
	}
	sheetName := strings.TrimSpace(cfg.SheetName)
	if sheetName == "" {
		sheetName = DefaultSheetName
	}

	if len(opts) == 0 {
		creds, err := credentials(cfg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		opts = []goption.ClientOption{
			goption.WithCredentialsJSON(creds),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}
	}

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: create sheets service: %w", op, err)
	}

	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}, nil
}

func credentials(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		return []byte(cfg.CredentialsJSON), nil
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials")
	}
}

// WriteSubscriptions clears the sheet and writes the header and one row per
// record starting at A1. It returns the range reported by the API.
func (c *Client) WriteSubscriptions(ctx context.Context, list []models.Subscription) (string, error) {
	const op = "sheets.google.WriteSubscriptions"

	if c.svc == nil {
		return "", fmt.Errorf("%s: sheets service not initialized", op)
	}

	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, c.sheetName, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("%s: clear %s: %w", op, c.sheetName, err)
	}

	rng := fmt.Sprintf("%s!A1", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &gsheet.ValueRange{Values: ports.Values(list)}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("%s: update %s: %w", op, rng, err)
	}

	return resp.UpdatedRange, nil
}
