// Package sheets stores tables as worksheets of one Google spreadsheet.
// Row 1 of every worksheet is the header.
package sheets

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"
)

type Client struct {
	srv           *sheetsv4.Service
	spreadsheetID string
}

func New(ctx context.Context, serviceAccountJSONPath, spreadsheetID string) (*Client, error) {
	if _, err := os.Stat(serviceAccountJSONPath); err != nil {
		return nil, fmt.Errorf("service account json: %w", err)
	}
	srv, err := sheetsv4.NewService(ctx,
		option.WithCredentialsFile(serviceAccountJSONPath),
		option.WithScopes(sheetsv4.SpreadsheetsScope),
	)
	if err != nil {
		return nil, err
	}
	return NewWithService(srv, spreadsheetID), nil
}

// NewWithService wraps an already configured service, e.g. one pointed at a
// test endpoint.
func NewWithService(srv *sheetsv4.Service, spreadsheetID string) *Client {
	return &Client{srv: srv, spreadsheetID: spreadsheetID}
}
