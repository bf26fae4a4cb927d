// Package tabular describes the flat, header-defined table storage the row
// store sits on: a spreadsheet, a SQLite file or plain memory.
//
// Row positions are 0-based indexes of data rows; the header row is not
// counted. Positions are only stable until the next DeleteRow.
package tabular

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a table or row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrBackendUnavailable wraps transport, credential and quota failures.
	ErrBackendUnavailable = errors.New("backend unavailable")
)

// Handle identifies an opened table.
type Handle struct {
	Name string
	ID   int64
}

type Backend interface {
	OpenTable(ctx context.Context, name string) (Handle, error)
	CreateTable(ctx context.Context, name string, header []string) (Handle, error)

	ReadHeader(ctx context.Context, h Handle) ([]string, error)
	WriteHeaderCell(ctx context.Context, h Handle, col int, value string) error

	ReadAllRows(ctx context.Context, h Handle) ([][]string, error)
	AppendRow(ctx context.Context, h Handle, values []string) error

	// FindRowByValue returns the position of the first row whose cell in
	// column col equals value.
	FindRowByValue(ctx context.Context, h Handle, col int, value string) (int, error)
	WriteCell(ctx context.Context, h Handle, row, col int, value string) error
	DeleteRow(ctx context.Context, h Handle, row int) error
}
