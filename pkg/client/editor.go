package client

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"roweditor/pkg/api"
	"roweditor/pkg/sheets"
)

// Updater submits a single row write.
type Updater interface {
	Update(ctx context.Context, scriptURL string, rowIndex int, data []string) (api.UpdateResult, error)
}

// ReloadError reports that a save went through but the follow-up reload did
// not. The row is already written when this is returned.
type ReloadError struct {
	Err error
}

func (e *ReloadError) Error() string {
	return fmt.Sprintf("row saved, but reload failed: %v", e.Err)
}

func (e *ReloadError) Unwrap() error {
	return e.Err
}

// Editor holds at most one row being edited by the signed-in identity.
//
// A failed save leaves the draft in place so the user can retry without
// re-entering their changes. A successful save discards it and calls Reload.
type Editor struct {
	Updater   Updater
	ScriptURL string
	Identity  string
	Reload    func(ctx context.Context) error

	row   sheets.Row
	draft []string
	open  bool
}

// Begin opens row for editing. Rows the identity does not own are refused;
// the proxy checks ownership again on save.
func (e *Editor) Begin(row sheets.Row) error {
	if !sheets.IsOwner(row, e.Identity) {
		return sheets.NewError(sheets.KindForbidden,
			fmt.Sprintf("row %d is not owned by %s", row.Index, e.Identity), nil)
	}
	e.row = row
	e.draft = append([]string(nil), row.Data...)
	e.open = true
	return nil
}

// Set changes the named column in the draft.
func (e *Editor) Set(column, value string) error {
	if !e.open {
		return sheets.NewError(sheets.KindValidation, "no row is being edited", nil)
	}
	i, ok := e.row.Field(column)
	if !ok {
		return sheets.NewError(sheets.KindValidation, fmt.Sprintf("unknown column %q", column), nil)
	}
	return e.SetAt(i, value)
}

// SetAt changes the cell at position i, padding short rows with empty cells.
func (e *Editor) SetAt(i int, value string) error {
	if !e.open {
		return sheets.NewError(sheets.KindValidation, "no row is being edited", nil)
	}
	if i < 0 {
		return sheets.NewError(sheets.KindValidation, fmt.Sprintf("invalid column %d", i), nil)
	}
	for len(e.draft) <= i {
		e.draft = append(e.draft, "")
	}
	e.draft[i] = value
	return nil
}

// Draft returns the row with the pending edits applied.
func (e *Editor) Draft() (sheets.Row, bool) {
	if !e.open {
		return sheets.Row{}, false
	}
	return e.row.With(e.draft), true
}

// Cancel discards the draft.
func (e *Editor) Cancel() {
	e.row = sheets.Row{}
	e.draft = nil
	e.open = false
}

// Save submits the draft. On failure the draft stays open and unchanged. A
// *ReloadError means the write succeeded.
func (e *Editor) Save(ctx context.Context) error {
	if !e.open {
		return sheets.NewError(sheets.KindValidation, "no row is being edited", nil)
	}
	if e.ScriptURL == "" {
		return sheets.NewError(sheets.KindValidation, "script URL is not configured", nil)
	}

	logger := log.WithFields(log.Fields{"row_index": e.row.Index, "identity": e.Identity})
	data := append([]string(nil), e.draft...)
	if _, err := e.Updater.Update(ctx, e.ScriptURL, e.row.Index, data); err != nil {
		logger.WithError(err).Warn("Save failed, keeping draft")
		return err
	}

	logger.Info("Row saved")
	e.Cancel()
	if e.Reload != nil {
		if err := e.Reload(ctx); err != nil {
			logger.WithError(err).Warn("Reload after save failed")
			return &ReloadError{Err: err}
		}
	}
	return nil
}
