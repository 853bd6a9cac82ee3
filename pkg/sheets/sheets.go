package sheets

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// RowWriter overwrites one sheet row positionally.
type RowWriter interface {
	UpdateRow(ctx context.Context, rowIndex int, data []string) error
}

// SheetClient writes rows through the Google Sheets API.
type SheetClient struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string

	maxRetries int
	maxBackoff time.Duration
	sleep      func(context.Context, time.Duration) error
}

// NewSheetClient creates a client for one sheet of a spreadsheet. Options are
// passed to the Sheets service, e.g. option.WithCredentialsFile.
func NewSheetClient(ctx context.Context, spreadsheetID, sheetName string, opts ...option.ClientOption) (*SheetClient, error) {
	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets client: %w", err)
	}
	return &SheetClient{
		service:       srv,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		maxRetries:    15,
		maxBackoff:    60 * time.Second,
		sleep:         sleepContext,
	}, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// UpdateRow writes data into the row starting at column A. Cells past the end
// of data are left as they are.
func (s *SheetClient) UpdateRow(ctx context.Context, rowIndex int, data []string) error {
	if rowIndex < 1 {
		return NewError(KindValidation, fmt.Sprintf("invalid row index %d", rowIndex), nil)
	}

	values := make([]interface{}, len(data))
	for i, v := range data {
		values[i] = v
	}
	rng := fmt.Sprintf("%s!A%d", s.sheetName, rowIndex)

	return s.withBackoff(ctx, func() error {
		_, err := s.service.Spreadsheets.Values.Update(
			s.spreadsheetID,
			rng,
			&sheets.ValueRange{Values: [][]interface{}{values}},
		).ValueInputOption("USER_ENTERED").Context(ctx).Do()
		return err
	})
}

// withBackoff retries fn while the API reports rate limiting. Any other
// failure, including a 403 for missing permissions, is returned at once.
func (s *SheetClient) withBackoff(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !rateLimited(err) {
			return NewError(KindNetwork, "failed to update row", err)
		}
		backoff := time.Duration(math.Pow(2, float64(attempt))) * time.Second
		if backoff > s.maxBackoff {
			backoff = s.maxBackoff
		}
		log.Warnf("Rate limited by Google Sheets API, retrying in %v...", backoff)
		if serr := s.sleep(ctx, backoff); serr != nil {
			return NewError(KindNetwork, "failed to update row", serr)
		}
	}
	return NewError(KindNetwork, fmt.Sprintf("failed to update row after %d retries", s.maxRetries), err)
}

// rateLimited reports whether err is a quota error worth retrying. The API
// answers 403 both for quotas and for permission problems; only the reason
// tells them apart.
func rateLimited(err error) bool {
	var gErr *googleapi.Error
	if !errors.As(err, &gErr) {
		return false
	}
	switch gErr.Code {
	case http.StatusTooManyRequests:
		return true
	case http.StatusForbidden:
		for _, item := range gErr.Errors {
			if item.Reason == "rateLimitExceeded" || item.Reason == "userRateLimitExceeded" {
				return true
			}
		}
	}
	return false
}
