package sheets

import (
	"context"
	"fmt"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"
)

const exportURLFormat = "https://docs.google.com/spreadsheets/d/%s/export?format=csv&gid=%s"

// ExportURL returns the public CSV export endpoint for one sheet of a spreadsheet.
func ExportURL(spreadsheetID, gid string) string {
	return fmt.Sprintf(exportURLFormat, spreadsheetID, gid)
}

// Loader fetches and parses the published sheet.
type Loader struct {
	URL        string
	HTTPClient *http.Client
}

// NewLoader returns a Loader for the given export URL using the default client.
func NewLoader(url string) *Loader {
	return &Loader{URL: url, HTTPClient: http.DefaultClient}
}

// Load fetches the sheet and returns it as a Table. When identity is not empty
// only the rows it owns are returned; headers are always complete.
func (l *Loader) Load(ctx context.Context, identity string) (*Table, error) {
	text, err := l.fetch(ctx)
	if err != nil {
		return nil, err
	}

	table := NewTable(ParseCSV(text))
	total := len(table.Rows)
	if identity != "" {
		table.Rows = FilterByOwner(table.Rows, identity)
	}

	log.WithFields(log.Fields{
		"rows":     total,
		"returned": len(table.Rows),
		"filtered": identity != "",
	}).Debug("loaded sheet")

	return table, nil
}

func (l *Loader) fetch(ctx context.Context) (string, error) {
	client := l.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.URL, nil)
	if err != nil {
		return "", NewError(KindNetwork, "failed to fetch sheet data", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", NewError(KindNetwork, "failed to fetch sheet data", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", NewError(KindNetwork, "failed to fetch sheet data",
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", NewError(KindNetwork, "failed to read sheet data", err)
	}
	return string(b), nil
}
