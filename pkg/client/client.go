package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"roweditor/pkg/api"
	"roweditor/pkg/sheets"
)

const updatePath = "/functions/update-sheet"

// ProxyClient submits row updates to the update proxy.
type ProxyClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// Update sends one row write through the proxy. A result that the proxy or the
// downstream script marked unsuccessful is returned as an error.
func (c *ProxyClient) Update(ctx context.Context, scriptURL string, rowIndex int, data []string) (api.UpdateResult, error) {
	payload, err := json.Marshal(api.UpdateRequest{ScriptURL: scriptURL, RowIndex: &rowIndex, Data: data})
	if err != nil {
		return api.UpdateResult{}, sheets.NewError(sheets.KindUnknown, "failed to encode update", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(c.BaseURL, "/")+updatePath, bytes.NewReader(payload))
	if err != nil {
		return api.UpdateResult{}, sheets.NewError(sheets.KindNetwork, "failed to reach proxy", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return api.UpdateResult{}, sheets.NewError(sheets.KindNetwork, "failed to reach proxy", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return api.UpdateResult{}, sheets.NewError(sheets.KindNetwork, "failed to read proxy response", err)
	}

	var result api.UpdateResult
	if err := json.Unmarshal(body, &result); err != nil {
		return api.UpdateResult{}, sheets.NewError(sheets.KindParse,
			fmt.Sprintf("unexpected proxy response (status %d)", resp.StatusCode), err)
	}

	if resp.StatusCode != http.StatusOK {
		return result, sheets.NewError(kindForStatus(resp.StatusCode), messageOr(result.Error, http.StatusText(resp.StatusCode)), nil)
	}
	if !result.Success {
		return result, sheets.NewError(sheets.KindUnknown, messageOr(result.Error, "Unknown error"), nil)
	}
	return result, nil
}

func kindForStatus(status int) sheets.Kind {
	switch status {
	case http.StatusBadRequest:
		return sheets.KindValidation
	case http.StatusUnauthorized:
		return sheets.KindAuth
	case http.StatusForbidden:
		return sheets.KindForbidden
	default:
		return sheets.KindUnknown
	}
}

func messageOr(msg, fallback string) string {
	if msg == "" {
		return fallback
	}
	return msg
}
