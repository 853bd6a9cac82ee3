package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"roweditor/pkg/sheets"
)

// Proxy validates row updates and forwards them to the downstream script.
type Proxy struct {
	Auth       Authenticator
	HTTPClient *http.Client

	// AllowedHosts limits which script hosts may be targeted. Empty allows any.
	AllowedHosts []string
	// ScriptToken is sent downstream in ScriptTokenHeader when set.
	ScriptToken string
}

// Update runs one authorized update. authorization is the caller's
// Authorization header and body the raw request body. On success the
// downstream response is returned unchanged.
func (p *Proxy) Update(ctx context.Context, authorization string, body []byte) (json.RawMessage, error) {
	caller, err := p.authenticate(ctx, authorization)
	if err != nil {
		return nil, err
	}
	return p.updateAs(ctx, caller, body)
}

func (p *Proxy) authenticate(ctx context.Context, authorization string) (Identity, error) {
	caller, err := p.Auth.Authenticate(ctx, authorization)
	if err != nil {
		if !sheets.IsKind(err, sheets.KindAuth) {
			err = sheets.NewError(sheets.KindAuth, "Unauthorized", err)
		}
		log.WithError(err).Warn("Auth error")
		return Identity{}, err
	}
	if strings.TrimSpace(caller.Email) == "" {
		return Identity{}, sheets.NewError(sheets.KindAuth, "Unauthorized", nil)
	}
	return caller, nil
}

// updateAs runs an update for an already authenticated caller.
func (p *Proxy) updateAs(ctx context.Context, caller Identity, body []byte) (json.RawMessage, error) {
	var req UpdateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, sheets.NewError(sheets.KindValidation, "Invalid request body", err)
	}
	if err := p.validate(req); err != nil {
		return nil, err
	}

	if !sheets.OwnsData(req.Data, caller.Email) {
		log.WithFields(log.Fields{
			"row_email":  sheets.NormalizeIdentity(ownerCell(req.Data)),
			"user_email": sheets.NormalizeIdentity(caller.Email),
		}).Warn("Email mismatch")
		return nil, sheets.NewError(sheets.KindForbidden, "You can only edit rows with your email address", nil)
	}

	return p.forward(ctx, caller, req)
}

func (p *Proxy) validate(req UpdateRequest) error {
	if req.ScriptURL == "" || req.RowIndex == nil || *req.RowIndex <= 0 || req.Data == nil {
		return sheets.NewError(sheets.KindValidation, "Missing required fields", nil)
	}

	u, err := url.Parse(req.ScriptURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return sheets.NewError(sheets.KindValidation, "Invalid script URL", err)
	}
	if len(p.AllowedHosts) > 0 && !hostAllowed(u.Hostname(), p.AllowedHosts) {
		return sheets.NewError(sheets.KindValidation,
			fmt.Sprintf("Script host %q is not allowed", u.Hostname()), nil)
	}
	return nil
}

func (p *Proxy) forward(ctx context.Context, caller Identity, req UpdateRequest) (json.RawMessage, error) {
	requestID := uuid.NewString()
	logger := log.WithFields(log.Fields{
		"row_index":  *req.RowIndex,
		"identity":   sheets.NormalizeIdentity(caller.Email),
		"request_id": requestID,
	})
	logger.Info("Updating sheet")

	payload, err := json.Marshal(ScriptRequest{RowIndex: *req.RowIndex, Data: req.Data})
	if err != nil {
		return nil, sheets.NewError(sheets.KindUnknown, "failed to encode update", err)
	}

	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.ScriptURL, bytes.NewReader(payload))
	if err != nil {
		return nil, sheets.NewError(sheets.KindNetwork, "failed to call script", err)
	}
	hreq.Header.Set("Content-Type", "application/json")
	hreq.Header.Set("X-Request-Id", requestID)
	if p.ScriptToken != "" {
		hreq.Header.Set(ScriptTokenHeader, p.ScriptToken)
	}

	client := p.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(hreq)
	if err != nil {
		logger.WithError(err).Error("Script call failed")
		return nil, sheets.NewError(sheets.KindNetwork, "failed to call script", err)
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, sheets.NewError(sheets.KindNetwork, "failed to read script response", err)
	}
	logger.WithField("status", resp.StatusCode).Debugf("Script response: %s", text)

	var result *UpdateResult
	if err := json.Unmarshal(text, &result); err != nil || result == nil {
		logger.Errorf("Failed to parse script response: %s", text)
		return nil, sheets.NewError(sheets.KindParse, "Invalid response from script", err)
	}

	return json.RawMessage(bytes.TrimSpace(text)), nil
}

func hostAllowed(host string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(host, a) {
			return true
		}
	}
	return false
}

func ownerCell(data []string) string {
	if len(data) == 0 {
		return ""
	}
	return data[0]
}
