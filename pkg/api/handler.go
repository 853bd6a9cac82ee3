package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"

	"roweditor/pkg/sheets"
)

const maxBodyBytes = 1 << 20

// TableLoader loads the current sheet, optionally filtered to an owner.
type TableLoader interface {
	Load(ctx context.Context, identity string) (*sheets.Table, error)
}

// Handler serves the update proxy and the table view.
type Handler struct {
	Proxy  *Proxy
	Loader TableLoader
}

func (h *Handler) updateSheet(w http.ResponseWriter, r *http.Request) {
	caller, err := h.Proxy.authenticate(r.Context(), r.Header.Get("Authorization"))
	if err != nil {
		sendError(w, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		sendError(w, sheets.NewError(sheets.KindValidation, "Invalid request body", err))
		return
	}

	result, err := h.Proxy.updateAs(r.Context(), caller, body)
	if err != nil {
		sendError(w, err)
		return
	}
	sendResponse(w, http.StatusOK, result)
}

func (h *Handler) getSheet(w http.ResponseWriter, r *http.Request) {
	caller, err := h.Proxy.Auth.Authenticate(r.Context(), r.Header.Get("Authorization"))
	if err != nil {
		sendError(w, sheets.NewError(sheets.KindAuth, "Unauthorized", err))
		return
	}

	filter := ""
	if r.URL.Query().Get("mine") == "1" {
		filter = caller.Email
	}

	table, err := h.Loader.Load(r.Context(), filter)
	if err != nil {
		log.WithError(err).Error("Error loading sheet data")
		sendError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, tableToView(table, caller.Email))
}

func getHealth(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

func preflight(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// statusFor maps an error kind to the HTTP status returned to the caller.
func statusFor(kind sheets.Kind) int {
	switch kind {
	case sheets.KindValidation:
		return http.StatusBadRequest
	case sheets.KindAuth:
		return http.StatusUnauthorized
	case sheets.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func publicMessage(err error) string {
	var e *sheets.Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	switch e.Kind {
	case sheets.KindNetwork, sheets.KindUnknown:
		return e.Error()
	default:
		return e.Message
	}
}

func sendError(w http.ResponseWriter, err error) {
	sendJSON(w, statusFor(sheets.KindOf(err)), UpdateResult{Success: false, Error: publicMessage(err)})
}

func sendJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		log.WithError(err).Error("Failed to encode response")
		sendResponse(w, http.StatusInternalServerError, []byte(`{"success":false,"error":"Unknown error"}`))
		return
	}
	sendResponse(w, status, body)
}

func sendResponse(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
