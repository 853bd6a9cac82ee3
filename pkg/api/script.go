package api

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"roweditor/pkg/sheets"
)

// ScriptHandler is the downstream write endpoint: it overwrites one row per
// POST and reports {success, error} the way the proxy expects.
type ScriptHandler struct {
	Writer sheets.RowWriter
	// Token, when set, must match ScriptTokenHeader on every write.
	Token string
}

// GetScriptRouter returns the router for the downstream script server.
func GetScriptRouter(h *ScriptHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Get("/", getHealth)
	r.Post("/", h.updateRow)
	return r
}

func (h *ScriptHandler) updateRow(w http.ResponseWriter, r *http.Request) {
	if h.Token != "" && subtle.ConstantTimeCompare([]byte(r.Header.Get(ScriptTokenHeader)), []byte(h.Token)) != 1 {
		sendJSON(w, http.StatusUnauthorized, UpdateResult{Success: false, Error: "Unauthorized"})
		return
	}

	var req ScriptRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		sendJSON(w, http.StatusOK, UpdateResult{Success: false, Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	logger := log.WithFields(log.Fields{
		"row_index":  req.RowIndex,
		"request_id": r.Header.Get("X-Request-Id"),
	})
	if err := h.Writer.UpdateRow(r.Context(), req.RowIndex, req.Data); err != nil {
		logger.WithError(err).Error("Failed to update row")
		sendJSON(w, http.StatusOK, UpdateResult{Success: false, Error: err.Error()})
		return
	}
	logger.Info("Row updated")
	sendJSON(w, http.StatusOK, UpdateResult{Success: true})
}
