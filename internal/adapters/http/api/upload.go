// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/matchmint/matchmint/internal/adapters/fetch"
	"github.com/matchmint/matchmint/internal/adapters/ipfs"
	service "github.com/matchmint/matchmint/internal/app"
	"github.com/matchmint/matchmint/internal/domain/model"
	"github.com/matchmint/matchmint/internal/domain/render"
	"github.com/matchmint/matchmint/internal/domain/token"
)

// UploadHandler handles ticket upload requests.
type UploadHandler struct {
	deps Dependencies
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(deps Dependencies) *UploadHandler {
	return &UploadHandler{deps: deps}
}

// HandleUploadMatch handles POST /upload_match requests. A body that does
// not parse or validate is a 400; a pipeline failure is reported in the
// error envelope with status 200, mirroring the success path's shape.
func (h *UploadHandler) HandleUploadMatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var t model.Ticket
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeError(w, http.StatusBadRequest, "malformed ticket: "+err.Error())
		return
	}
	if err := validateTicket(&t); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	uri, err := h.deps.Submit(r.Context(), t)
	if err != nil {
		if errors.Is(err, service.ErrBackpressure) {
			writeError(w, http.StatusTooManyRequests, publicMessage(err))
			return
		}
		writeError(w, http.StatusOK, publicMessage(err))
		return
	}
	writeTokenURI(w, uri)
}

// publicMessage maps pipeline errors to messages safe for external display.
// Upstream errors may embed local paths or URLs; only the stage leaks out.
func publicMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrBackpressure):
		return "service is busy, try again later"
	case errors.Is(err, service.ErrNotStarted):
		return "service is not ready"
	case errors.Is(err, fetch.ErrFetch), errors.Is(err, fetch.ErrWrite):
		return "failed to fetch team logo"
	case errors.Is(err, render.ErrDecode):
		return "team logo is not a valid image"
	case errors.Is(err, render.ErrRender):
		return "failed to render ticket image"
	case errors.Is(err, model.ErrInvalidTimestamp):
		return "invalid match date"
	case errors.Is(err, token.ErrSerialize), errors.Is(err, token.ErrWrite):
		return "failed to build token document"
	case errors.Is(err, ipfs.ErrPublish):
		return "failed to publish to storage"
	default:
		return "internal error"
	}
}
