// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/matchmint/matchmint/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Submit runs the render-and-publish pipeline for a ticket and returns
	// the token document's public URL.
	Submit(ctx context.Context, t model.Ticket) (string, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	uploadHandler *UploadHandler
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		uploadHandler: NewUploadHandler(deps),
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/upload_match", MetricsMiddleware(s.uploadHandler.HandleUploadMatch, "upload_match"))
}

// successEnvelope is the success shape of POST /upload_match.
type successEnvelope struct {
	Response tokenURIBody `json:"response"`
}

type tokenURIBody struct {
	TokenURI string `json:"token_uri"`
}

// errorEnvelope is the failure shape shared by all endpoints.
type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Msg string `json:"msg"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeTokenURI(w http.ResponseWriter, uri string) {
	writeJSON(w, http.StatusOK, successEnvelope{Response: tokenURIBody{TokenURI: uri}})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	if msg == "" {
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorEnvelope{Error: errorBody{Msg: msg}})
}

// validateTicket rejects tickets the pipeline cannot possibly serve.
func validateTicket(t *model.Ticket) error {
	switch {
	case strings.TrimSpace(t.ID) == "":
		return errors.New("missing id")
	case strings.TrimSpace(t.HostTeam.Name) == "":
		return errors.New("missing host team name")
	case strings.TrimSpace(t.HostTeam.LogoURL) == "":
		return errors.New("missing host team logo")
	case strings.TrimSpace(t.GuestTeam.Name) == "":
		return errors.New("missing guest team name")
	case strings.TrimSpace(t.GuestTeam.LogoURL) == "":
		return errors.New("missing guest team logo")
	}
	return nil
}
