// Package api exposes the settings facade and parameter inspection over HTTP.
//
// Every handler that reads or mutates engine state runs its work through a
// Runner, normally the clock.Scheduler, so HTTP requests never race the
// frame and regeneration tasks.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/cors"

	"github.com/san-kum/hopalong/internal/clock"
	"github.com/san-kum/hopalong/internal/engine"
	"github.com/san-kum/hopalong/internal/export"
	"github.com/san-kum/hopalong/internal/levels"
	"github.com/san-kum/hopalong/internal/orbit"
	"github.com/san-kum/hopalong/internal/settings"
)

// Runner executes fn on the goroutine that owns the engine.
type Runner interface {
	Do(ctx context.Context, fn func()) error
}

type Server struct {
	eng *engine.Engine
	run Runner
	svg export.SVGOptions
	mux *http.ServeMux
}

func New(eng *engine.Engine, run Runner) *Server {
	s := &Server{
		eng: eng,
		run: run,
		svg: export.DefaultSVGOptions(),
		mux: http.NewServeMux(),
	}
	s.svg.MaxPoints = 4000

	s.mux.HandleFunc("GET /api/settings", s.getSettings)
	s.mux.HandleFunc("PATCH /api/settings", s.patchSettings)
	s.mux.HandleFunc("GET /api/params/current", s.currentParams)
	s.mux.HandleFunc("GET /api/params/history", s.history)
	s.mux.HandleFunc("POST /api/params/{id}/rating", s.rate)
	s.mux.HandleFunc("GET /api/commands", s.listCommands)
	s.mux.HandleFunc("POST /api/commands/{name}", s.command)
	s.mux.HandleFunc("GET /api/stats", s.stats)
	s.mux.HandleFunc("GET /api/orbit", s.orbitJSON)
	s.mux.HandleFunc("GET /api/orbit.svg", s.orbitSVG)
	return s
}

// SetSVGOptions changes how /api/orbit.svg is drawn.
func (s *Server) SetSVGOptions(o export.SVGOptions) { s.svg = o }

// Handler is the mux wrapped with a permissive CORS policy.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(s.mux)
}

func NewHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

type ratingRequest struct {
	Rating int `json:"rating"`
}

type statsResponse struct {
	Frames        uint64             `json:"frames"`
	Regenerations uint64             `json:"regenerations"`
	Crossings     uint64             `json:"crossings"`
	Repaints      uint64             `json:"repaints"`
	Pending       int                `json:"pending"`
	Groups        int                `json:"groups"`
	Generation    uint64             `json:"generation"`
	Metrics       map[string]float64 `json:"metrics,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// do runs fn on the engine goroutine and reports false after writing an
// error response if that was not possible.
func (s *Server) do(w http.ResponseWriter, r *http.Request, fn func()) bool {
	err := s.run.Do(r.Context(), fn)
	switch {
	case err == nil:
		return true
	case errors.Is(err, clock.ErrStopped):
		writeError(w, http.StatusServiceUnavailable, err)
	default:
		writeError(w, http.StatusRequestTimeout, err)
	}
	return false
}

func (s *Server) getSettings(w http.ResponseWriter, r *http.Request) {
	var snap settings.Snapshot
	if !s.do(w, r, func() { snap = s.eng.Settings() }) {
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) patchSettings(w http.ResponseWriter, r *http.Request) {
	var p settings.Patch
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("api: bad settings patch: %w", err))
		return
	}
	var snap settings.Snapshot
	if !s.do(w, r, func() {
		s.eng.Apply(p)
		snap = s.eng.Settings()
	}) {
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) currentParams(w http.ResponseWriter, r *http.Request) {
	var (
		p  orbit.Params
		ok bool
	)
	if !s.do(w, r, func() { p, ok = s.eng.CurrentParams() }) {
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("api: no parameters active yet"))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	var entries []orbit.Entry
	if !s.do(w, r, func() { entries = s.eng.History() }) {
		return
	}
	writeJSON(w, http.StatusOK, export.HistoryDocument{Entries: entries})
}

func (s *Server) rate(w http.ResponseWriter, r *http.Request) {
	var req ratingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("api: bad rating: %w", err))
		return
	}
	id := r.PathValue("id")

	var err error
	if !s.do(w, r, func() { err = s.eng.Rate(id, req.Rating) }) {
		return
	}
	switch {
	case errors.Is(err, orbit.ErrUnknownEntry):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, orbit.ErrInvalidRating):
		writeError(w, http.StatusBadRequest, err)
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) listCommands(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, engine.CommandNames())
}

func (s *Server) command(w http.ResponseWriter, r *http.Request) {
	cmd, err := engine.ParseCommand(r.PathValue("name"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	var snap settings.Snapshot
	if !s.do(w, r, func() {
		s.eng.Command(cmd)
		snap = s.eng.Settings()
	}) {
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	var resp statsResponse
	if !s.do(w, r, func() {
		st := s.eng.Stats()
		resp = statsResponse{
			Frames:        st.Frames,
			Regenerations: st.Regenerations,
			Crossings:     st.Crossings,
			Repaints:      st.Repaints,
			Pending:       st.Pending,
			Groups:        s.eng.Cycler().Len(),
			Metrics:       st.Metrics,
		}
		if cur := s.eng.Cycler().Current(); cur != nil {
			resp.Generation = cur.ID
		}
	}) {
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// current fetches the published generation. Orbits are immutable once
// published, so callers may read it off the engine goroutine.
func (s *Server) current(w http.ResponseWriter, r *http.Request) (*levels.Generation, bool) {
	var cur *levels.Generation
	if !s.do(w, r, func() { cur = s.eng.Cycler().Current() }) {
		return nil, false
	}
	if cur == nil {
		writeError(w, http.StatusNotFound, errors.New("api: no orbit published yet"))
		return nil, false
	}
	return cur, true
}

func (s *Server) orbitJSON(w http.ResponseWriter, r *http.Request) {
	withPoints, _ := strconv.ParseBool(r.URL.Query().Get("points"))
	cur, ok := s.current(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, export.NewOrbitDocument(cur.Orbit, cur.Hues, withPoints))
}

func (s *Server) orbitSVG(w http.ResponseWriter, r *http.Request) {
	cur, ok := s.current(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	if _, err := w.Write([]byte(export.OrbitToSVG(cur.Orbit, cur.Hues, s.svg))); err != nil {
		log.Printf("api: write svg: %v", err)
	}
}
