// Package server exposes a planning session over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/MaastrichtU-BISS/roadmap-planner/internal/config"
	"github.com/MaastrichtU-BISS/roadmap-planner/internal/cspace"
	"github.com/MaastrichtU-BISS/roadmap-planner/internal/geometry"
	"github.com/MaastrichtU-BISS/roadmap-planner/internal/session"
)

const maxBodySize = 1 << 20

// Server serializes HTTP access to a single session.
type Server struct {
	mu      sync.RWMutex
	session *session.Session
	cfg     *config.Config
	logger  *zap.SugaredLogger
}

// New returns a Server over sess. cfg supplies the defaults that /build and
// /proceed requests override.
func New(sess *session.Session, cfg *config.Config, logger *zap.SugaredLogger) *Server {
	if cfg == nil {
		cfg = config.Defaults()
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Server{session: sess, cfg: cfg, logger: logger}
}

// Handler returns the API routes with CORS enabled for all origins.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/system", s.systemHandler)
	mux.HandleFunc("/system/new", s.newSystemHandler)
	mux.HandleFunc("/obstacles", s.obstaclesHandler)
	mux.HandleFunc("/obstacles/move", s.moveObstacleHandler)
	mux.HandleFunc("/build", s.buildHandler)
	mux.HandleFunc("/proceed", s.proceedHandler)
	mux.HandleFunc("/route", s.routeHandler)
	mux.HandleFunc("/route/at", s.routeAtHandler)
	mux.HandleFunc("/roadmap/lines", s.roadmapLinesHandler)
	mux.HandleFunc("/clear", s.clearHandler)
	return cors.AllowAll().Handler(mux)
}

// ListenAndServe serves the API on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infow("server starting", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Infow("server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string, err error) {
	s.logger.Warnw(msg, "status", status, "error", err)
	body := map[string]any{"success": false, "message": msg}
	if err != nil {
		body["error"] = err.Error()
	}
	writeJSON(w, status, body)
}

func requireMethod(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	return false
}

// decodeBody decodes an optional JSON body into v. An empty body leaves v
// untouched.
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// GET /health
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	// component counting compresses union-find paths, so it needs the write lock
	s.mu.Lock()
	st := s.session.Status()
	s.mu.Unlock()

	status := "ready"
	switch {
	case st.Vertices == 0 && !st.Building:
		status = "waiting for roadmap"
	case st.Building:
		status = "building"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":     status,
		"dim":        st.Dim,
		"obstacles":  st.Obstacles,
		"state":      st.State.String(),
		"numNodes":   st.Vertices,
		"numEdges":   st.Edges,
		"components": st.Components,
		"waypoints":  st.Waypoints,
	})
}

// GET /system returns the problem in the system text format, POST /system
// replaces it.
func (s *Server) systemHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if r.Method == http.MethodGet {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err := s.session.SaveSystem(w); err != nil {
			s.logger.Errorw("failed to write system", "error", err)
		}
		return
	}

	if err := s.session.LoadSystem(io.LimitReader(r.Body, maxBodySize)); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid system description", err)
		return
	}
	s.logger.Infow("system loaded", "dim", s.session.Problem().Dim())
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"dim":       s.session.Problem().Dim(),
		"obstacles": s.session.Problem().Obstacles().Len(),
	})
}

type newSystemRequest struct {
	Type  string `json:"type"`
	Links int    `json:"links,omitempty"`
}

// POST /system/new
func (s *Server) newSystemHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req newSystemRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch req.Type {
	case "point", "":
		s.session.NewPointRobot()
	case "arm":
		if err := s.session.NewPlanarArm(req.Links); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid arm", err)
			return
		}
	default:
		s.writeError(w, http.StatusBadRequest, "unknown system type "+strconv.Quote(req.Type), nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "dim": s.session.Problem().Dim()})
}

type obstacleRequest struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
}

// GET /obstacles returns the obstacles as GeoJSON, POST /obstacles adds one.
func (s *Server) obstaclesHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}

	if r.Method == http.MethodGet {
		s.mu.RLock()
		fc := cspace.ObstacleFeatures(s.session.Problem().Obstacles())
		s.mu.RUnlock()
		writeJSON(w, http.StatusOK, fc)
		return
	}

	var req obstacleRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Radius <= 0 {
		s.writeError(w, http.StatusBadRequest, "radius must be positive", nil)
		return
	}

	s.mu.Lock()
	s.session.AddObstacle(geometry.Circle{Center: orb.Point{req.X, req.Y}, Radius: req.Radius})
	n := s.session.Problem().Obstacles().Len()
	s.mu.Unlock()

	s.logger.Debugw("obstacle added", "x", req.X, "y", req.Y, "radius", req.Radius)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "obstacles": n})
}

type moveRequest struct {
	Index int     `json:"index"`
	DX    float64 `json:"dx"`
	DY    float64 `json:"dy"`
	Apply bool    `json:"apply,omitempty"`
}

// POST /obstacles/move records a pending translation of one obstacle. With
// "apply" set, every pending move is committed and the roadmap is dropped.
func (s *Server) moveObstacleHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req moveRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.session.MoveObstacle(req.Index, orb.Point{req.DX, req.DY}); err != nil {
		s.writeError(w, http.StatusNotFound, "unknown obstacle", err)
		return
	}
	if req.Apply {
		s.session.ApplyObstacleMoves()
	}

	obstacles := s.session.Problem().Obstacles()
	c := obstacles.At(req.Index)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"pending": obstacles.Pending(),
		"x":       c.Center[0],
		"y":       c.Center[1],
		"radius":  c.Radius,
	})
}

// POST /build starts a new roadmap. The body uses the config file schema and
// overrides the server defaults.
func (s *Server) buildHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req config.Config
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	cfg := s.cfg.Merge(&req)
	if err := cfg.Validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid build parameters", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.session.SetParams(cfg.Params())
	s.session.Build()
	algo := s.session.Algorithm()

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"points":  algo.Points(),
		"variant": algo.Variant().String(),
		"radius":  algo.Radius(),
		"state":   algo.State().String(),
	})
}

type proceedRequest struct {
	Steps int `json:"steps"`
}

// POST /proceed advances the roadmap under construction.
func (s *Server) proceedHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req proceedRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Steps <= 0 {
		req.Steps = s.cfg.GetStepsPerProceed()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	done, err := s.session.Proceed(req.Steps)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "roadmap not started, call /build first", err)
		return
	}
	st := s.session.Status()
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"done":     done,
		"state":    st.State.String(),
		"numNodes": st.Vertices,
		"numEdges": st.Edges,
	})
}

// RouteResponse is the body of /route.
type RouteResponse struct {
	Path    [][]float64 `json:"path"`
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Length  float64     `json:"length,omitempty"`
}

// POST /route queries the roadmap between the problem start and finish.
func (s *Server) routeHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	s.mu.Lock()
	p, err := s.session.FindPath()
	s.mu.Unlock()

	if err != nil {
		s.writeError(w, http.StatusBadRequest, "roadmap not built, call /build first", err)
		return
	}

	resp := RouteResponse{Path: make([][]float64, len(p)), Success: !p.Empty()}
	for i, q := range p {
		resp.Path[i] = q
	}
	if p.Empty() {
		resp.Message = "start and finish could not be connected through the roadmap"
	} else {
		resp.Length = p.Length()
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /route/at?p=0.5 returns the configuration at a fraction of the path.
func (s *Server) routeAtHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	frac, err := strconv.ParseFloat(r.URL.Query().Get("p"), 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "query parameter p must be a number", err)
		return
	}

	s.mu.RLock()
	q := s.session.PathAt(frac)
	s.mu.RUnlock()

	if q == nil {
		s.writeError(w, http.StatusNotFound, "no path, call /route first", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "p": frac, "config": []float64(q)})
}

// GET /roadmap/lines returns the roadmap edges as GeoJSON.
func (s *Server) roadmapLinesHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	// EdgeFeatures labels components and writes union-find state
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.session.Graph()
	if g == nil {
		s.writeError(w, http.StatusBadRequest, "roadmap not built, call /build first", nil)
		return
	}
	fc, err := g.EdgeFeatures()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "roadmap cannot be drawn", err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	_ = json.NewEncoder(w).Encode(fc)
}

// POST /clear drops the roadmap and path.
func (s *Server) clearHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	s.mu.Lock()
	s.session.ClearGraph()
	s.mu.Unlock()

	s.logger.Infow("roadmap cleared")
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
