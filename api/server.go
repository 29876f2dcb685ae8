package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/wricardo/micromouse/game/engine"
	"github.com/wricardo/micromouse/game/maze"
	"github.com/wricardo/micromouse/game/service"
	"github.com/wricardo/micromouse/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.MazeService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server. hub may be nil, which disables /ws.
func NewServer(mazeService service.MazeService, hub *websocket.Hub) *Server {
	s := &Server{
		service: mazeService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// Router exposes the router so callers can mount extra handlers, such as /mcp.
func (s *Server) Router() *mux.Router { return s.router }

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Runs
	api.HandleFunc("/sessions/{id}/explore", s.handleExplore).Methods("POST")
	api.HandleFunc("/sessions/{id}/replay", s.handleReplay).Methods("POST")
	api.HandleFunc("/sessions/{id}/reset", s.handleReset).Methods("POST")

	// Knowledge
	api.HandleFunc("/sessions/{id}/knowledge", s.handleKnowledge).Methods("GET")
	api.HandleFunc("/sessions/{id}/cells/{x:[0-9]+}/{y:[0-9]+}", s.handleDescribeCell).Methods("GET")

	// Mazes (generate must be registered before {name})
	api.HandleFunc("/mazes", s.handleListMazes).Methods("GET")
	api.HandleFunc("/mazes", s.handleSaveMaze).Methods("POST")
	api.HandleFunc("/mazes/generate", s.handleGenerateMaze).Methods("POST")
	api.HandleFunc("/mazes/{name}", s.handleGetMaze).Methods("GET")
	api.HandleFunc("/mazes/{name}/history", s.handleMazeHistory).Methods("GET")

	api.HandleFunc("/strategies", s.handleListStrategies).Methods("GET")

	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusFor maps service and engine errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrMazeNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrInvalidOptions),
		errors.Is(err, engine.ErrUnknownStrategy),
		errors.Is(err, engine.ErrUnknownHeuristic),
		errors.Is(err, engine.ErrInvalidDimensions),
		errors.Is(err, maze.ErrInvalidConfig):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrNoBestPath):
		return http.StatusConflict
	case errors.Is(err, service.ErrHistoryDisabled):
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func respondServiceError(w http.ResponseWriter, err error) {
	respondError(w, statusFor(err), err.Error())
}

// decodeOptional decodes a JSON body into v, accepting an empty body
func decodeOptional(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req service.CreateSessionRequest
	if err := decodeOptional(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := s.service.CreateSession(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Printf("[SESSION] created %s maze=%s %s", session.ID, session.MazeName, session.Settings.Describe())
	respondJSON(w, http.StatusCreated, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	total := len(sessions)

	query := r.URL.Query()
	sortBy := query.Get("sort") // "created", "accessed" (default)
	order := query.Get("order") // "asc", "desc" (default)
	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	if mazeName := query.Get("maze"); mazeName != "" {
		filtered := sessions[:0]
		for _, sess := range sessions {
			if sess.MazeName == mazeName {
				filtered = append(filtered, sess)
			}
		}
		sessions = filtered
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}
		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	if l, err := strconv.Atoi(query.Get("limit")); err == nil && l > 0 && l < len(sessions) {
		sessions = sessions[:l]
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.service.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Run Handlers

func (s *Server) handleExplore(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Passes int `json:"passes,omitempty"`
	}
	if err := decodeOptional(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.Explore(r.Context(), sessionID, req.Passes)
	if result == nil {
		respondServiceError(w, err)
		return
	}

	// Compact server log for observability
	passes := 0
	if result.Report != nil {
		passes = len(result.Report.Passes)
	}
	status := "OK"
	if err != nil {
		status = "STOPPED: " + err.Error()
	}
	log.Printf("[EXPLORE] session=%s passes=%d best=%d optimal=%d status=%s",
		sessionID, passes, result.Session.BestLength, result.Optimal, status)

	// A crashed pass is part of the result, not a failed request
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleReplay(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	result, err := s.service.Replay(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Printf("[REPLAY] session=%s length=%d optimal=%d", sessionID, result.Length, result.Optimal)
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	session, err := s.service.Reset(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Knowledge cleared",
		"session": session,
	})
}

// Knowledge Handlers

func (s *Server) handleKnowledge(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.GetKnowledge(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleDescribeCell(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	x, errX := strconv.Atoi(vars["x"])
	y, errY := strconv.Atoi(vars["y"])
	if errX != nil || errY != nil {
		respondError(w, http.StatusBadRequest, "Invalid cell coordinates")
		return
	}

	info, err := s.service.DescribeCell(r.Context(), vars["id"], engine.Cell{X: x, Y: y})
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			status = http.StatusBadRequest
		}
		respondError(w, status, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, info)
}

// Maze Handlers

func (s *Server) handleListMazes(w http.ResponseWriter, r *http.Request) {
	mazes, err := s.service.ListMazes(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, mazes)
}

func (s *Server) handleGetMaze(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSuffix(mux.Vars(r)["name"], ".json")

	cfg, err := s.service.LoadMaze(r.Context(), name)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleSaveMaze(w http.ResponseWriter, r *http.Request) {
	var cfg maze.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if cfg.Name == "" {
		respondError(w, http.StatusBadRequest, "Maze name is required")
		return
	}

	if err := s.service.SaveMaze(r.Context(), cfg.Name, &cfg); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "Maze saved successfully",
		"config_id": cfg.Name,
	})
}

func (s *Server) handleGenerateMaze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string `json:"name"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		Seed       int64  `json:"seed"`
		OpenCentre bool   `json:"open_centre"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "Maze name is required")
		return
	}
	if req.Seed == 0 {
		req.Seed = time.Now().UnixNano()
	}

	m, err := maze.Generate(req.Width, req.Height, req.Seed)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.OpenCentre {
		m.OpenCentre()
	}
	cfg := m.ToConfig(req.Name, fmt.Sprintf("%dx%d generated maze, seed %d", req.Width, req.Height, req.Seed))
	if err := s.service.SaveMaze(r.Context(), req.Name, cfg); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, cfg)
}

func (s *Server) handleMazeHistory(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSuffix(mux.Vars(r)["name"], ".json")

	opts := service.HistoryOptions{Limit: 20}
	query := r.URL.Query()
	if l, err := strconv.Atoi(query.Get("limit")); err == nil && l > 0 {
		opts.Limit = l
	}
	opts.Strategy = query.Get("strategy")

	history, err := s.service.MazeHistory(r.Context(), name, opts)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, history)
}

func (s *Server) handleListStrategies(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.service.ListStrategies(r.Context()))
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "live events are disabled", http.StatusNotFound)
		return
	}
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	if _, err := s.service.GetSession(r.Context(), sessionID); err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, sessionID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
