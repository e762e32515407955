package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"wordsearch/internal/app"
	"wordsearch/internal/domain"
)

// maxBodyBytes bounds request bodies; custom word lists are the largest input
const maxBodyBytes = 64 << 10

// Response is a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo contains error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CreateGameRequest is the body for POST /api/games and POST /api/games/{gameID}/new
type CreateGameRequest struct {
	Theme string   `json:"theme,omitempty"`
	Size  int      `json:"size,omitempty"`
	Words []string `json:"words,omitempty"`
}

// SelectRequest is the body for POST /api/games/{gameID}/selections
type SelectRequest struct {
	Start *domain.Coord `json:"start"`
	End   *domain.Coord `json:"end"`
}

// SelectResponse reports the outcome of a selection
type SelectResponse struct {
	Matched bool              `json:"matched"`
	Found   *domain.FoundWord `json:"found,omitempty"`
	Phase   domain.Phase      `json:"phase"`
}

// ThemesResponse lists the available themes
type ThemesResponse struct {
	Themes []string `json:"themes"`
}

// HealthResponse is the response for health check
type HealthResponse struct {
	Status string `json:"status"`
}

// StatsResponse is the response for stats endpoint
type StatsResponse struct {
	ActiveGames      int `json:"activeGames"`
	ConnectedClients int `json:"connectedClients"`
}

// handleHealth handles GET /api/health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendSuccess(w, &HealthResponse{
		Status: "ok",
	})
}

// handleStats handles GET /api/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.sendSuccess(w, &StatsResponse{
		ActiveGames:      s.hub.GetSessionCount(),
		ConnectedClients: s.hub.GetTotalClientCount(),
	})
}

// handleListThemes handles GET /api/themes
func (s *Server) handleListThemes(w http.ResponseWriter, r *http.Request) {
	s.sendSuccess(w, &ThemesResponse{
		Themes: s.hub.Themes(),
	})
}

// handleGetTheme handles GET /api/themes/{name}
func (s *Server) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}

	theme, err := s.hub.Theme(name)
	if err != nil {
		s.sendDomainError(w, err)
		return
	}

	s.sendSuccess(w, &theme)
}

// handleCreateGame handles POST /api/games
func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.Size < 0 {
		s.sendError(w, http.StatusBadRequest, "INVALID_REQUEST", "Size must not be negative")
		return
	}

	session, err := s.hub.CreateGame(app.NewGameRequest{
		Theme: req.Theme,
		Size:  req.Size,
		Words: req.Words,
	})
	if err != nil {
		s.sendDomainError(w, err)
		return
	}

	s.sendJSON(w, http.StatusCreated, session.Snapshot())
}

// handleGetGame handles GET /api/games/{gameID}
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	session, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	s.sendSuccess(w, session.Snapshot())
}

// handleDeleteGame handles DELETE /api/games/{gameID}
func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	session, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	s.hub.DeleteSession(session.GetGameID())
	w.WriteHeader(http.StatusNoContent)
}

// handleSelect handles POST /api/games/{gameID}/selections
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	session, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	var req SelectRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.Start == nil || req.End == nil {
		s.sendError(w, http.StatusBadRequest, "INVALID_REQUEST", "Selection needs a start and an end")
		return
	}

	found, err := session.Select("", domain.Selection{Start: *req.Start, End: *req.End})
	if err != nil {
		s.sendDomainError(w, err)
		return
	}

	s.sendSuccess(w, &SelectResponse{
		Matched: found != nil,
		Found:   found,
		Phase:   session.GetPhase(),
	})
}

// handleSolve handles POST /api/games/{gameID}/solve
func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	session, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	overlay, err := session.Solve()
	if err != nil {
		s.sendDomainError(w, err)
		return
	}

	s.sendSuccess(w, overlay)
}

// handleNewGame handles POST /api/games/{gameID}/new
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	session, err := s.hub.ReplaceGame(chi.URLParam(r, "gameID"), app.NewGameRequest{
		Theme: req.Theme,
		Size:  req.Size,
		Words: req.Words,
	})
	if err != nil {
		s.sendDomainError(w, err)
		return
	}

	s.sendJSON(w, http.StatusCreated, session.Snapshot())
}

// lookupSession resolves the {gameID} URL parameter, writing a 404 if it is unknown
func (s *Server) lookupSession(w http.ResponseWriter, r *http.Request) (*app.GameSession, bool) {
	session, err := s.hub.GetSession(chi.URLParam(r, "gameID"))
	if err != nil {
		s.sendDomainError(w, err)
		return nil, false
	}
	return session, true
}

// decodeBody reads an optional JSON body into dst. An empty body leaves dst unchanged.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		s.sendError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body")
		return false
	}
	return true
}

// sendDomainError maps a domain error onto an HTTP status and error code
func (s *Server) sendDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrGameNotFound):
		s.sendError(w, http.StatusNotFound, "GAME_NOT_FOUND", "Game not found")
	case errors.Is(err, app.ErrUnknownTheme):
		s.sendError(w, http.StatusNotFound, "THEME_NOT_FOUND", "Theme not found")
	case errors.Is(err, domain.ErrGridTooLarge):
		s.sendError(w, http.StatusBadRequest, "INVALID_REQUEST", "Grid size is too large")
	case errors.Is(err, domain.ErrUnplaceableWord):
		s.sendError(w, http.StatusUnprocessableEntity, "GENERATION_FAILED", "Could not fit every word in the grid")
	case errors.Is(err, domain.ErrInvalidWord), errors.Is(err, domain.ErrNoWords):
		s.sendError(w, http.StatusBadRequest, "INVALID_REQUEST", "Words must have at least two letters")
	case errors.Is(err, domain.ErrOutOfBounds):
		s.sendError(w, http.StatusBadRequest, "INVALID_REQUEST", "Selection is outside the grid")
	case errors.Is(err, domain.ErrInvalidPhase), errors.Is(err, domain.ErrInvalidTransition):
		s.sendError(w, http.StatusConflict, "INVALID_ACTION", "Action not allowed in the current phase")
	default:
		s.logger.Error("request failed", "error", err)
		s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

// sendSuccess sends a successful JSON response
func (s *Server) sendSuccess(w http.ResponseWriter, data interface{}) {
	s.sendJSON(w, http.StatusOK, data)
}

// sendJSON sends a successful JSON response with the given status
func (s *Server) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(&Response{
		Success: true,
		Data:    data,
	})
}

// sendError sends an error JSON response
func (s *Server) sendError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(&Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	})
}
