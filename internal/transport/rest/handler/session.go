package handler

import (
	"bigbrain/internal/model"
	"bigbrain/internal/service"
	"bigbrain/internal/transport/rest/middleware"
	"net/http"

	"github.com/gorilla/mux"
)

// SessionHandler handles the admin session endpoints
type SessionHandler struct {
	sessionSvc *service.SessionService
	playerSvc  *service.PlayerService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionSvc *service.SessionService, playerSvc *service.PlayerService) *SessionHandler {
	return &SessionHandler{sessionSvc: sessionSvc, playerSvc: playerSvc}
}

// StatusResponse wraps a session snapshot
type StatusResponse struct {
	Results model.SessionStatus `json:"results"`
}

// ResultsResponse wraps the per-player results of an ended session
type ResultsResponse struct {
	Results []model.Player `json:"results"`
}

// LeaderboardResponse wraps the ranked players of a session
type LeaderboardResponse struct {
	Leaderboard []model.LeaderboardEntry `json:"leaderboard"`
}

// owned resolves the session id and checks that the caller owns it
func (h *SessionHandler) owned(w http.ResponseWriter, r *http.Request) (string, bool) {
	sessionID := mux.Vars(r)["sessionid"]
	if err := h.sessionSvc.AssertOwnsSession(r.Context(), middleware.GetAdminEmail(r.Context()), sessionID); err != nil {
		writeServiceError(w, r, err)
		return "", false
	}
	return sessionID, true
}

// Status handles GET /admin/session/{sessionid}/status
//
//	@Summary	Session snapshot
//	@Tags		admin sessions
//	@Produce	json
//	@Security	BearerAuth
//	@Param		sessionid	path		string	true	"session id"
//	@Success	200			{object}	StatusResponse
//	@Failure	400			{object}	ErrorResponse
//	@Failure	403			{object}	ErrorResponse
//	@Router		/admin/session/{sessionid}/status [get]
func (h *SessionHandler) Status(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.owned(w, r)
	if !ok {
		return
	}

	status, err := h.playerSvc.SessionStatus(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Results: status})
}

// Results handles GET /admin/session/{sessionid}/results
//
//	@Summary	Results of an ended session
//	@Tags		admin sessions
//	@Produce	json
//	@Security	BearerAuth
//	@Param		sessionid	path		string	true	"session id"
//	@Success	200			{object}	ResultsResponse
//	@Failure	400			{object}	ErrorResponse
//	@Failure	403			{object}	ErrorResponse
//	@Router		/admin/session/{sessionid}/results [get]
func (h *SessionHandler) Results(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.owned(w, r)
	if !ok {
		return
	}

	results, err := h.playerSvc.SessionResults(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ResultsResponse{Results: results})
}

// Leaderboard handles GET /admin/session/{sessionid}/leaderboard
//
//	@Summary	Ranked players of a session
//	@Tags		admin sessions
//	@Produce	json
//	@Security	BearerAuth
//	@Param		sessionid	path		string	true	"session id"
//	@Success	200			{object}	LeaderboardResponse
//	@Failure	400			{object}	ErrorResponse
//	@Failure	403			{object}	ErrorResponse
//	@Router		/admin/session/{sessionid}/leaderboard [get]
func (h *SessionHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.owned(w, r)
	if !ok {
		return
	}

	entries, err := h.sessionSvc.Leaderboard(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if entries == nil {
		entries = []model.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, LeaderboardResponse{Leaderboard: entries})
}
