package handler

import (
	"bigbrain/internal/model"
	"bigbrain/internal/service"
	"bigbrain/internal/transport/rest/middleware"
	"net/http"

	"github.com/gorilla/mux"
)

// GameHandler handles the admin game endpoints
type GameHandler struct {
	gameSvc    *service.GameService
	sessionSvc *service.SessionService
}

// NewGameHandler creates a new game handler
func NewGameHandler(gameSvc *service.GameService, sessionSvc *service.SessionService) *GameHandler {
	return &GameHandler{gameSvc: gameSvc, sessionSvc: sessionSvc}
}

// GamesResponse lists the games of an admin
type GamesResponse struct {
	Games []model.GameSummary `json:"games"`
}

// ReplaceGamesRequest is the full list of an admin's games
type ReplaceGamesRequest struct {
	Games []*model.Game `json:"games"`
}

// MutateRequest selects a session action
type MutateRequest struct {
	MutationType string `json:"mutationType"`
}

// MutateResponse wraps the result of a session action
type MutateResponse struct {
	Data model.MutationResult `json:"data"`
}

// List handles GET /admin/games
//
//	@Summary	List the caller's games
//	@Tags		admin games
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	GamesResponse
//	@Failure	403	{object}	ErrorResponse
//	@Router		/admin/games [get]
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	games, err := h.gameSvc.ListGames(r.Context(), middleware.GetAdminEmail(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if games == nil {
		games = []model.GameSummary{}
	}
	writeJSON(w, http.StatusOK, GamesResponse{Games: games})
}

// Replace handles PUT /admin/games
//
//	@Summary	Replace the caller's games
//	@Tags		admin games
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		body	body		ReplaceGamesRequest	true	"games"
//	@Success	200		{object}	object
//	@Failure	400		{object}	ErrorResponse
//	@Failure	403		{object}	ErrorResponse
//	@Router		/admin/games [put]
func (h *GameHandler) Replace(w http.ResponseWriter, r *http.Request) {
	var req ReplaceGamesRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.gameSvc.ReplaceGames(r.Context(), middleware.GetAdminEmail(r.Context()), req.Games); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

// Mutate handles POST /admin/game/{gameid}/mutate
//
//	@Summary	Start, advance or end a game's session
//	@Tags		admin games
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		gameid	path		string			true	"game id"
//	@Param		body	body		MutateRequest	true	"START, ADVANCE or END"
//	@Success	200		{object}	MutateResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	403		{object}	ErrorResponse
//	@Router		/admin/game/{gameid}/mutate [post]
func (h *GameHandler) Mutate(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["gameid"]

	var req MutateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.gameSvc.AssertOwnsGame(r.Context(), middleware.GetAdminEmail(r.Context()), gameID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	result, err := h.sessionSvc.MutateGame(r.Context(), gameID, req.MutationType)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MutateResponse{Data: result})
}
