package handler

import (
	"bigbrain/internal/model"
	"bigbrain/internal/service"
	"net/http"

	"github.com/gorilla/mux"
)

// PlayerHandler handles the unauthenticated player endpoints
type PlayerHandler struct {
	playerSvc *service.PlayerService
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(playerSvc *service.PlayerService) *PlayerHandler {
	return &PlayerHandler{playerSvc: playerSvc}
}

// JoinRequest is the request body for joining a session
type JoinRequest struct {
	Name string `json:"name"`
}

// JoinResponse carries the new player's id
type JoinResponse struct {
	PlayerID int64 `json:"playerId"`
}

// StartedResponse tells a player whether the first question is up
type StartedResponse struct {
	Started bool `json:"started"`
}

// QuestionResponse wraps the current question as shown to players
type QuestionResponse struct {
	Question model.PlayerQuestion `json:"question"`
}

// AnswersRequest carries a player's chosen answers
type AnswersRequest struct {
	Answers []any `json:"answers"`
}

// AnswersResponse carries the correct answers after the reveal
type AnswersResponse struct {
	Answers []any `json:"answers"`
}

// Join handles POST /play/join/{sessionid}
//
//	@Summary	Join a session that has not started
//	@Tags		play
//	@Accept		json
//	@Produce	json
//	@Param		sessionid	path		string		true	"session id"
//	@Param		body		body		JoinRequest	true	"player name"
//	@Success	200			{object}	JoinResponse
//	@Failure	400			{object}	ErrorResponse
//	@Router		/play/join/{sessionid} [post]
func (h *PlayerHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req JoinRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	playerID, err := h.playerSvc.Join(r.Context(), mux.Vars(r)["sessionid"], req.Name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, JoinResponse{PlayerID: playerID})
}

// Status handles GET /play/{playerid}/status
//
//	@Summary	Whether the player's session has started
//	@Tags		play
//	@Produce	json
//	@Param		playerid	path		string	true	"player id"
//	@Success	200			{object}	StartedResponse
//	@Failure	400			{object}	ErrorResponse
//	@Router		/play/{playerid}/status [get]
func (h *PlayerHandler) Status(w http.ResponseWriter, r *http.Request) {
	started, err := h.playerSvc.HasStarted(r.Context(), mux.Vars(r)["playerid"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StartedResponse{Started: started})
}

// Question handles GET /play/{playerid}/question
//
//	@Summary	Current question without its answers
//	@Tags		play
//	@Produce	json
//	@Param		playerid	path		string	true	"player id"
//	@Success	200			{object}	QuestionResponse
//	@Failure	400			{object}	ErrorResponse
//	@Router		/play/{playerid}/question [get]
func (h *PlayerHandler) Question(w http.ResponseWriter, r *http.Request) {
	q, err := h.playerSvc.Question(r.Context(), mux.Vars(r)["playerid"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, QuestionResponse{Question: q})
}

// Answers handles GET /play/{playerid}/answer
//
//	@Summary	Correct answers once revealed
//	@Tags		play
//	@Produce	json
//	@Param		playerid	path		string	true	"player id"
//	@Success	200			{object}	AnswersResponse
//	@Failure	400			{object}	ErrorResponse
//	@Router		/play/{playerid}/answer [get]
func (h *PlayerHandler) Answers(w http.ResponseWriter, r *http.Request) {
	answers, err := h.playerSvc.Answers(r.Context(), mux.Vars(r)["playerid"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AnswersResponse{Answers: answers})
}

// SubmitAnswers handles PUT /play/{playerid}/answer
//
//	@Summary	Answer the current question
//	@Tags		play
//	@Accept		json
//	@Produce	json
//	@Param		playerid	path		string			true	"player id"
//	@Param		body		body		AnswersRequest	true	"chosen answers"
//	@Success	200			{object}	object
//	@Failure	400			{object}	ErrorResponse
//	@Router		/play/{playerid}/answer [put]
func (h *PlayerHandler) SubmitAnswers(w http.ResponseWriter, r *http.Request) {
	var req AnswersRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.playerSvc.SubmitAnswers(r.Context(), mux.Vars(r)["playerid"], req.Answers); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

// Results handles GET /play/{playerid}/results
//
//	@Summary	The player's answers after the session ended
//	@Tags		play
//	@Produce	json
//	@Param		playerid	path		string	true	"player id"
//	@Success	200			{array}		model.PlayerAnswer
//	@Failure	400			{object}	ErrorResponse
//	@Router		/play/{playerid}/results [get]
func (h *PlayerHandler) Results(w http.ResponseWriter, r *http.Request) {
	results, err := h.playerSvc.Results(r.Context(), mux.Vars(r)["playerid"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}
