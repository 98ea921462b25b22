package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/kyivgames/tictactoe-backend/internal/apperror"
	"github.com/kyivgames/tictactoe-backend/internal/entity"
	"github.com/kyivgames/tictactoe-backend/internal/game"
)

const sessionCookieName = "user_session"

type Handlers interface {
	Ping(w http.ResponseWriter, r *http.Request)
	NewGame(w http.ResponseWriter, r *http.Request)
	Move(w http.ResponseWriter, r *http.Request)
}

type handlers struct {
	logger *slog.Logger
	engine *game.Engine
	games  game.Store
}

func NewHandlers(logger *slog.Logger, engine *game.Engine, games game.Store) Handlers {
	return &handlers{
		logger: logger,
		engine: engine,
		games:  games,
	}
}

type newGameRequest struct {
	Mode string `json:"mode"`
}

type newGameResponse struct {
	Board    entity.Board `json:"board"`
	Turn     string       `json:"current_turn"`
	Mode     string       `json:"mode"`
	GameOver bool         `json:"game_over"`
	Winner   string       `json:"winner,omitempty"`
}

type moveRequest struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewGame starts a fresh local game for the caller's session.
func (that *handlers) NewGame(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "NewGame")

	var req newGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}

	if req.Mode == "" {
		req.Mode = game.ModePvP
	}

	localGame, err := that.engine.NewGame(req.Mode)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	sessionID := that.sessionID(w, r)
	that.games.Put(sessionID, localGame)

	log.Info("local game started", "mode", req.Mode)

	writeJSON(w, http.StatusOK, newGameResponse{
		Board: localGame.Board,
		Turn:  localGame.Turn,
		Mode:  localGame.Mode,
	})
}

// Move applies one local move; in PvE mode the computer answers within the
// same request.
func (that *handlers) Move(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "Move")

	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}

	if req.Row == nil || req.Col == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "row and col are required"})
		return
	}

	sessionID := that.sessionID(w, r)

	localGame, ok := that.games.Get(sessionID)
	if !ok {
		// a move without an explicit new_game starts a hot-seat game
		localGame, _ = that.engine.NewGame(game.ModePvP)
		that.games.Put(sessionID, localGame)
	}

	result, err := that.engine.Move(localGame, *req.Row, *req.Col)

	switch {
	case errors.Is(err, apperror.ErrGameFinished),
		errors.Is(err, apperror.ErrCellOccupied),
		errors.Is(err, apperror.ErrInvalidCell):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	case err != nil:
		log.Error("failed to make local move", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (that *handlers) Ping(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

// sessionID reads the session cookie, minting one when absent.
func (that *handlers) sessionID(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}

	cookie = &http.Cookie{
		Name:    sessionCookieName,
		Value:   uuid.NewString(),
		Expires: time.Now().Add(24 * time.Hour),
		Path:    "/",
	}
	http.SetCookie(w, cookie)

	return cookie.Value
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(body)
}
