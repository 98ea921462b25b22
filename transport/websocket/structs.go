package websocket

import (
	"encoding/json"
	"errors"

	"github.com/kyivgames/tictactoe-backend/internal/apperror"
	"github.com/kyivgames/tictactoe-backend/internal/entity"
)

// Client-to-server actions.
const (
	ActionCreateRoom     = "create_room"
	ActionJoinRoom       = "join_room"
	ActionOnlineMove     = "online_move"
	ActionRequestRematch = "request_rematch"
	ActionLeaveRoom      = "leave_room"
)

// Server-to-client actions.
const (
	ActionRoomCreated      = "room_created"
	ActionRoomJoined       = "room_joined"
	ActionGameStart        = "game_start"
	ActionGameUpdate       = "game_update"
	ActionRematchRequested = "rematch_requested"
	ActionOpponentLeft     = "opponent_left"
	ActionError            = "error"
)

// Error kinds reported to the originating connection.
const (
	KindBadRequest       = "bad_request"
	KindNotFound         = "not_found"
	KindRoomFull         = "room_full"
	KindCapacityExceeded = "capacity_exceeded"
	KindUnauthorized     = "unauthorized"
	KindInvalidState     = "invalid_state"
	KindNotYourTurn      = "not_your_turn"
	KindIllegalMove      = "illegal_move"
	KindInternal         = "internal"
)

// Message is one protocol frame: an action name plus its payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type RoomRequest struct {
	RoomCode string `json:"room_code"`
}

// MoveRequest uses pointers so a missing coordinate is distinguishable from
// a zero one.
type MoveRequest struct {
	RoomCode string `json:"room_code"`
	Row      *int   `json:"row"`
	Col      *int   `json:"col"`
}

type RoomAckPayload struct {
	RoomCode string `json:"room_code"`
	Symbol   string `json:"symbol"`
	Message  string `json:"message,omitempty"`
}

type GameStartPayload struct {
	Version uint64        `json:"version"`
	Board   entity.Board  `json:"board"`
	Turn    string        `json:"turn"`
	Scores  entity.Scores `json:"scores"`
}

type LastMove struct {
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Symbol string `json:"symbol"`
}

type GameUpdatePayload struct {
	Version  uint64        `json:"version"`
	Board    entity.Board  `json:"board"`
	Turn     string        `json:"turn"`
	Winner   string        `json:"winner,omitempty"`
	WinLine  []entity.Cell `json:"win_line,omitempty"`
	LastMove *LastMove     `json:"last_move,omitempty"`
	Scores   entity.Scores `json:"scores"`
}

type NoticePayload struct {
	Message string `json:"message"`
}

type ErrorPayload struct {
	Message string `json:"message"`
	Kind    string `json:"kind"`
}

// errorKind maps domain errors onto protocol error kinds.
func errorKind(err error) string {
	switch {
	case errors.Is(err, apperror.ErrRoomNotFound):
		return KindNotFound
	case errors.Is(err, apperror.ErrRoomFull), errors.Is(err, apperror.ErrAlreadyInRoom):
		return KindRoomFull
	case errors.Is(err, apperror.ErrCapacityExceeded):
		return KindCapacityExceeded
	case errors.Is(err, apperror.ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, apperror.ErrInvalidState):
		return KindInvalidState
	case errors.Is(err, apperror.ErrNotYourTurn):
		return KindNotYourTurn
	case errors.Is(err, apperror.ErrCellOccupied), errors.Is(err, apperror.ErrInvalidCell):
		return KindIllegalMove
	default:
		return KindInternal
	}
}
