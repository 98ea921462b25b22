package apperror

import "errors"

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrRoomFull         = errors.New("room is already full")
	ErrCapacityExceeded = errors.New("no free room codes left")
	ErrUnauthorized     = errors.New("player is not bound to this room")
	ErrInvalidState     = errors.New("operation is not valid in the current room state")
	ErrNotYourTurn      = errors.New("it's not your turn")
	ErrCellOccupied     = errors.New("cell is already occupied")
	ErrInvalidCell      = errors.New("invalid cell coordinates")
	ErrAlreadyInRoom    = errors.New("player is already in this room")
	ErrGameFinished     = errors.New("game is already finished")
)
