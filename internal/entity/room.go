package entity

import (
	"sync"
	"time"

	"github.com/kyivgames/tictactoe-backend/internal/apperror"
)

const (
	StatusWaiting  = "waiting"
	StatusActive   = "active"
	StatusFinished = "finished"
)

type Scores struct {
	X    int `json:"X"`
	O    int `json:"O"`
	Draw int `json:"draw"`
}

// Snapshot is the full state of a room as broadcast to both participants
// after any accepted transition. It is always complete, never a delta.
// Version increases with every accepted transition, so a receiver can drop a
// snapshot that was overtaken in flight.
type Snapshot struct {
	Code    string `json:"room_code"`
	Version uint64 `json:"version"`
	Board   Board  `json:"board"`
	Turn    string `json:"turn"`
	Winner  string `json:"winner,omitempty"`
	WinLine []Cell `json:"win_line,omitempty"`
	Scores  Scores `json:"scores"`
	Status  string `json:"status"`
}

// Room is the authoritative server-side state of one online match.
// All mutating methods serialize behind the room's own mutex; operations on
// different rooms never contend. No I/O happens under the lock.
type Room struct {
	mu sync.Mutex

	Code         string
	Version      uint64    // bumped on every accepted transition
	Players      []*Player // first is X, second is O, fixed for the room's lifetime
	Board        Board
	Turn         string
	Winner       string
	WinLine      []Cell
	Scores       Scores
	RematchVotes map[string]bool // keyed by symbol
	Status       string
	CreatedAt    time.Time
}

func NewRoom(code string, creator *Player) *Room {
	creator.Symbol = PlayerX

	return &Room{
		Code:         code,
		Players:      []*Player{creator},
		Turn:         PlayerX,
		RematchVotes: make(map[string]bool),
		Status:       StatusWaiting,
		CreatedAt:    time.Now(),
	}
}

// Join binds the second participant as O and starts the game.
func (that *Room) Join(joiner *Player) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.participant(joiner.ID) != nil {
		return apperror.ErrAlreadyInRoom
	}

	if len(that.Players) >= 2 {
		return apperror.ErrRoomFull
	}

	joiner.Symbol = PlayerO
	that.Players = append(that.Players, joiner)
	that.resetGame()

	return nil
}

// ApplyMove validates and applies one move, returning the post-move snapshot
// captured inside the same critical section so it cannot be overtaken by a
// concurrent move. Guard order: bound participant, active room, the mover's
// turn, legal cell. A move that arrives after the room finished is rejected
// without touching board, turn or scores, so at most one move can complete a
// game.
func (that *Room) ApplyMove(playerID string, row, col int) (Snapshot, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	player := that.participant(playerID)
	if player == nil {
		return Snapshot{}, apperror.ErrUnauthorized
	}

	if that.Status != StatusActive {
		return Snapshot{}, apperror.ErrInvalidState
	}

	if player.Symbol != that.Turn {
		return Snapshot{}, apperror.ErrNotYourTurn
	}

	if !InBounds(row, col) {
		return Snapshot{}, apperror.ErrInvalidCell
	}

	if that.Board[row][col] != EmptyCell {
		return Snapshot{}, apperror.ErrCellOccupied
	}

	that.Board[row][col] = player.Symbol
	that.Version++

	winner, line := that.Board.Evaluate()
	if winner == "" {
		that.Turn = ToggleMark(that.Turn)
		return that.snapshot(), nil
	}

	that.Winner = winner
	that.WinLine = line
	that.Status = StatusFinished

	switch winner {
	case PlayerX:
		that.Scores.X++
	case PlayerO:
		that.Scores.O++
	default:
		that.Scores.Draw++
	}

	return that.snapshot(), nil
}

// VoteRematch records the caller's rematch vote. Once both symbols have
// voted the room resets for a fresh game (scores carried over) and started
// is true.
func (that *Room) VoteRematch(playerID string) (bool, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	player := that.participant(playerID)
	if player == nil {
		return false, apperror.ErrUnauthorized
	}

	if that.Status != StatusFinished {
		return false, apperror.ErrInvalidState
	}

	that.RematchVotes[player.Symbol] = true

	if !that.RematchVotes[PlayerX] || !that.RematchVotes[PlayerO] {
		return false, nil
	}

	that.resetGame()

	return true, nil
}

// RemovePlayer unbinds a participant and returns the remaining peer, if any.
func (that *Room) RemovePlayer(playerID string) *Player {
	that.mu.Lock()
	defer that.mu.Unlock()

	for i, player := range that.Players {
		if player.ID == playerID {
			that.Players = append(that.Players[:i], that.Players[i+1:]...)
			break
		}
	}

	if len(that.Players) == 0 {
		return nil
	}

	return that.Players[0]
}

// Participant returns the bound player with the given ID, or nil.
func (that *Room) Participant(playerID string) *Player {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.participant(playerID)
}

// Peers returns the currently bound participants.
func (that *Room) Peers() []*Player {
	that.mu.Lock()
	defer that.mu.Unlock()

	peers := make([]*Player, len(that.Players))
	copy(peers, that.Players)

	return peers
}

// Snapshot copies the full room state under the room lock.
func (that *Room) Snapshot() Snapshot {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.snapshot()
}

// snapshot copies the room state. Callers must hold the room lock.
func (that *Room) snapshot() Snapshot {
	line := make([]Cell, len(that.WinLine))
	copy(line, that.WinLine)

	return Snapshot{
		Code:    that.Code,
		Version: that.Version,
		Board:   that.Board,
		Turn:    that.Turn,
		Winner:  that.Winner,
		WinLine: line,
		Scores:  that.Scores,
		Status:  that.Status,
	}
}

func (that *Room) participant(playerID string) *Player {
	for _, player := range that.Players {
		if player.ID == playerID {
			return player
		}
	}

	return nil
}

// resetGame clears the board for a new game, keeping players and scores.
// Callers must hold the room lock.
func (that *Room) resetGame() {
	that.Version++
	that.Board = Board{}
	that.Turn = PlayerX
	that.Winner = ""
	that.WinLine = nil
	that.RematchVotes = make(map[string]bool)
	that.Status = StatusActive
}
