package client

import (
	"sync"

	"github.com/kyivgames/tictactoe-backend/internal/entity"
	"github.com/kyivgames/tictactoe-backend/transport/websocket"
)

const (
	ModePvP    = "pvp"
	ModePvE    = "pve"
	ModeOnline = "online"
)

// ViewState is the client's local mirror of game state. It is only ever
// replaced wholesale from a server snapshot, never merged or diffed, so the
// mirror converges with the authoritative state in snapshot delivery order.
type ViewState struct {
	Mode     string
	RoomCode string
	Symbol   string // this client's mark, online mode only
	Version  uint64 // room version of the last applied snapshot

	Board    entity.Board
	Turn     string
	GameOver bool
	Winner   string
	WinLine  []entity.Cell
	Scores   entity.Scores
}

// Reconciler applies server-pushed snapshots to the local view state and
// gates local move attempts. The gate is a latency optimization only; the
// server re-checks every move.
type Reconciler struct {
	mu    sync.RWMutex
	state ViewState
}

func New(mode string) *Reconciler {
	return &Reconciler{
		state: ViewState{
			Mode: mode,
			Turn: entity.PlayerX,
		},
	}
}

// JoinedRoom records this client's room binding from a room_created or
// room_joined ack.
func (that *Reconciler) JoinedRoom(roomCode, symbol string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.state.RoomCode = roomCode
	that.state.Symbol = symbol
}

// ApplyGameStart resets the mirror for a fresh game, keeping the
// server-pushed scoreboard. A snapshot older than the mirror is dropped.
func (that *Reconciler) ApplyGameStart(payload websocket.GameStartPayload) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.stale(payload.Version) {
		return
	}

	that.state.Version = payload.Version
	that.state.Board = payload.Board
	that.state.Turn = payload.Turn
	that.state.Scores = payload.Scores
	that.state.GameOver = false
	that.state.Winner = ""
	that.state.WinLine = nil
}

// ApplyGameUpdate overwrites the mirror with a full post-move snapshot.
// A snapshot older than the mirror is dropped: snapshots from different
// participants' moves can arrive out of order, and applying a stale one
// would roll the mirror behind the authoritative state.
func (that *Reconciler) ApplyGameUpdate(payload websocket.GameUpdatePayload) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.stale(payload.Version) {
		return
	}

	that.state.Version = payload.Version
	that.state.Board = payload.Board
	that.state.Turn = payload.Turn
	that.state.Winner = payload.Winner
	that.state.WinLine = payload.WinLine
	that.state.Scores = payload.Scores
	that.state.GameOver = payload.Winner != ""
}

// stale reports whether a snapshot version is behind the mirror. Version zero
// payloads (local modes carry no room version) always apply. Callers must
// hold the lock.
func (that *Reconciler) stale(version uint64) bool {
	return version != 0 && version < that.state.Version
}

// OpponentLeft marks the game over; the room no longer exists server-side.
func (that *Reconciler) OpponentLeft() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.state.GameOver = true
	that.state.RoomCode = ""
}

// CanMove gates a local move attempt: the game must be running, the cell
// free, and in online mode it must be this client's turn.
func (that *Reconciler) CanMove(row, col int) bool {
	that.mu.RLock()
	defer that.mu.RUnlock()

	if that.state.GameOver {
		return false
	}

	if !that.state.Board.Legal(row, col) {
		return false
	}

	if that.state.Mode == ModeOnline && that.state.Symbol != that.state.Turn {
		return false
	}

	return true
}

// State returns a copy of the current mirror.
func (that *Reconciler) State() ViewState {
	that.mu.RLock()
	defer that.mu.RUnlock()

	state := that.state
	state.WinLine = make([]entity.Cell, len(that.state.WinLine))
	copy(state.WinLine, that.state.WinLine)

	return state
}
