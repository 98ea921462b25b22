package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kyivgames/tictactoe-backend/internal/apperror"
	"github.com/kyivgames/tictactoe-backend/internal/entity"
	"github.com/kyivgames/tictactoe-backend/internal/registry"
	"github.com/kyivgames/tictactoe-backend/internal/repository"
)

type playerRepo interface {
	GetOrCreate(ctx context.Context, id string) (*entity.Player, error)
}

type statsRepo interface {
	RecordResult(ctx context.Context, playerID, result string) error
}

// RoomManager drives the online session protocol for the transport layer:
// room lifecycle, turn arbitration and the rematch handshake. It owns no
// connections; the gateway routes messages in and broadcasts snapshots out.
type RoomManager struct {
	logger *slog.Logger

	rooms      *registry.Registry
	playerRepo playerRepo
	statsRepo  statsRepo

	roomMaxAge time.Duration
}

func NewRoomManager(logger *slog.Logger, rooms *registry.Registry, playerRepo playerRepo, statsRepo statsRepo, roomMaxAge time.Duration) *RoomManager {
	return &RoomManager{
		logger: logger,

		rooms:      rooms,
		playerRepo: playerRepo,
		statsRepo:  statsRepo,

		roomMaxAge: roomMaxAge,
	}
}

// ConnectPlayer resolves a connection to a stable player identity, creating
// a fresh one when the client brings no session ID.
func (that *RoomManager) ConnectPlayer(ctx context.Context, id string) (*entity.Player, error) {
	if id == "" {
		id = uuid.NewString()
	}

	player, err := that.playerRepo.GetOrCreate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create player: %w", err)
	}

	return player, nil
}

// CreateRoom opens a waiting room bound to the creator as X. Stale rooms are
// evicted on the way, so an abandoned lobby cannot pin its code forever.
func (that *RoomManager) CreateRoom(_ context.Context, playerID string) (*entity.Room, error) {
	log := that.logger.With("method", "CreateRoom")

	if evicted := that.rooms.CleanupOldRooms(that.roomMaxAge); len(evicted) > 0 {
		log.Info("evicted stale rooms", "count", len(evicted))
	}

	room, err := that.rooms.Create(&entity.Player{ID: playerID})
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	log.Info("room created", "code", room.Code, "playerID", playerID)

	return room, nil
}

// JoinRoom binds the joiner as O and activates the room.
func (that *RoomManager) JoinRoom(_ context.Context, code, playerID string) (*entity.Room, error) {
	room, err := that.rooms.Get(code)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	if err = room.Join(&entity.Player{ID: playerID}); err != nil {
		return nil, fmt.Errorf("failed to join room: %w", err)
	}

	that.logger.Info("player joined room", "code", room.Code, "playerID", playerID)

	return room, nil
}

// MakeMove applies one move against the authoritative room state and returns
// the post-move snapshot, captured atomically with the move so broadcasts
// carry exactly the state this move produced. When the move finishes the
// game, lifetime stats are recorded after the room lock is already released.
func (that *RoomManager) MakeMove(ctx context.Context, code, playerID string, row, col int) (*entity.Room, entity.Snapshot, error) {
	room, err := that.rooms.Get(code)
	if err != nil {
		return nil, entity.Snapshot{}, fmt.Errorf("failed to get room: %w", err)
	}

	snapshot, err := room.ApplyMove(playerID, row, col)
	if err != nil {
		return nil, entity.Snapshot{}, fmt.Errorf("failed to apply move: %w", err)
	}

	if snapshot.Status == entity.StatusFinished {
		that.recordResults(ctx, snapshot, room.Peers())
	}

	return room, snapshot, nil
}

// RequestRematch records a rematch vote; started reports whether both
// symbols have now voted and the room was reset for a fresh game.
func (that *RoomManager) RequestRematch(_ context.Context, code, playerID string) (*entity.Room, bool, error) {
	room, err := that.rooms.Get(code)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get room: %w", err)
	}

	started, err := room.VoteRematch(playerID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to vote rematch: %w", err)
	}

	if started {
		that.logger.Info("rematch started", "code", room.Code)
	}

	return room, started, nil
}

// LeaveRoom unbinds the leaver, destroys the room and returns the remaining
// peer so the gateway can notify it. Only a bound participant can destroy a
// room. Leaving an already-destroyed room is a no-op.
func (that *RoomManager) LeaveRoom(_ context.Context, code, playerID string) (*entity.Player, error) {
	room, err := that.rooms.Get(code)
	if err != nil {
		return nil, nil //nolint: nilerr // the room is already gone, nothing to do
	}

	if room.Participant(playerID) == nil {
		return nil, apperror.ErrUnauthorized
	}

	peer := room.RemovePlayer(playerID)
	that.rooms.Remove(code)

	that.logger.Info("player left room", "code", code, "playerID", playerID)

	return peer, nil
}

// recordResults bumps lifetime counters for both participants of a finished
// game. Failures are logged, never surfaced: stats must not fail a move.
func (that *RoomManager) recordResults(ctx context.Context, snapshot entity.Snapshot, peers []*entity.Player) {
	log := that.logger.With("method", "recordResults", "code", snapshot.Code)

	for _, peer := range peers {
		result := repository.ResultDraw
		if snapshot.Winner != entity.ResultDraw {
			result = repository.ResultLoss
			if peer.Symbol == snapshot.Winner {
				result = repository.ResultWin
			}
		}

		if err := that.statsRepo.RecordResult(ctx, peer.ID, result); err != nil {
			log.Error("failed to record result", "playerID", peer.ID, "error", err)
		}
	}
}
