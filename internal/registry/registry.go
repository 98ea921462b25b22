package registry

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/kyivgames/tictactoe-backend/internal/apperror"
	"github.com/kyivgames/tictactoe-backend/internal/entity"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6

	// maxCodeAttempts bounds collision retries so an exhausted code space
	// surfaces as ErrCapacityExceeded instead of looping forever.
	maxCodeAttempts = 128
)

// Registry maps short human-shareable codes to active rooms. Its lock covers
// only code allocation, lookup and removal; it is never held while a room's
// own state is mutated, so unrelated games do not serialize on each other.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*entity.Room
}

func New() *Registry {
	return &Registry{
		rooms: make(map[string]*entity.Room),
	}
}

// Create allocates an unused code and opens a waiting room bound to the
// creator as X. Codes become reusable once their room is removed.
func (that *Registry) Create(creator *entity.Player) (*entity.Room, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	code, err := that.generateCode()
	if err != nil {
		return nil, err
	}

	room := entity.NewRoom(code, creator)
	that.rooms[code] = room

	return room, nil
}

// Get returns the room for a code, or ErrRoomNotFound.
func (that *Registry) Get(code string) (*entity.Room, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	room, ok := that.rooms[NormalizeCode(code)]
	if !ok {
		return nil, apperror.ErrRoomNotFound
	}

	return room, nil
}

// Remove deletes the room for a code. Removing an unknown code is a no-op.
func (that *Registry) Remove(code string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.rooms, NormalizeCode(code))
}

// Len returns the number of active rooms.
func (that *Registry) Len() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.rooms)
}

// CleanupOldRooms evicts rooms created more than maxAge ago and returns them.
func (that *Registry) CleanupOldRooms(maxAge time.Duration) []*entity.Room {
	that.mu.Lock()
	defer that.mu.Unlock()

	now := time.Now()

	var evicted []*entity.Room
	for code, room := range that.rooms {
		if now.Sub(room.CreatedAt) > maxAge {
			evicted = append(evicted, room)
			delete(that.rooms, code)
		}
	}

	return evicted
}

// NormalizeCode upper-cases and trims a client-supplied room code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// generateCode picks random codes until one is unused among active rooms.
// Callers must hold the registry lock.
func (that *Registry) generateCode() (string, error) {
	buf := make([]byte, codeLength)

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		for i := range buf {
			buf[i] = codeAlphabet[rand.Intn(len(codeAlphabet))] //nolint: gosec // codes are not secrets
		}

		code := string(buf)
		if _, taken := that.rooms[code]; !taken {
			return code, nil
		}
	}

	return "", apperror.ErrCapacityExceeded
}
