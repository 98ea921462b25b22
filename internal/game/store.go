package game

import "sync"

// Store keeps local games keyed by client session ID.
type Store interface {
	Get(sessionID string) (*LocalGame, bool)
	Put(sessionID string, localGame *LocalGame)
	Delete(sessionID string)
}

type memoryStore struct {
	mu    sync.RWMutex
	games map[string]*LocalGame
}

func NewStore() Store {
	return &memoryStore{
		games: make(map[string]*LocalGame),
	}
}

func (that *memoryStore) Get(sessionID string) (*LocalGame, bool) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	localGame, ok := that.games[sessionID]

	return localGame, ok
}

func (that *memoryStore) Put(sessionID string, localGame *LocalGame) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.games[sessionID] = localGame
}

func (that *memoryStore) Delete(sessionID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.games, sessionID)
}
