package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyivgames/tictactoe-backend/internal/apperror"
)

func activeRoom(t *testing.T) *Room {
	t.Helper()

	room := NewRoom("AB12CD", &Player{ID: "player-a"})
	require.NoError(t, room.Join(&Player{ID: "player-b"}))

	return room
}

func mustMove(t *testing.T, room *Room, playerID string, row, col int) Snapshot {
	t.Helper()

	snapshot, err := room.ApplyMove(playerID, row, col)
	require.NoError(t, err)

	return snapshot
}

// winForX plays X:(0,0) O:(1,0) X:(0,1) O:(1,1) X:(0,2), giving X the top row.
func winForX(t *testing.T, room *Room) {
	t.Helper()

	mustMove(t, room, "player-a", 0, 0)
	mustMove(t, room, "player-b", 1, 0)
	mustMove(t, room, "player-a", 0, 1)
	mustMove(t, room, "player-b", 1, 1)
	mustMove(t, room, "player-a", 0, 2)
}

func TestNewRoom(t *testing.T) {
	// Given/When: a freshly created room
	room := NewRoom("AB12CD", &Player{ID: "player-a"})

	// Then: the creator is X, the room waits for an opponent, turn is X
	assert.Equal(t, StatusWaiting, room.Status)
	assert.Equal(t, PlayerX, room.Turn)
	require.Len(t, room.Players, 1)
	assert.Equal(t, PlayerX, room.Players[0].Symbol)
}

func TestRoom_Join(t *testing.T) {
	t.Run("Second join activates the room and binds O", func(t *testing.T) {
		// Given: a waiting room
		room := NewRoom("AB12CD", &Player{ID: "player-a"})

		// When: a second player joins
		err := room.Join(&Player{ID: "player-b"})

		// Then: the room is active, the joiner is O, the board is empty, turn is X
		require.NoError(t, err)
		assert.Equal(t, StatusActive, room.Status)
		assert.Equal(t, PlayerO, room.Players[1].Symbol)
		assert.Equal(t, Board{}, room.Board)
		assert.Equal(t, PlayerX, room.Turn)
	})

	t.Run("Rejoining participant is rejected", func(t *testing.T) {
		room := NewRoom("AB12CD", &Player{ID: "player-a"})

		err := room.Join(&Player{ID: "player-a"})

		assert.ErrorIs(t, err, apperror.ErrAlreadyInRoom)
	})

	t.Run("Third join loses the race with ErrRoomFull", func(t *testing.T) {
		room := activeRoom(t)

		err := room.Join(&Player{ID: "player-c"})

		assert.ErrorIs(t, err, apperror.ErrRoomFull)
	})
}

func TestRoom_ApplyMove(t *testing.T) {
	t.Run("Unbound connection is rejected first", func(t *testing.T) {
		room := activeRoom(t)

		_, err := room.ApplyMove("intruder", 0, 0)

		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})

	t.Run("Move in a waiting room is rejected", func(t *testing.T) {
		room := NewRoom("AB12CD", &Player{ID: "player-a"})

		_, err := room.ApplyMove("player-a", 0, 0)

		assert.ErrorIs(t, err, apperror.ErrInvalidState)
	})

	t.Run("O cannot move first", func(t *testing.T) {
		room := activeRoom(t)

		_, err := room.ApplyMove("player-b", 0, 0)

		assert.ErrorIs(t, err, apperror.ErrNotYourTurn)
	})

	t.Run("Out of range coordinates fail and leave state unchanged", func(t *testing.T) {
		// Given: an active room
		room := activeRoom(t)
		before := room.Snapshot()

		// When: X submits a move outside the grid
		_, err := room.ApplyMove("player-a", 3, 0)

		// Then: the move fails and board, turn and scores are identical
		assert.ErrorIs(t, err, apperror.ErrInvalidCell)
		assert.Equal(t, before, room.Snapshot())
	})

	t.Run("Occupied cell is rejected for the other player", func(t *testing.T) {
		room := activeRoom(t)
		mustMove(t, room, "player-a", 0, 0)

		_, err := room.ApplyMove("player-b", 0, 0)

		assert.ErrorIs(t, err, apperror.ErrCellOccupied)
	})

	t.Run("Accepted move places the mark and flips the turn", func(t *testing.T) {
		room := activeRoom(t)

		mustMove(t, room, "player-a", 0, 0)

		snapshot := room.Snapshot()
		assert.Equal(t, PlayerX, snapshot.Board[0][0])
		assert.Equal(t, PlayerO, snapshot.Turn)
		assert.Equal(t, StatusActive, snapshot.Status)
	})

	t.Run("Returned snapshot is exactly the state the move produced", func(t *testing.T) {
		// Given: an active room
		room := activeRoom(t)

		// When: a move is applied
		first := mustMove(t, room, "player-a", 0, 0)

		// Then: the returned snapshot already carries the move, matches the
		// room, and each accepted move bumps the version
		assert.Equal(t, PlayerX, first.Board[0][0])
		assert.Equal(t, PlayerO, first.Turn)
		assert.Equal(t, room.Snapshot(), first)

		second := mustMove(t, room, "player-b", 1, 1)
		assert.Greater(t, second.Version, first.Version)
	})

	t.Run("Winning move finishes the room and bumps the winner's score", func(t *testing.T) {
		// Given: an active room
		room := activeRoom(t)

		// When: X completes the top row
		winForX(t, room)

		// Then: the room is finished with X's win line and score
		snapshot := room.Snapshot()
		assert.Equal(t, StatusFinished, snapshot.Status)
		assert.Equal(t, PlayerX, snapshot.Winner)
		assert.Equal(t, []Cell{{0, 0}, {0, 1}, {0, 2}}, snapshot.WinLine)
		assert.Equal(t, Scores{X: 1}, snapshot.Scores)
	})

	t.Run("Draw bumps the draw counter", func(t *testing.T) {
		// Given: an active room played into a draw
		// X O X / X O O / O X X
		room := activeRoom(t)
		mustMove(t, room, "player-a", 0, 0)
		mustMove(t, room, "player-b", 0, 1)
		mustMove(t, room, "player-a", 0, 2)
		mustMove(t, room, "player-b", 1, 1)
		mustMove(t, room, "player-a", 1, 0)
		mustMove(t, room, "player-b", 1, 2)
		mustMove(t, room, "player-a", 2, 1)
		mustMove(t, room, "player-b", 2, 0)
		mustMove(t, room, "player-a", 2, 2)

		snapshot := room.Snapshot()
		assert.Equal(t, ResultDraw, snapshot.Winner)
		assert.Equal(t, Scores{Draw: 1}, snapshot.Scores)
		assert.Equal(t, StatusFinished, snapshot.Status)
	})

	t.Run("Stale move after the game finished changes nothing", func(t *testing.T) {
		// Given: a finished room
		room := activeRoom(t)
		winForX(t, room)
		before := room.Snapshot()

		// When: O retries a move after the finish
		_, err := room.ApplyMove("player-b", 2, 2)

		// Then: the move is rejected and no state moved, so at most one
		// move completed the game
		assert.ErrorIs(t, err, apperror.ErrInvalidState)
		assert.Equal(t, before, room.Snapshot())
	})

	t.Run("Mark counts stay balanced through a full game", func(t *testing.T) {
		// Given: an alternating sequence of legal moves
		room := activeRoom(t)
		moves := []struct {
			player   string
			row, col int
		}{
			{"player-a", 0, 0}, {"player-b", 1, 0}, {"player-a", 0, 1},
			{"player-b", 1, 1}, {"player-a", 0, 2},
		}

		for _, move := range moves {
			snapshot := mustMove(t, room, move.player, move.row, move.col)

			// Then: X-count minus O-count is always 0 or 1
			var xCount, oCount int
			for row := range snapshot.Board {
				for col := range snapshot.Board[row] {
					switch snapshot.Board[row][col] {
					case PlayerX:
						xCount++
					case PlayerO:
						oCount++
					}
				}
			}

			diff := xCount - oCount
			assert.GreaterOrEqual(t, diff, 0)
			assert.LessOrEqual(t, diff, 1)
		}
	})
}

func TestRoom_VoteRematch(t *testing.T) {
	t.Run("Unbound connection cannot vote", func(t *testing.T) {
		room := activeRoom(t)
		winForX(t, room)

		_, err := room.VoteRematch("intruder")

		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})

	t.Run("Voting before the game finished is rejected", func(t *testing.T) {
		room := activeRoom(t)

		_, err := room.VoteRematch("player-a")

		assert.ErrorIs(t, err, apperror.ErrInvalidState)
	})

	t.Run("One vote alone does not reset the board", func(t *testing.T) {
		// Given: a finished room
		room := activeRoom(t)
		winForX(t, room)

		// When: only O votes
		started, err := room.VoteRematch("player-b")

		// Then: no reset happened
		require.NoError(t, err)
		assert.False(t, started)
		assert.Equal(t, StatusFinished, room.Snapshot().Status)
	})

	t.Run("Second vote resets the board and carries scores over", func(t *testing.T) {
		// Given: a finished room with one rematch vote recorded
		room := activeRoom(t)
		winForX(t, room)
		before := room.Snapshot()

		_, err := room.VoteRematch("player-b")
		require.NoError(t, err)

		// When: the other symbol votes
		started, err := room.VoteRematch("player-a")

		// Then: a fresh game starts with the old scores and a newer version
		require.NoError(t, err)
		assert.True(t, started)

		snapshot := room.Snapshot()
		assert.Equal(t, StatusActive, snapshot.Status)
		assert.Equal(t, Board{}, snapshot.Board)
		assert.Equal(t, PlayerX, snapshot.Turn)
		assert.Empty(t, snapshot.Winner)
		assert.Empty(t, snapshot.WinLine)
		assert.Equal(t, before.Scores, snapshot.Scores)
		assert.Greater(t, snapshot.Version, before.Version)
	})

	t.Run("Double vote by the same symbol does not start the rematch", func(t *testing.T) {
		room := activeRoom(t)
		winForX(t, room)

		started, err := room.VoteRematch("player-b")
		require.NoError(t, err)
		require.False(t, started)

		started, err = room.VoteRematch("player-b")
		require.NoError(t, err)
		assert.False(t, started)
	})
}

func TestRoom_RemovePlayer(t *testing.T) {
	t.Run("Removing one participant returns the remaining peer", func(t *testing.T) {
		room := activeRoom(t)

		peer := room.RemovePlayer("player-a")

		require.NotNil(t, peer)
		assert.Equal(t, "player-b", peer.ID)
	})

	t.Run("Removing the last participant returns nil", func(t *testing.T) {
		room := NewRoom("AB12CD", &Player{ID: "player-a"})

		peer := room.RemovePlayer("player-a")

		assert.Nil(t, peer)
	})
}
