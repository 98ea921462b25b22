package websocket

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kyivgames/tictactoe-backend/internal/apperror"
)

func TestErrorKind(t *testing.T) {
	cases := []struct {
		err  error
		kind string
	}{
		{apperror.ErrRoomNotFound, KindNotFound},
		{apperror.ErrRoomFull, KindRoomFull},
		{apperror.ErrAlreadyInRoom, KindRoomFull},
		{apperror.ErrCapacityExceeded, KindCapacityExceeded},
		{apperror.ErrUnauthorized, KindUnauthorized},
		{apperror.ErrInvalidState, KindInvalidState},
		{apperror.ErrNotYourTurn, KindNotYourTurn},
		{apperror.ErrCellOccupied, KindIllegalMove},
		{apperror.ErrInvalidCell, KindIllegalMove},
		{errors.New("boom"), KindInternal},
	}

	for _, testCase := range cases {
		assert.Equal(t, testCase.kind, errorKind(testCase.err), "error %v", testCase.err)
	}

	// wrapped errors keep their kind
	wrapped := fmt.Errorf("failed to make move: %w", apperror.ErrNotYourTurn)
	assert.Equal(t, KindNotYourTurn, errorKind(wrapped))
}

func TestValidRoomCode(t *testing.T) {
	t.Run("Normalizes case and whitespace", func(t *testing.T) {
		normalized, ok := validRoomCode("  ab12cd ")

		assert.True(t, ok)
		assert.Equal(t, "AB12CD", normalized)
	})

	t.Run("Rejects malformed codes", func(t *testing.T) {
		for _, code := range []string{"", "AB12C", "AB12CDE", "AB-2CD", "абвгде"} {
			_, ok := validRoomCode(code)
			assert.False(t, ok, "code %q should be rejected", code)
		}
	})
}
