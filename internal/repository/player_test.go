package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyivgames/tictactoe-backend/internal/entity"
	"github.com/kyivgames/tictactoe-backend/testing/suite"
)

func TestPlayerRepository_CreateOrUpdate(t *testing.T) {
	ctx, st := suite.New(t)

	playerRepo := NewPlayerRepository(st.Storage)

	// Given: a player with an ID
	player := &entity.Player{ID: "123", Symbol: entity.PlayerX}

	// When: CreateOrUpdate is called
	err := playerRepo.CreateOrUpdate(ctx, player)

	// Then: no error should be returned
	require.NoError(t, err)
}

func TestPlayerRepository_GetByID(t *testing.T) {
	t.Run("GetByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		playerRepo := NewPlayerRepository(st.Storage)

		// Given: a stored player
		player := &entity.Player{ID: "123", Symbol: entity.PlayerO}

		err := playerRepo.CreateOrUpdate(ctx, player)
		require.NoError(t, err)

		// When: GetByID is called with the existing ID
		retrievedPlayer, err := playerRepo.GetByID(ctx, player.ID)

		// Then: the retrieved player matches the saved one
		require.NoError(t, err)
		assert.Equal(t, player.ID, retrievedPlayer.ID)
		assert.Equal(t, player.Symbol, retrievedPlayer.Symbol)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		playerRepo := NewPlayerRepository(st.Storage)

		// When: GetByID is called with a non-existent ID
		_, err := playerRepo.GetByID(ctx, "9999999")

		// Then: an ErrPlayerNotFound error should be returned
		assert.ErrorIs(t, err, ErrPlayerNotFound)
	})
}

func TestPlayerRepository_GetOrCreate(t *testing.T) {
	ctx, st := suite.New(t)

	playerRepo := NewPlayerRepository(st.Storage)

	// Given: no record for the ID yet
	// When: GetOrCreate is called twice with the same ID
	created, err := playerRepo.GetOrCreate(ctx, "123")
	require.NoError(t, err)

	fetched, err := playerRepo.GetOrCreate(ctx, "123")
	require.NoError(t, err)

	// Then: the same identity comes back
	assert.Equal(t, "123", created.ID)
	assert.Equal(t, created.ID, fetched.ID)
}
