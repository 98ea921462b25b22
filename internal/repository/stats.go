package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/kyivgames/tictactoe-backend/internal/entity"
)

const (
	ResultWin  = "win"
	ResultLoss = "loss"
	ResultDraw = "draw"
)

// StatsRepository keeps lifetime win/loss/draw counters per player.
type StatsRepository interface {
	RecordResult(ctx context.Context, playerID, result string) error
	GetByID(ctx context.Context, playerID string) (*entity.PlayerStats, error)
}

type dbStats struct {
	client *redis.Client
}

func NewStatsRepository(client *redis.Client) StatsRepository {
	return &dbStats{
		client: client,
	}
}

func (that *dbStats) RecordResult(ctx context.Context, playerID, result string) error {
	var field string

	switch result {
	case ResultWin:
		field = "wins"
	case ResultLoss:
		field = "losses"
	case ResultDraw:
		field = "draws"
	default:
		return fmt.Errorf("unknown game result %q", result)
	}

	statsKey := "stats:" + playerID
	if err := that.client.HIncrBy(ctx, statsKey, field, 1).Err(); err != nil {
		return fmt.Errorf("failed to record result: %w", err)
	}

	return nil
}

func (that *dbStats) GetByID(ctx context.Context, playerID string) (*entity.PlayerStats, error) {
	statsKey := "stats:" + playerID

	fields, err := that.client.HGetAll(ctx, statsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get stats by ID: %w", err)
	}

	stats := &entity.PlayerStats{}
	for field, value := range fields {
		count, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("failed to parse stats field %s: %w", field, err)
		}

		switch field {
		case "wins":
			stats.Wins = count
		case "losses":
			stats.Losses = count
		case "draws":
			stats.Draws = count
		}
	}

	return stats, nil
}
