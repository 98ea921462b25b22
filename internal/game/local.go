package game

import (
	"errors"
	"fmt"
	"sync"

	"github.com/kyivgames/tictactoe-backend/internal/apperror"
	"github.com/kyivgames/tictactoe-backend/internal/bot"
	"github.com/kyivgames/tictactoe-backend/internal/entity"
)

const (
	ModePvP = "pvp"
	ModePvE = "pve"
)

var ErrUnknownMode = errors.New("unknown game mode")

// LocalGame is one non-networked game held per client session. There is no
// room concept: state authority is this process, moves are synchronous.
// The mutex serializes concurrent moves for the same session, such as a
// double-submitted request.
type LocalGame struct {
	mu sync.Mutex

	Mode     string
	Board    entity.Board
	Turn     string
	GameOver bool
	Winner   string
	WinLine  []entity.Cell
}

// Move describes a single placed mark, used to report the computer's reply.
type Move struct {
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Symbol string `json:"symbol"`
}

// Result is the state returned after a local move, including the computer's
// answering move in PvE mode.
type Result struct {
	Board    entity.Board  `json:"board"`
	Turn     string        `json:"current_turn"`
	GameOver bool          `json:"game_over"`
	Winner   string        `json:"winner,omitempty"`
	WinLine  []entity.Cell `json:"win_line,omitempty"`
	BotMove  *Move         `json:"ai_move,omitempty"`
}

// Engine plays the local PvP and PvE modes. In PvE the human is X and the
// computer answers as O within the same Move call.
type Engine struct {
	bot bot.Service
}

func NewEngine(botService bot.Service) *Engine {
	return &Engine{
		bot: botService,
	}
}

func (that *Engine) NewGame(mode string) (*LocalGame, error) {
	if mode != ModePvP && mode != ModePvE {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}

	return &LocalGame{
		Mode: mode,
		Turn: entity.PlayerX,
	}, nil
}

func (that *Engine) Move(localGame *LocalGame, row, col int) (*Result, error) {
	localGame.mu.Lock()
	defer localGame.mu.Unlock()

	if localGame.GameOver {
		return nil, apperror.ErrGameFinished
	}

	if !entity.InBounds(row, col) {
		return nil, apperror.ErrInvalidCell
	}

	if localGame.Board[row][col] != entity.EmptyCell {
		return nil, apperror.ErrCellOccupied
	}

	localGame.Board[row][col] = localGame.Turn

	var botMove *Move

	if !that.settle(localGame) && localGame.Mode == ModePvE && localGame.Turn == entity.PlayerO {
		botRow, botCol, err := that.bot.ChooseMove(localGame.Board, entity.PlayerO)
		if err != nil {
			return nil, fmt.Errorf("bot failed to choose move: %w", err)
		}

		localGame.Board[botRow][botCol] = entity.PlayerO
		botMove = &Move{Row: botRow, Col: botCol, Symbol: entity.PlayerO}

		that.settle(localGame)
	}

	return &Result{
		Board:    localGame.Board,
		Turn:     localGame.Turn,
		GameOver: localGame.GameOver,
		Winner:   localGame.Winner,
		WinLine:  localGame.WinLine,
		BotMove:  botMove,
	}, nil
}

// settle evaluates the board after a placed mark: it either ends the game or
// passes the turn, and reports whether the game is over.
func (that *Engine) settle(localGame *LocalGame) bool {
	winner, line := localGame.Board.Evaluate()
	if winner == "" {
		localGame.Turn = entity.ToggleMark(localGame.Turn)
		return false
	}

	localGame.Winner = winner
	localGame.WinLine = line
	localGame.GameOver = true

	return true
}
