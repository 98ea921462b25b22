package bot

import (
	"errors"
	"math/rand"

	"github.com/kyivgames/tictactoe-backend/internal/entity"
)

var ErrNoAvailableMoves = errors.New("no available moves")

// Service picks the computer opponent's next move. Callers treat it as a
// black box over the board.
type Service interface {
	ChooseMove(board entity.Board, mark string) (int, int, error)
}

type minimaxService struct{}

// NewService returns a move chooser playing optimally via minimax, breaking
// ties between equally good cells at random.
func NewService() Service {
	return &minimaxService{}
}

func (that *minimaxService) ChooseMove(board entity.Board, mark string) (int, int, error) {
	opponent := entity.ToggleMark(mark)

	bestScore := -2
	var bestMoves []entity.Cell

	for row := 0; row < entity.BoardSize; row++ {
		for col := 0; col < entity.BoardSize; col++ {
			if board[row][col] != entity.EmptyCell {
				continue
			}

			board[row][col] = mark
			score := minimax(&board, mark, opponent, false)
			board[row][col] = entity.EmptyCell

			if score > bestScore {
				bestScore = score
				bestMoves = []entity.Cell{{row, col}}
			} else if score == bestScore {
				bestMoves = append(bestMoves, entity.Cell{row, col})
			}
		}
	}

	if len(bestMoves) == 0 {
		return 0, 0, ErrNoAvailableMoves
	}

	move := bestMoves[rand.Intn(len(bestMoves))] //nolint: gosec // tie-break only

	return move[0], move[1], nil
}

// minimax scores the board from the bot's point of view: +1 a won game,
// -1 a lost one, 0 a draw.
func minimax(board *entity.Board, mark, opponent string, maximizing bool) int {
	switch winner, _ := board.Evaluate(); winner {
	case mark:
		return 1
	case opponent:
		return -1
	case entity.ResultDraw:
		return 0
	}

	current := opponent
	if maximizing {
		current = mark
	}

	best := 2
	if maximizing {
		best = -2
	}

	for row := 0; row < entity.BoardSize; row++ {
		for col := 0; col < entity.BoardSize; col++ {
			if board[row][col] != entity.EmptyCell {
				continue
			}

			board[row][col] = current
			score := minimax(board, mark, opponent, !maximizing)
			board[row][col] = entity.EmptyCell

			if maximizing && score > best {
				best = score
			}
			if !maximizing && score < best {
				best = score
			}
		}
	}

	return best
}
