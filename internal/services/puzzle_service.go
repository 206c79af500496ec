package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/xclues/xclues/internal/errors"
	"github.com/xclues/xclues/internal/game"
	"github.com/xclues/xclues/internal/logger"
	"github.com/xclues/xclues/internal/models"
	"github.com/xclues/xclues/internal/repository"
)

// PuzzleService handles puzzle-related business logic
type PuzzleService interface {
	// GetDailyPuzzle returns the puzzle for a date+genre, or nil when none
	// is published.
	GetDailyPuzzle(ctx context.Context, date, genre string) (*models.Puzzle, error)
	GetPuzzle(ctx context.Context, id string) (*models.Puzzle, error)
	CreatePuzzle(ctx context.Context, puzzle models.Puzzle) (*models.Puzzle, error)
	ListPuzzles(ctx context.Context, filter models.PuzzleFilter) ([]models.Puzzle, int, error)
	DeletePuzzle(ctx context.Context, id string) error
}

type puzzleService struct {
	puzzleRepo repository.PuzzleRepository
}

// NewPuzzleService creates a new PuzzleService
func NewPuzzleService(puzzleRepo repository.PuzzleRepository) PuzzleService {
	return &puzzleService{puzzleRepo: puzzleRepo}
}

func (s *puzzleService) GetDailyPuzzle(ctx context.Context, date, genre string) (*models.Puzzle, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting daily puzzle: date=%s, genre=%s", date, genre)

	puzzle, err := s.puzzleRepo.GetByDate(ctx, date, genre)
	if err != nil {
		log.Error("failed to get daily puzzle: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return puzzle, nil
}

func (s *puzzleService) GetPuzzle(ctx context.Context, id string) (*models.Puzzle, error) {
	log := logger.FromContext(ctx)

	puzzle, err := s.puzzleRepo.Get(ctx, id)
	if err != nil {
		log.Error("failed to get puzzle: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if puzzle == nil {
		return nil, errors.NewNotFoundError("puzzle", id)
	}
	return puzzle, nil
}

func (s *puzzleService) CreatePuzzle(ctx context.Context, puzzle models.Puzzle) (*models.Puzzle, error) {
	log := logger.FromContext(ctx)
	log.Debug("creating puzzle: date=%s, genre=%s", puzzle.Date, puzzle.Genre)

	if err := validatePuzzle(&puzzle); err != nil {
		return nil, err
	}

	existing, err := s.puzzleRepo.GetByDate(ctx, puzzle.Date, puzzle.Genre)
	if err != nil {
		log.Error("failed to check for existing puzzle: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if existing != nil {
		return nil, errors.NewConflictError(
			fmt.Sprintf("puzzle already published for %s/%s", puzzle.Date, puzzle.Genre))
	}

	if puzzle.ID == "" {
		puzzle.ID = uuid.NewString()
	}
	if err := s.puzzleRepo.Insert(ctx, puzzle); err != nil {
		log.Error("failed to insert puzzle: %v", err)
		return nil, errors.NewInternalError(err)
	}

	log.Info("puzzle created: id=%s, date=%s, genre=%s", puzzle.ID, puzzle.Date, puzzle.Genre)
	return &puzzle, nil
}

func (s *puzzleService) ListPuzzles(ctx context.Context, filter models.PuzzleFilter) ([]models.Puzzle, int, error) {
	log := logger.FromContext(ctx)

	puzzles, err := s.puzzleRepo.List(ctx, filter)
	if err != nil {
		log.Error("failed to list puzzles: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}
	total, err := s.puzzleRepo.Count(ctx, filter)
	if err != nil {
		log.Error("failed to count puzzles: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}
	return puzzles, total, nil
}

func (s *puzzleService) DeletePuzzle(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)

	if err := s.puzzleRepo.Delete(ctx, id); err != nil {
		log.Error("failed to delete puzzle: %v", err)
		return errors.NewNotFoundError("puzzle", id)
	}
	log.Info("puzzle deleted: id=%s", id)
	return nil
}

// validatePuzzle enforces the board invariant: 4 groups of 4 items whose
// union is exactly the 16 puzzle items, with one distinct difficulty and its
// canonical color per group. A missing flat item list is derived from the
// groups; a missing group color is filled from the difficulty.
func validatePuzzle(p *models.Puzzle) error {
	if p.Date == "" {
		return errors.NewValidationError("date", "required")
	}
	if p.Genre == "" {
		return errors.NewValidationError("genre", "required")
	}
	if len(p.Groups) != game.GroupCount {
		return errors.NewValidationError("groups", fmt.Sprintf("expected %d groups, got %d", game.GroupCount, len(p.Groups)))
	}

	seenIDs := make(map[int]bool, game.PuzzleSize)
	seenDifficulties := make(map[models.Difficulty]bool, game.GroupCount)
	var union []models.Item

	for i := range p.Groups {
		g := &p.Groups[i]
		if g.ID == "" {
			return errors.NewValidationError("groups", "group id required")
		}
		if len(g.Items) != game.GroupCount {
			return errors.NewValidationError("groups", fmt.Sprintf("group %s must have exactly 4 items", g.ID))
		}
		color, ok := models.ColorForDifficulty(g.Difficulty)
		if !ok {
			return errors.NewValidationError("difficulty", fmt.Sprintf("unknown difficulty %q in group %s", g.Difficulty, g.ID))
		}
		if seenDifficulties[g.Difficulty] {
			return errors.NewValidationError("difficulty", fmt.Sprintf("difficulty %q appears twice", g.Difficulty))
		}
		seenDifficulties[g.Difficulty] = true
		if g.Color == "" {
			g.Color = color
		} else if g.Color != color {
			return errors.NewValidationError("color", fmt.Sprintf("group %s color %q does not match difficulty %q", g.ID, g.Color, g.Difficulty))
		}
		for _, it := range g.Items {
			if seenIDs[it.ID] {
				return errors.NewValidationError("items", fmt.Sprintf("duplicate item id %d", it.ID))
			}
			seenIDs[it.ID] = true
			union = append(union, it)
		}
	}

	if len(p.Items) == 0 {
		p.Items = union
	} else {
		if len(p.Items) != game.PuzzleSize {
			return errors.NewValidationError("items", fmt.Sprintf("expected %d items, got %d", game.PuzzleSize, len(p.Items)))
		}
		for _, it := range p.Items {
			if !seenIDs[it.ID] {
				return errors.NewValidationError("items", fmt.Sprintf("item %d does not belong to any group", it.ID))
			}
		}
	}
	return nil
}
