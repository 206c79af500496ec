package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/xclues/xclues/internal/logger"
	"github.com/xclues/xclues/internal/models"
	"github.com/xclues/xclues/internal/repository"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

type puzzleRepository struct {
	db *sql.DB
}

// NewPuzzleRepository creates a new PuzzleRepository implementation
func NewPuzzleRepository(db *sql.DB) repository.PuzzleRepository {
	return &puzzleRepository{db: db}
}

func (r *puzzleRepository) GetByDate(ctx context.Context, date, genre string) (*models.Puzzle, error) {
	log := logger.FromContext(ctx).WithPrefix("puzzle_repo")
	log.Debug("getting puzzle: date=%s, genre=%s", date, genre)

	var p models.Puzzle
	err := r.db.QueryRowContext(ctx, `
SELECT id, puzzle_date, genre, created_at
FROM puzzles
WHERE puzzle_date = ? AND genre = ?
`, date, genre).Scan(&p.ID, &p.Date, &p.Genre, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("no puzzle published: date=%s, genre=%s", date, genre)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get puzzle: %v", err)
		return nil, err
	}
	if err := r.loadContents(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *puzzleRepository) Get(ctx context.Context, id string) (*models.Puzzle, error) {
	log := logger.FromContext(ctx).WithPrefix("puzzle_repo")
	log.Debug("getting puzzle: id=%s", id)

	var p models.Puzzle
	err := r.db.QueryRowContext(ctx, `
SELECT id, puzzle_date, genre, created_at
FROM puzzles
WHERE id = ?
`, id).Scan(&p.ID, &p.Date, &p.Genre, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get puzzle: %v", err)
		return nil, err
	}
	if err := r.loadContents(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// loadContents fills in the puzzle's groups and items. Items are attached to
// their group and to the puzzle's flat item list in stored order.
func (r *puzzleRepository) loadContents(ctx context.Context, p *models.Puzzle) error {
	log := logger.FromContext(ctx).WithPrefix("puzzle_repo")

	rows, err := r.db.QueryContext(ctx, `
SELECT id, connection, difficulty, color
FROM puzzle_groups
WHERE puzzle_id = ?
ORDER BY position
`, p.ID)
	if err != nil {
		log.Error("failed to query groups: %v", err)
		return err
	}
	defer rows.Close()

	groupIndex := map[string]int{}
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.Connection, &g.Difficulty, &g.Color); err != nil {
			log.Error("failed to scan group row: %v", err)
			return err
		}
		groupIndex[g.ID] = len(p.Groups)
		p.Groups = append(p.Groups, g)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	itemRows, err := r.db.QueryContext(ctx, `
SELECT id, group_id, title, COALESCE(year, 0), COALESCE(artist, ''), COALESCE(author, '')
FROM puzzle_items
WHERE puzzle_id = ?
ORDER BY id
`, p.ID)
	if err != nil {
		log.Error("failed to query items: %v", err)
		return err
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var it models.Item
		var groupID string
		if err := itemRows.Scan(&it.ID, &groupID, &it.Title, &it.Year, &it.Artist, &it.Author); err != nil {
			log.Error("failed to scan item row: %v", err)
			return err
		}
		p.Items = append(p.Items, it)
		if idx, ok := groupIndex[groupID]; ok {
			p.Groups[idx].Items = append(p.Groups[idx].Items, it)
		}
	}
	if err := itemRows.Err(); err != nil {
		return err
	}

	log.Debug("puzzle loaded: id=%s, items=%d, groups=%d", p.ID, len(p.Items), len(p.Groups))
	return nil
}

func (r *puzzleRepository) Insert(ctx context.Context, puzzle models.Puzzle) error {
	log := logger.FromContext(ctx).WithPrefix("puzzle_repo")
	log.Debug("inserting puzzle: id=%s, date=%s, genre=%s", puzzle.ID, puzzle.Date, puzzle.Genre)

	return tx(ctx, r.db, func(t *sql.Tx) error {
		if _, err := t.ExecContext(ctx, `
INSERT INTO puzzles (id, puzzle_date, genre)
VALUES (?, ?, ?)
`, puzzle.ID, puzzle.Date, puzzle.Genre); err != nil {
			log.Error("failed to insert puzzle: %v", err)
			return err
		}
		for pos, g := range puzzle.Groups {
			if _, err := t.ExecContext(ctx, `
INSERT INTO puzzle_groups (puzzle_id, id, connection, difficulty, color, position)
VALUES (?, ?, ?, ?, ?, ?)
`, puzzle.ID, g.ID, g.Connection, g.Difficulty, g.Color, pos); err != nil {
				log.Error("failed to insert group %s: %v", g.ID, err)
				return err
			}
			for _, it := range g.Items {
				if _, err := t.ExecContext(ctx, `
INSERT INTO puzzle_items (puzzle_id, id, group_id, title, year, artist, author)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, puzzle.ID, it.ID, g.ID, it.Title, it.Year, it.Artist, it.Author); err != nil {
					log.Error("failed to insert item %d: %v", it.ID, err)
					return err
				}
			}
		}
		return nil
	})
}

func (r *puzzleRepository) List(ctx context.Context, filter models.PuzzleFilter) ([]models.Puzzle, error) {
	log := logger.FromContext(ctx).WithPrefix("puzzle_repo")
	log.Debug("listing puzzles: genre=%s, from=%s, to=%s", filter.Genre, filter.DateFrom, filter.DateTo)

	query := sqlBuilder.Select("id", "puzzle_date", "genre", "created_at").From("puzzles")

	// Dynamic WHERE clauses
	if filter.Genre != "" {
		query = query.Where(squirrel.Eq{"genre": filter.Genre})
	}
	if filter.DateFrom != "" {
		query = query.Where(squirrel.GtOrEq{"puzzle_date": filter.DateFrom})
	}
	if filter.DateTo != "" {
		query = query.Where(squirrel.LtOrEq{"puzzle_date": filter.DateTo})
	}

	query = query.OrderBy("puzzle_date DESC")

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query = query.Limit(uint64(limit)).Offset(uint64(offset))

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to list puzzles: %v", err)
		return nil, err
	}
	defer rows.Close()

	var puzzles []models.Puzzle
	for rows.Next() {
		var p models.Puzzle
		if err := rows.Scan(&p.ID, &p.Date, &p.Genre, &p.CreatedAt); err != nil {
			log.Error("failed to scan puzzle row: %v", err)
			return nil, err
		}
		puzzles = append(puzzles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Listing returns headers only; contents load on Get.
	log.Debug("found %d puzzles", len(puzzles))
	return puzzles, nil
}

func (r *puzzleRepository) Count(ctx context.Context, filter models.PuzzleFilter) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("puzzle_repo")

	query := sqlBuilder.Select("COUNT(*)").From("puzzles")
	if filter.Genre != "" {
		query = query.Where(squirrel.Eq{"genre": filter.Genre})
	}
	if filter.DateFrom != "" {
		query = query.Where(squirrel.GtOrEq{"puzzle_date": filter.DateFrom})
	}
	if filter.DateTo != "" {
		query = query.Where(squirrel.LtOrEq{"puzzle_date": filter.DateTo})
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build count query: %v", err)
		return 0, err
	}

	var count int
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&count); err != nil {
		log.Error("failed to count puzzles: %v", err)
		return 0, err
	}
	return count, nil
}

func (r *puzzleRepository) Delete(ctx context.Context, id string) error {
	log := logger.FromContext(ctx).WithPrefix("puzzle_repo")
	log.Debug("deleting puzzle: id=%s", id)

	res, err := r.db.ExecContext(ctx, `DELETE FROM puzzles WHERE id = ?`, id)
	if err != nil {
		log.Error("failed to delete puzzle: %v", err)
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
