package services

import (
	"context"
	"sync"
	"time"

	"github.com/xclues/xclues/internal/analytics"
	"github.com/xclues/xclues/internal/errors"
	"github.com/xclues/xclues/internal/game"
	"github.com/xclues/xclues/internal/logger"
	"github.com/xclues/xclues/internal/models"
	"github.com/xclues/xclues/internal/share"
	"github.com/xclues/xclues/internal/streak"
)

// GameService owns the live game sessions, one per device per day. It is the
// composing layer around the game state machine: it serializes access,
// schedules the reveal finalization the core only describes, forwards domain
// events to the analytics sink, and persists results on terminal transitions.
type GameService interface {
	// Session returns the device's session for today, starting or restoring
	// it as needed. The result is the persisted completion for today, if any;
	// its guess history is the display source for restored sessions. Mutation
	// methods return the same session/result pair after applying their change.
	Session(ctx context.Context, deviceID string) (*game.Session, *models.GameResult, error)
	SelectItem(ctx context.Context, deviceID string, itemID int) (*game.Session, *models.GameResult, error)
	DeselectAll(ctx context.Context, deviceID string) (*game.Session, *models.GameResult, error)
	SubmitGuess(ctx context.Context, deviceID string) (*game.Session, *models.GameResult, game.Outcome, error)
	ShuffleItems(ctx context.Context, deviceID string) (*game.Session, *models.GameResult, error)
	ShareText(ctx context.Context, deviceID string) (string, error)
}

// Scheduler runs fn after d. The default is time.AfterFunc; tests substitute
// a synchronous one.
type Scheduler func(d time.Duration, fn func())

// SiteInfo is the branding rendered into share text.
type SiteInfo struct {
	Name   string
	Domain string
	Genre  string
}

type sessionEntry struct {
	session *game.Session
	date    string
	result  *models.GameResult
}

type gameService struct {
	puzzles  PuzzleService
	stats    StatsService
	sink     analytics.Sink
	site     SiteInfo
	schedule Scheduler

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

// GameOption configures a GameService.
type GameOption func(*gameService)

// WithScheduler overrides the reveal timer scheduler.
func WithScheduler(s Scheduler) GameOption {
	return func(g *gameService) { g.schedule = s }
}

// NewGameService creates a new GameService
func NewGameService(puzzles PuzzleService, stats StatsService, sink analytics.Sink, site SiteInfo, opts ...GameOption) GameService {
	g := &gameService{
		puzzles:  puzzles,
		stats:    stats,
		sink:     sink,
		site:     site,
		sessions: make(map[string]*sessionEntry),
		schedule: func(d time.Duration, fn func()) { time.AfterFunc(d, fn) },
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *gameService) Session(ctx context.Context, deviceID string) (*game.Session, *models.GameResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	entry, err := g.entryLocked(ctx, deviceID)
	if err != nil {
		return nil, nil, err
	}
	return entry.session, entry.result, nil
}

// entryLocked returns the device's entry for today, creating it when the day
// rolled over or the device is new. A superseded entry is simply dropped:
// pending timers hold the old entry pointer and will no-op (see finalize).
func (g *gameService) entryLocked(ctx context.Context, deviceID string) (*sessionEntry, error) {
	log := logger.FromContext(ctx)
	today := streak.Today()

	if entry, ok := g.sessions[deviceID]; ok && entry.date == today {
		return entry, nil
	}

	puzzle, err := g.puzzles.GetDailyPuzzle(ctx, today, g.site.Genre)
	if err != nil {
		return nil, err
	}
	if puzzle == nil {
		log.Warn("no puzzle published: date=%s, genre=%s", today, g.site.Genre)
		return nil, errors.NewNotFoundError("puzzle", today)
	}

	result, err := g.stats.ResultForDate(ctx, deviceID, today)
	if err != nil {
		return nil, err
	}

	var session *game.Session
	if result != nil {
		log.Debug("restoring completed game: device_id=%s, won=%v", deviceID, result.Won)
		session = game.RestoreCompletedSession(puzzle.Groups, result.Won, result.Mistakes, today)
	} else {
		log.Debug("starting new session: device_id=%s, date=%s", deviceID, today)
		session = game.NewSession(puzzle.Items, puzzle.Groups, today)
	}

	entry := &sessionEntry{session: session, date: today, result: result}
	g.sessions[deviceID] = entry
	return entry, nil
}

func (g *gameService) SelectItem(ctx context.Context, deviceID string, itemID int) (*game.Session, *models.GameResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	entry, err := g.entryLocked(ctx, deviceID)
	if err != nil {
		return nil, nil, err
	}
	entry.session.SelectItem(itemID)
	g.drainLocked(ctx, entry.session)
	return entry.session, entry.result, nil
}

func (g *gameService) DeselectAll(ctx context.Context, deviceID string) (*game.Session, *models.GameResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	entry, err := g.entryLocked(ctx, deviceID)
	if err != nil {
		return nil, nil, err
	}
	entry.session.DeselectAll()
	return entry.session, entry.result, nil
}

func (g *gameService) ShuffleItems(ctx context.Context, deviceID string) (*game.Session, *models.GameResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	entry, err := g.entryLocked(ctx, deviceID)
	if err != nil {
		return nil, nil, err
	}
	entry.session.ShuffleItems()
	g.drainLocked(ctx, entry.session)
	return entry.session, entry.result, nil
}

func (g *gameService) SubmitGuess(ctx context.Context, deviceID string) (*game.Session, *models.GameResult, game.Outcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	entry, err := g.entryLocked(ctx, deviceID)
	if err != nil {
		return nil, nil, game.Outcome{}, err
	}

	outcome := entry.session.SubmitGuess()
	g.drainLocked(ctx, entry.session)

	switch outcome.Result {
	case game.GuessMatched:
		g.scheduleFinalize(deviceID, entry, outcome.Reveal.FinalizeAfter)
	case game.GuessMismatch:
		if outcome.Lost {
			g.recordLocked(ctx, deviceID, entry)
		}
	}

	return entry.session, entry.result, outcome, nil
}

// scheduleFinalize commits the pending group after the reveal animation
// window. The entry pointer doubles as a session generation token: if a new
// day replaced the entry before the timer fired, the callback does nothing.
func (g *gameService) scheduleFinalize(deviceID string, entry *sessionEntry, after time.Duration) {
	g.schedule(after, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.sessions[deviceID] != entry {
			return
		}
		ctx := context.Background()
		entry.session.CompleteReveal()
		g.drainLocked(ctx, entry.session)
		if entry.session.Status() == game.StatusWon {
			g.recordLocked(ctx, deviceID, entry)
		}
	})
}

// recordLocked persists a terminal session's result. Stats gateway failures
// are logged, not surfaced: the game outcome already happened and stays
// playable for display either way.
func (g *gameService) recordLocked(ctx context.Context, deviceID string, entry *sessionEntry) {
	log := logger.FromContext(ctx)
	session := entry.session

	result := models.GameResult{
		Date:         session.PuzzleDate(),
		Won:          session.Status() == game.StatusWon,
		Mistakes:     session.Mistakes(),
		CompletedAt:  time.Now().UTC(),
		GuessHistory: share.GuessesToColorHistory(session.PreviousGuesses(), session.Groups()),
	}

	if _, err := g.stats.RecordCompletion(ctx, deviceID, result); err != nil {
		log.Error("failed to record completion: device_id=%s: %v", deviceID, err)
		return
	}
	entry.result = &result
}

func (g *gameService) drainLocked(ctx context.Context, session *game.Session) {
	for _, event := range session.DrainEvents() {
		g.sink.Track(ctx, event)
	}
}

func (g *gameService) ShareText(ctx context.Context, deviceID string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	entry, err := g.entryLocked(ctx, deviceID)
	if err != nil {
		return "", err
	}

	session := entry.session
	if session.Status() == game.StatusPlaying {
		return "", errors.NewBadRequestError("game not finished")
	}

	// A restored session has no guess log; the persisted result is
	// authoritative for its color history.
	history := share.GuessesToColorHistory(session.PreviousGuesses(), session.Groups())
	if len(history) == 0 && entry.result != nil {
		history = entry.result.GuessHistory
	}

	return share.Text(share.Options{
		SiteName:     g.site.Name,
		PuzzleDate:   session.PuzzleDate(),
		GuessHistory: history,
		Domain:       g.site.Domain,
	}), nil
}
