package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	apperrors "github.com/xclues/xclues/internal/errors"
	"github.com/xclues/xclues/internal/game"
	"github.com/xclues/xclues/internal/models"
	"github.com/xclues/xclues/internal/streak"
	"github.com/xclues/xclues/internal/testutil"
	"github.com/xclues/xclues/internal/testutil/mocks"
)

// manualScheduler collects scheduled callbacks so tests fire the reveal
// finalization deterministically, outside the service lock.
type manualScheduler struct {
	mu      sync.Mutex
	pending []func()
}

func (m *manualScheduler) schedule(d time.Duration, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, fn)
}

func (m *manualScheduler) fire() {
	m.mu.Lock()
	fns := m.pending
	m.pending = nil
	m.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

type captureSink struct {
	mu     sync.Mutex
	events []game.Event
}

func (c *captureSink) Track(ctx context.Context, event game.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *captureSink) names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var names []string
	for _, e := range c.events {
		names = append(names, e.EventName())
	}
	return names
}

type gameServiceFixture struct {
	service    GameService
	puzzleRepo *mocks.MockPuzzleRepository
	statsRepo  *mocks.MockStatsRepository
	scheduler  *manualScheduler
	sink       *captureSink
}

func newGameServiceFixture(t *testing.T) *gameServiceFixture {
	t.Helper()

	f := &gameServiceFixture{
		puzzleRepo: new(mocks.MockPuzzleRepository),
		statsRepo:  new(mocks.MockStatsRepository),
		scheduler:  &manualScheduler{},
		sink:       &captureSink{},
	}

	puzzle := testutil.FixturePuzzle(streak.Today(), "films")
	f.puzzleRepo.On("GetByDate", mock.Anything, streak.Today(), "films").Return(&puzzle, nil)

	f.service = NewGameService(
		NewPuzzleService(f.puzzleRepo),
		NewStatsService(f.statsRepo),
		f.sink,
		SiteInfo{Name: "Xclues", Domain: "xclues.space", Genre: "films"},
		WithScheduler(f.scheduler.schedule),
	)
	return f
}

// expectFreshDevice stubs the stats gateway for a device with no history.
func (f *gameServiceFixture) expectFreshDevice(deviceID string) {
	f.statsRepo.On("ResultForDate", mock.Anything, deviceID, streak.Today()).Return(nil, nil)
	f.statsRepo.On("HasResultForDate", mock.Anything, deviceID, streak.Today()).Return(false, nil)
	f.statsRepo.On("Get", mock.Anything, deviceID).Return(&models.UserStats{}, nil)
	f.statsRepo.On("AppendResult", mock.Anything, deviceID, mock.Anything).Return(nil)
	f.statsRepo.On("Save", mock.Anything, deviceID, mock.Anything).Return(nil)
}

func TestGameService_Session(t *testing.T) {
	f := newGameServiceFixture(t)
	f.expectFreshDevice("device-1")
	ctx := context.Background()

	session, result, err := f.service.Session(ctx, "device-1")
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, game.StatusPlaying, session.Status())
	assert.Len(t, session.Items(), 16)

	// Same device gets the same session back.
	again, _, err := f.service.Session(ctx, "device-1")
	require.NoError(t, err)
	assert.Same(t, session, again)
}

func TestGameService_Session_NoPuzzlePublished(t *testing.T) {
	puzzleRepo := new(mocks.MockPuzzleRepository)
	puzzleRepo.On("GetByDate", mock.Anything, streak.Today(), "films").Return(nil, nil)

	service := NewGameService(
		NewPuzzleService(puzzleRepo),
		NewStatsService(new(mocks.MockStatsRepository)),
		&captureSink{},
		SiteInfo{Name: "Xclues", Domain: "xclues.space", Genre: "films"},
	)

	_, _, err := service.Session(context.Background(), "device-1")
	assertAppErrorCode(t, err, apperrors.ErrCodeNotFound)
}

func TestGameService_Session_RestoresCompletedGame(t *testing.T) {
	f := newGameServiceFixture(t)
	ctx := context.Background()

	persisted := &models.GameResult{
		Date:     streak.Today(),
		Won:      true,
		Mistakes: 2,
		GuessHistory: [][]models.Color{
			{models.ColorYellow, models.ColorYellow, models.ColorYellow, models.ColorYellow},
		},
	}
	f.statsRepo.On("ResultForDate", mock.Anything, "device-1", streak.Today()).Return(persisted, nil)

	session, result, err := f.service.Session(ctx, "device-1")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, game.StatusWon, session.Status())
	assert.Equal(t, 2, session.Mistakes())
	assert.Empty(t, session.Items())
	assert.Len(t, session.FoundGroups(), 4)

	// Share text falls back to the persisted color history.
	text, err := f.service.ShareText(ctx, "device-1")
	require.NoError(t, err)
	assert.Contains(t, text, "🟨🟨🟨🟨")
}

func TestGameService_WinFlow(t *testing.T) {
	f := newGameServiceFixture(t)
	f.expectFreshDevice("device-1")
	ctx := context.Background()

	groups := [][]int{{1, 2, 3, 4}, {5, 6, 7, 8}, {9, 10, 11, 12}, {13, 14, 15, 16}}
	for _, ids := range groups {
		for _, id := range ids {
			_, _, err := f.service.SelectItem(ctx, "device-1", id)
			require.NoError(t, err)
		}
		session, _, outcome, err := f.service.SubmitGuess(ctx, "device-1")
		require.NoError(t, err)
		require.Equal(t, game.GuessMatched, outcome.Result)
		require.NotNil(t, outcome.Reveal)
		assert.True(t, session.RevealPending())

		f.scheduler.fire()
		assert.False(t, session.RevealPending())
	}

	session, result, err := f.service.Session(ctx, "device-1")
	require.NoError(t, err)
	assert.Equal(t, game.StatusWon, session.Status())
	require.NotNil(t, result)
	assert.True(t, result.Won)
	assert.Equal(t, 0, result.Mistakes)
	assert.Len(t, result.GuessHistory, 4)

	f.statsRepo.AssertCalled(t, "AppendResult", mock.Anything, "device-1",
		mock.MatchedBy(func(r models.GameResult) bool {
			return r.Won && r.Date == streak.Today()
		}))

	names := f.sink.names()
	assert.Contains(t, names, "guess_submitted")
	assert.Contains(t, names, "group_found")
	assert.Contains(t, names, "game_won")
}

func TestGameService_LossFlow(t *testing.T) {
	f := newGameServiceFixture(t)
	f.expectFreshDevice("device-1")
	ctx := context.Background()

	wrong := [][]int{
		{1, 2, 3, 5},
		{1, 2, 3, 6},
		{1, 2, 3, 7},
		{1, 2, 3, 8},
	}
	var last game.Outcome
	var recorded *models.GameResult
	for _, ids := range wrong {
		_, _, err := f.service.DeselectAll(ctx, "device-1")
		require.NoError(t, err)
		for _, id := range ids {
			_, _, err := f.service.SelectItem(ctx, "device-1", id)
			require.NoError(t, err)
		}
		_, result, outcome, err := f.service.SubmitGuess(ctx, "device-1")
		require.NoError(t, err)
		require.Equal(t, game.GuessMismatch, outcome.Result)
		last = outcome
		recorded = result
	}

	assert.True(t, last.Lost)
	assert.Equal(t, 4, last.Mistakes)

	// The losing submit already returns the recorded result.
	require.NotNil(t, recorded)
	assert.False(t, recorded.Won)

	session, result, err := f.service.Session(ctx, "device-1")
	require.NoError(t, err)
	assert.Equal(t, game.StatusLost, session.Status())
	require.NotNil(t, result)
	assert.False(t, result.Won)
	assert.Len(t, result.GuessHistory, 4)

	f.statsRepo.AssertCalled(t, "AppendResult", mock.Anything, "device-1",
		mock.MatchedBy(func(r models.GameResult) bool {
			return !r.Won && r.Mistakes == 4
		}))
	assert.Contains(t, f.sink.names(), "game_lost")
}

func TestGameService_ShareText(t *testing.T) {
	f := newGameServiceFixture(t)
	f.expectFreshDevice("device-1")
	ctx := context.Background()

	// Unfinished games have nothing to share.
	_, err := f.service.ShareText(ctx, "device-1")
	assertAppErrorCode(t, err, apperrors.ErrCodeBadRequest)

	groups := [][]int{{1, 2, 3, 4}, {5, 6, 7, 8}, {9, 10, 11, 12}, {13, 14, 15, 16}}
	for _, ids := range groups {
		for _, id := range ids {
			_, _, err := f.service.SelectItem(ctx, "device-1", id)
			require.NoError(t, err)
		}
		_, _, _, err := f.service.SubmitGuess(ctx, "device-1")
		require.NoError(t, err)
		f.scheduler.fire()
	}

	text, err := f.service.ShareText(ctx, "device-1")
	require.NoError(t, err)

	lines := strings.Split(text, "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "Xclues - "))
	assert.Equal(t, "🟨🟨🟨🟨", lines[1])
	assert.Equal(t, "🟩🟩🟩🟩", lines[2])
	assert.Equal(t, "🟦🟦🟦🟦", lines[3])
	assert.Equal(t, "🟪🟪🟪🟪", lines[4])
	assert.Equal(t, "Play: https://xclues.space", lines[5])
}

func TestGameService_RevealFinalizesOnce(t *testing.T) {
	f := newGameServiceFixture(t)
	f.expectFreshDevice("device-1")
	f.expectFreshDevice("device-2")
	ctx := context.Background()

	for _, id := range []int{1, 2, 3, 4} {
		_, _, err := f.service.SelectItem(ctx, "device-1", id)
		require.NoError(t, err)
	}
	session, _, outcome, err := f.service.SubmitGuess(ctx, "device-1")
	require.NoError(t, err)
	require.Equal(t, game.GuessMatched, outcome.Result)

	// Another device's activity must not disturb the pending timer.
	_, _, err = f.service.Session(ctx, "device-2")
	require.NoError(t, err)

	f.scheduler.fire()
	assert.Len(t, session.FoundGroups(), 1)
	f.scheduler.fire()
	assert.Len(t, session.FoundGroups(), 1)
}

func TestGameService_OverlappingReveals(t *testing.T) {
	f := newGameServiceFixture(t)
	f.expectFreshDevice("device-1")
	ctx := context.Background()

	// Submit all four groups before any finalize timer fires.
	groups := [][]int{{1, 2, 3, 4}, {5, 6, 7, 8}, {9, 10, 11, 12}, {13, 14, 15, 16}}
	var session *game.Session
	for _, ids := range groups {
		for _, id := range ids {
			_, _, err := f.service.SelectItem(ctx, "device-1", id)
			require.NoError(t, err)
		}
		var outcome game.Outcome
		var err error
		session, _, outcome, err = f.service.SubmitGuess(ctx, "device-1")
		require.NoError(t, err)
		require.Equal(t, game.GuessMatched, outcome.Result)
	}

	f.scheduler.fire()

	assert.Equal(t, game.StatusWon, session.Status())
	assert.Len(t, session.FoundGroups(), 4)
	assert.Empty(t, session.Items())
	assert.Contains(t, f.sink.names(), "game_won")
}

func TestGameService_MutationsOnRestoredSessionReturnResult(t *testing.T) {
	f := newGameServiceFixture(t)
	ctx := context.Background()

	persisted := &models.GameResult{
		Date:     streak.Today(),
		Won:      false,
		Mistakes: 4,
		GuessHistory: [][]models.Color{
			{models.ColorGreen, models.ColorGreen, models.ColorGreen, models.ColorGreen},
		},
	}
	f.statsRepo.On("ResultForDate", mock.Anything, "device-1", streak.Today()).Return(persisted, nil)

	session, result, err := f.service.SelectItem(ctx, "device-1", 1)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, persisted.GuessHistory, result.GuessHistory)
	assert.Equal(t, game.StatusLost, session.Status())

	_, result, err = f.service.DeselectAll(ctx, "device-1")
	require.NoError(t, err)
	assert.NotNil(t, result)

	_, result, err = f.service.ShuffleItems(ctx, "device-1")
	require.NoError(t, err)
	assert.NotNil(t, result)
}
