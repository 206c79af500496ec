package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xclues/xclues/internal/analytics"
	"github.com/xclues/xclues/internal/config"
	"github.com/xclues/xclues/internal/models"
	"github.com/xclues/xclues/internal/repository"
	"github.com/xclues/xclues/internal/repository/sqlite"
	"github.com/xclues/xclues/internal/services"
	"github.com/xclues/xclues/internal/streak"
	"github.com/xclues/xclues/internal/testutil"
)

// testServer wires the full stack over an in-memory database. Requests carry
// the device cookie forward, so a sequence of calls acts as one player.
type testServer struct {
	t         *testing.T
	handler   http.Handler
	cookies   []*http.Cookie
	scheduler *testScheduler
	statsRepo repository.StatsRepository
}

type testScheduler struct {
	mu      sync.Mutex
	pending []func()
}

func (ts *testScheduler) schedule(d time.Duration, fn func()) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.pending = append(ts.pending, fn)
}

func (ts *testScheduler) fire() {
	ts.mu.Lock()
	fns := ts.pending
	ts.pending = nil
	ts.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	database := testutil.NewTestDB(t)
	puzzleRepo := sqlite.NewPuzzleRepository(database.DB)
	statsRepo := sqlite.NewStatsRepository(database.DB)

	cfg := config.Config{
		Genre:      "films",
		SiteName:   "Xclues",
		SiteDomain: "xclues.space",
	}

	scheduler := &testScheduler{}
	puzzleService := services.NewPuzzleService(puzzleRepo)
	statsService := services.NewStatsService(statsRepo)
	gameService := services.NewGameService(puzzleService, statsService, analytics.NopSink{}, services.SiteInfo{
		Name:   cfg.SiteName,
		Domain: cfg.SiteDomain,
		Genre:  cfg.Genre,
	}, services.WithScheduler(scheduler.schedule))

	srv := &Server{
		PuzzleService: puzzleService,
		StatsService:  statsService,
		GameService:   gameService,
		Config:        cfg,
	}
	return &testServer{t: t, handler: srv.Routes(), scheduler: scheduler, statsRepo: statsRepo}
}

func (ts *testServer) request(method, path string, body any) *httptest.ResponseRecorder {
	ts.t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(ts.t, err)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, reader)
	for _, c := range ts.cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	if set := rec.Result().Cookies(); len(set) > 0 {
		ts.cookies = set
	}
	return rec
}

func (ts *testServer) decode(rec *httptest.ResponseRecorder, out any) {
	ts.t.Helper()
	require.NoError(ts.t, json.NewDecoder(rec.Body).Decode(out))
}

func (ts *testServer) publishTodayPuzzle() {
	ts.t.Helper()
	rec := ts.request(http.MethodPost, "/api/puzzles", testutil.FixturePuzzle(streak.Today(), "films"))
	require.Equal(ts.t, http.StatusCreated, rec.Code)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestDailyPuzzle(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(http.MethodGet, "/api/puzzle/today", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	ts.publishTodayPuzzle()

	rec = ts.request(http.MethodGet, "/api/puzzle/today", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var puzzle struct {
		Date  string `json:"date"`
		Genre string `json:"genre"`
		Items []struct {
			ID int `json:"id"`
		} `json:"items"`
	}
	ts.decode(rec, &puzzle)
	assert.Equal(t, streak.Today(), puzzle.Date)
	assert.Equal(t, "films", puzzle.Genre)
	assert.Len(t, puzzle.Items, 16)
}

func TestCreatePuzzle_Conflict(t *testing.T) {
	ts := newTestServer(t)
	ts.publishTodayPuzzle()

	rec := ts.request(http.MethodPost, "/api/puzzles", testutil.FixturePuzzle(streak.Today(), "films"))
	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	ts.decode(rec, &resp)
	assert.Equal(t, "CONFLICT", resp.Error.Code)
}

func TestGetPuzzle_NotFound(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(http.MethodGet, "/api/puzzles/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type sessionResponse struct {
	PuzzleDate        string `json:"puzzle_date"`
	PuzzleNumber      int    `json:"puzzle_number"`
	Status            string `json:"status"`
	Items             []json.RawMessage `json:"items"`
	SelectedItemIDs   []int             `json:"selected_item_ids"`
	Mistakes          int               `json:"mistakes"`
	MistakesRemaining int               `json:"mistakes_remaining"`
	Notification      string            `json:"notification"`
	GuessHistory      [][]any           `json:"guess_history"`
	FoundGroups       []struct {
		ID string `json:"id"`
	} `json:"found_groups"`
}

func TestGameFlow(t *testing.T) {
	ts := newTestServer(t)
	ts.publishTodayPuzzle()

	rec := ts.request(http.MethodGet, "/api/game", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, ts.cookies, "device cookie should be minted")

	var session sessionResponse
	ts.decode(rec, &session)
	assert.Equal(t, "playing", session.Status)
	assert.Equal(t, 4, session.MistakesRemaining)
	assert.Equal(t, streak.PuzzleNumber(streak.Today()), session.PuzzleNumber)

	// Solve the easy group.
	for _, id := range []int{1, 2, 3, 4} {
		rec = ts.request(http.MethodPost, "/api/game/select", map[string]int{"item_id": id})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec = ts.request(http.MethodPost, "/api/game/submit", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var submit struct {
		Result  string `json:"result"`
		OneAway bool   `json:"one_away"`
		Reveal  *struct {
			GroupID   string `json:"group_id"`
			ItemJumps []struct {
				ItemID  int   `json:"item_id"`
				AfterMs int64 `json:"after_ms"`
			} `json:"item_jumps"`
			FinalizeAfterMs int64 `json:"finalize_after_ms"`
		} `json:"reveal"`
		Session sessionResponse `json:"session"`
	}
	ts.decode(rec, &submit)
	assert.Equal(t, "matched", submit.Result)
	require.NotNil(t, submit.Reveal)
	assert.Equal(t, "g-easy", submit.Reveal.GroupID)
	require.Len(t, submit.Reveal.ItemJumps, 4)
	assert.Equal(t, int64(0), submit.Reveal.ItemJumps[0].AfterMs)
	assert.Equal(t, int64(300), submit.Reveal.ItemJumps[3].AfterMs)
	assert.Equal(t, int64(800), submit.Reveal.FinalizeAfterMs)

	ts.scheduler.fire()

	rec = ts.request(http.MethodGet, "/api/game", nil)
	ts.decode(rec, &session)
	require.Len(t, session.FoundGroups, 1)
	assert.Equal(t, "g-easy", session.FoundGroups[0].ID)

	// A wrong, one-away guess.
	for _, id := range []int{5, 6, 7, 9} {
		ts.request(http.MethodPost, "/api/game/select", map[string]int{"item_id": id})
	}
	rec = ts.request(http.MethodPost, "/api/game/submit", nil)
	ts.decode(rec, &submit)
	assert.Equal(t, "mismatch", submit.Result)
	assert.True(t, submit.OneAway)
	assert.Equal(t, 1, submit.Session.Mistakes)
	assert.Equal(t, "One away!", submit.Session.Notification)

	// Finish the rest.
	ts.request(http.MethodPost, "/api/game/deselect", nil)
	for _, ids := range [][]int{{5, 6, 7, 8}, {9, 10, 11, 12}, {13, 14, 15, 16}} {
		for _, id := range ids {
			ts.request(http.MethodPost, "/api/game/select", map[string]int{"item_id": id})
		}
		rec = ts.request(http.MethodPost, "/api/game/submit", nil)
		ts.decode(rec, &submit)
		require.Equal(t, "matched", submit.Result)
		ts.scheduler.fire()
	}

	rec = ts.request(http.MethodGet, "/api/game", nil)
	ts.decode(rec, &session)
	assert.Equal(t, "won", session.Status)
	assert.Len(t, session.GuessHistory, 5)

	// Stats reflect the recorded win.
	rec = ts.request(http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats struct {
		GamesPlayed   int `json:"games_played"`
		GamesWon      int `json:"games_won"`
		WinRate       int `json:"win_rate"`
		CurrentStreak int `json:"current_streak"`
	}
	ts.decode(rec, &stats)
	assert.Equal(t, 1, stats.GamesPlayed)
	assert.Equal(t, 1, stats.GamesWon)
	assert.Equal(t, 100, stats.WinRate)
	assert.Equal(t, 1, stats.CurrentStreak)

	// And the result is shareable.
	rec = ts.request(http.MethodGet, "/api/game/share", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var shareResp struct {
		Text string `json:"text"`
	}
	ts.decode(rec, &shareResp)
	assert.Contains(t, shareResp.Text, "Xclues - ")
	assert.Contains(t, shareResp.Text, "Play: https://xclues.space")
}

func TestGame_RestoredSessionHistory(t *testing.T) {
	ts := newTestServer(t)
	ts.publishTodayPuzzle()

	// A returning player: today's result is already on record.
	deviceID := uuid.NewString()
	ts.cookies = []*http.Cookie{{Name: "device_id", Value: deviceID}}
	history := [][]models.Color{
		{models.ColorYellow, models.ColorYellow, models.ColorYellow, models.ColorYellow},
		{models.ColorGreen, models.ColorGreen, models.ColorGreen, models.ColorGreen},
	}
	require.NoError(t, ts.statsRepo.AppendResult(context.Background(), deviceID, models.GameResult{
		Date:         streak.Today(),
		Won:          false,
		Mistakes:     4,
		CompletedAt:  time.Now().UTC(),
		GuessHistory: history,
	}))

	var session sessionResponse
	rec := ts.request(http.MethodGet, "/api/game", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ts.decode(rec, &session)
	assert.Equal(t, "lost", session.Status)
	assert.Len(t, session.GuessHistory, 2)

	// Mutation responses carry the same persisted history.
	rec = ts.request(http.MethodPost, "/api/game/select", map[string]int{"item_id": 1})
	require.Equal(t, http.StatusOK, rec.Code)
	ts.decode(rec, &session)
	assert.Len(t, session.GuessHistory, 2)

	rec = ts.request(http.MethodPost, "/api/game/deselect", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ts.decode(rec, &session)
	assert.Len(t, session.GuessHistory, 2)
}

func TestShare_UnfinishedGame(t *testing.T) {
	ts := newTestServer(t)
	ts.publishTodayPuzzle()

	rec := ts.request(http.MethodGet, "/api/game/share", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSelectItem_BadPayload(t *testing.T) {
	ts := newTestServer(t)
	ts.publishTodayPuzzle()

	rec := ts.request(http.MethodPost, "/api/game/select", map[string]string{"item": "one"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResetStats(t *testing.T) {
	ts := newTestServer(t)
	ts.publishTodayPuzzle()

	rec := ts.request(http.MethodPost, "/api/stats/reset", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
