// Package game implements the connections puzzle session: guess evaluation,
// mistake tracking, win/loss transitions and the reveal sequencing for a
// correct guess.
//
// A Session is a plain state machine over in-memory state. It is not safe for
// concurrent use; callers serialize access (see services.GameService). All
// timing concerns are expressed as data: transient state carries deadlines
// checked against the session clock, and a correct guess returns a RevealPlan
// for the caller to schedule, with CompleteReveal committing the result.
package game

import (
	"math/rand"
	"sort"
	"time"

	"github.com/xclues/xclues/internal/models"
)

// Fixed game-design parameters.
const (
	MaxMistakes   = 4
	MaxSelections = 4
	GroupCount    = 4
	PuzzleSize    = 16
)

// Timing of transient state and the staggered reveal.
const (
	NotificationTTL = 2000 * time.Millisecond
	ShakeTTL        = 500 * time.Millisecond
	JumpStagger     = 100 * time.Millisecond
	revealTail      = 400 * time.Millisecond
)

// Player-facing notifications.
const (
	NoticeOneAway      = "One away!"
	NoticeAlreadyTried = "Already tried!"
)

// Status is the session lifecycle state. Transitions only move forward:
// playing to won or lost, never back.
type Status string

const (
	StatusPlaying Status = "playing"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
)

// GuessResult classifies a SubmitGuess call.
type GuessResult string

const (
	// GuessIgnored: submit was a no-op (terminal state or not 4 selected).
	GuessIgnored GuessResult = "ignored"
	// GuessDuplicate: the exact tuple was tried before; no state consumed.
	GuessDuplicate GuessResult = "duplicate"
	// GuessMatched: the tuple equals a group; reveal is pending.
	GuessMatched GuessResult = "matched"
	// GuessMismatch: a mistake was consumed.
	GuessMismatch GuessResult = "mismatch"
)

// ItemJump is one step of the staggered reveal animation.
type ItemJump struct {
	ItemID int
	After  time.Duration
}

// RevealPlan tells the caller how to sequence a matched group's reveal:
// each item jumps at its offset, and CompleteReveal should be called after
// FinalizeAfter to commit the group.
type RevealPlan struct {
	GroupID       string
	ItemJumps     []ItemJump
	FinalizeAfter time.Duration
}

// Outcome reports what a SubmitGuess call did.
type Outcome struct {
	Result   GuessResult
	Group    *models.Group // set when Result == GuessMatched
	OneAway  bool
	Mistakes int
	Lost     bool
	Reveal   *RevealPlan // set when Result == GuessMatched
}

type pendingReveal struct {
	group      models.Group
	startedAt  time.Time
	jumps      []ItemJump
	finalizeAt time.Time
}

// Session owns one player's progress through one day's puzzle.
type Session struct {
	puzzleDate      string
	items           []models.Item
	groups          []models.Group
	selected        []int
	foundGroups     []models.Group
	previousGuesses [][]int
	mistakes        int
	status          Status

	notification      string
	notificationUntil time.Time
	shakeUntil        time.Time
	reveals           []pendingReveal

	events []Event

	now func() time.Time
	rng *rand.Rand
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithClock overrides the session clock. Used by tests to control
// notification expiry and reveal deadlines.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// WithRand overrides the shuffle source for deterministic layouts.
func WithRand(rng *rand.Rand) SessionOption {
	return func(s *Session) { s.rng = rng }
}

// NewSession starts a fresh session for the given puzzle day. The item order
// is a uniform permutation of the input; the input slice is not mutated.
func NewSession(items []models.Item, groups []models.Group, puzzleDate string, opts ...SessionOption) *Session {
	s := &Session{
		puzzleDate: puzzleDate,
		groups:     append([]models.Group(nil), groups...),
		status:     StatusPlaying,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(s.now().UnixNano()))
	}
	s.items = shuffle(items, s.rng)
	return s
}

// RestoreCompletedSession reconstructs the terminal state for a player who
// already finished this day's puzzle: all groups revealed, nothing left to
// play. The guess-by-guess log is not reconstructable from the stored summary
// and stays empty; the persisted result's color history is the display source.
func RestoreCompletedSession(groups []models.Group, won bool, mistakes int, puzzleDate string, opts ...SessionOption) *Session {
	s := &Session{
		puzzleDate:  puzzleDate,
		items:       []models.Item{},
		groups:      append([]models.Group(nil), groups...),
		foundGroups: append([]models.Group(nil), groups...),
		mistakes:    mistakes,
		status:      StatusLost,
		now:         time.Now,
	}
	if won {
		s.status = StatusWon
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func shuffle(items []models.Item, rng *rand.Rand) []models.Item {
	out := append([]models.Item(nil), items...)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// PuzzleDate returns the day this session was initialized for.
func (s *Session) PuzzleDate() string { return s.puzzleDate }

// Status returns the lifecycle state.
func (s *Session) Status() Status { return s.status }

// Mistakes returns the mistake count, 0..MaxMistakes.
func (s *Session) Mistakes() int { return s.mistakes }

// Items returns the remaining ungrouped items in board order.
func (s *Session) Items() []models.Item {
	return append([]models.Item(nil), s.items...)
}

// Groups returns the puzzle's answer groups.
func (s *Session) Groups() []models.Group {
	return append([]models.Group(nil), s.groups...)
}

// FoundGroups returns solved groups in discovery order.
func (s *Session) FoundGroups() []models.Group {
	return append([]models.Group(nil), s.foundGroups...)
}

// SelectedItemIDs returns the current candidate guess in selection order.
func (s *Session) SelectedItemIDs() []int {
	return append([]int(nil), s.selected...)
}

// PreviousGuesses returns every attempted tuple, sorted ascending, in
// attempt order.
func (s *Session) PreviousGuesses() [][]int {
	out := make([][]int, len(s.previousGuesses))
	for i, g := range s.previousGuesses {
		out[i] = append([]int(nil), g...)
	}
	return out
}

// Notification returns the transient advisory message, if one is live.
func (s *Session) Notification() (string, bool) {
	if s.notification == "" || s.now().After(s.notificationUntil) {
		return "", false
	}
	return s.notification, true
}

// IsShaking reports whether the wrong-guess shake cue is live.
func (s *Session) IsShaking() bool {
	return s.now().Before(s.shakeUntil)
}

// JumpingItemIDs returns the ids currently in their reveal jump.
func (s *Session) JumpingItemIDs() []int {
	now := s.now()
	var ids []int
	for _, reveal := range s.reveals {
		for _, jump := range reveal.jumps {
			if !now.Before(reveal.startedAt.Add(jump.After)) {
				ids = append(ids, jump.ItemID)
			}
		}
	}
	return ids
}

// DrainEvents returns and clears the pending domain events.
func (s *Session) DrainEvents() []Event {
	events := s.events
	s.events = nil
	return events
}

func (s *Session) emit(e Event) {
	s.events = append(s.events, e)
}

func (s *Session) notify(msg string) {
	s.notification = msg
	s.notificationUntil = s.now().Add(NotificationTTL)
}

// SelectItem toggles an item in the candidate guess. Adding a fifth item,
// selecting after the game ended, or selecting an id that is no longer on the
// board are all silent no-ops.
func (s *Session) SelectItem(itemID int) {
	if s.status != StatusPlaying {
		return
	}
	for i, id := range s.selected {
		if id == itemID {
			s.selected = append(s.selected[:i], s.selected[i+1:]...)
			return
		}
	}
	if len(s.selected) >= MaxSelections {
		return
	}
	for _, it := range s.items {
		if it.ID == itemID {
			s.selected = append(s.selected, itemID)
			return
		}
	}
}

// DeselectAll clears the candidate guess. Always legal.
func (s *Session) DeselectAll() {
	s.selected = nil
}

// ShuffleItems re-permutes the remaining items. Groups, found groups and the
// selection are untouched.
func (s *Session) ShuffleItems() {
	s.items = shuffle(s.items, s.rng)
	s.emit(ItemsShuffledEvent{PuzzleDate: s.puzzleDate})
}

// SubmitGuess evaluates the current 4-item selection.
//
// Duplicate tuples are rejected before any state changes. A match clears the
// selection and queues the group until CompleteReveal; the returned plan
// carries the jump stagger and finalize delay. Matches submitted while an
// earlier reveal is still pending queue behind it. A mismatch consumes a
// mistake and, on the cap-reaching guess, immediately ends the game with all
// groups revealed.
func (s *Session) SubmitGuess() Outcome {
	if s.status != StatusPlaying || len(s.selected) != MaxSelections {
		return Outcome{Result: GuessIgnored, Mistakes: s.mistakes}
	}

	guess := append([]int(nil), s.selected...)
	sort.Ints(guess)

	if s.isDuplicate(guess) {
		s.notify(NoticeAlreadyTried)
		return Outcome{Result: GuessDuplicate, Mistakes: s.mistakes}
	}

	matched := s.matchGroup(guess)
	oneAway := matched == nil && s.isOneAway(guess)

	s.previousGuesses = append(s.previousGuesses, guess)

	if matched != nil {
		group := *matched
		s.selected = nil
		now := s.now()
		plan := buildRevealPlan(group, guess)
		s.reveals = append(s.reveals, pendingReveal{
			group:      group,
			startedAt:  now,
			jumps:      plan.ItemJumps,
			finalizeAt: now.Add(plan.FinalizeAfter),
		})
		s.emit(GuessSubmittedEvent{
			PuzzleDate:   s.puzzleDate,
			Correct:      true,
			MistakeCount: s.mistakes,
		})
		return Outcome{
			Result:   GuessMatched,
			Group:    &group,
			Mistakes: s.mistakes,
			Reveal:   &plan,
		}
	}

	s.mistakes++
	lost := s.mistakes >= MaxMistakes
	groupsFoundBefore := len(s.foundGroups)

	if oneAway {
		s.notify(NoticeOneAway)
	}
	s.shakeUntil = s.now().Add(ShakeTTL)

	if lost {
		s.status = StatusLost
		s.foundGroups = append([]models.Group(nil), s.groups...)
		s.items = []models.Item{}
		s.selected = nil
	}

	s.emit(GuessSubmittedEvent{
		PuzzleDate:   s.puzzleDate,
		Correct:      false,
		MistakeCount: s.mistakes,
		OneAway:      oneAway,
	})
	if lost {
		s.emit(GameLostEvent{
			PuzzleDate:  s.puzzleDate,
			Mistakes:    s.mistakes,
			GroupsFound: groupsFoundBefore,
		})
	}

	return Outcome{
		Result:   GuessMismatch,
		OneAway:  oneAway,
		Mistakes: s.mistakes,
		Lost:     lost,
	}
}

// CompleteReveal commits the oldest pending matched group: it joins
// foundGroups, its items leave the board, and the game is won when it was the
// fourth. One call commits one group; no-op when no reveal is pending.
func (s *Session) CompleteReveal() {
	if len(s.reveals) == 0 {
		return
	}
	group := s.reveals[0].group
	s.reveals = s.reveals[1:]

	s.foundGroups = append(s.foundGroups, group)
	remaining := s.items[:0:0]
	for _, it := range s.items {
		if !group.Contains(it.ID) {
			remaining = append(remaining, it)
		}
	}
	s.items = remaining

	won := len(s.foundGroups) == GroupCount
	if won {
		s.status = StatusWon
	}

	s.emit(GroupFoundEvent{
		PuzzleDate:    s.puzzleDate,
		GroupID:       group.ID,
		Difficulty:    string(group.Difficulty),
		GroupsFound:   len(s.foundGroups),
		MistakesSoFar: s.mistakes,
	})
	if won {
		s.emit(GameWonEvent{PuzzleDate: s.puzzleDate, Mistakes: s.mistakes})
	}
}

// RevealPending reports whether a matched group awaits CompleteReveal.
func (s *Session) RevealPending() bool {
	return len(s.reveals) > 0
}

func buildRevealPlan(group models.Group, sortedIDs []int) RevealPlan {
	jumps := make([]ItemJump, len(sortedIDs))
	for i, id := range sortedIDs {
		jumps[i] = ItemJump{ItemID: id, After: time.Duration(i) * JumpStagger}
	}
	return RevealPlan{
		GroupID:       group.ID,
		ItemJumps:     jumps,
		FinalizeAfter: time.Duration(len(sortedIDs))*JumpStagger + revealTail,
	}
}

func (s *Session) isDuplicate(sorted []int) bool {
	for _, prev := range s.previousGuesses {
		if equalInts(prev, sorted) {
			return true
		}
	}
	return false
}

func (s *Session) matchGroup(sorted []int) *models.Group {
	for i := range s.groups {
		ids := s.groups[i].ItemIDs()
		sort.Ints(ids)
		if equalInts(ids, sorted) {
			return &s.groups[i]
		}
	}
	return nil
}

// isOneAway reports whether the guess shares exactly 3 ids with any single
// group. The signal is anonymous: it carries no group identity.
func (s *Session) isOneAway(sorted []int) bool {
	for _, g := range s.groups {
		shared := 0
		for _, id := range sorted {
			if g.Contains(id) {
				shared++
			}
		}
		if shared == 3 {
			return true
		}
	}
	return false
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
