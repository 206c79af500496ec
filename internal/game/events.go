package game

// Event is a domain event appended by the session on state transitions.
// The composing layer drains these and forwards them to whatever telemetry
// sink it owns; the session never talks to analytics directly.
type Event interface {
	EventName() string
}

// GuessSubmittedEvent fires on every evaluated guess, correct or not.
// Duplicate guesses are rejected before evaluation and do not fire it.
type GuessSubmittedEvent struct {
	PuzzleDate   string
	Correct      bool
	MistakeCount int
	OneAway      bool
}

func (GuessSubmittedEvent) EventName() string { return "guess_submitted" }

// GroupFoundEvent fires when a matched group is committed to the board.
type GroupFoundEvent struct {
	PuzzleDate    string
	GroupID       string
	Difficulty    string
	GroupsFound   int
	MistakesSoFar int
}

func (GroupFoundEvent) EventName() string { return "group_found" }

// GameWonEvent fires once, when the fourth group is committed.
type GameWonEvent struct {
	PuzzleDate string
	Mistakes   int
}

func (GameWonEvent) EventName() string { return "game_won" }

// GameLostEvent fires once, when the mistake cap is reached.
type GameLostEvent struct {
	PuzzleDate  string
	Mistakes    int
	GroupsFound int
}

func (GameLostEvent) EventName() string { return "game_lost" }

// ItemsShuffledEvent fires when the player reshuffles the board.
type ItemsShuffledEvent struct {
	PuzzleDate string
}

func (ItemsShuffledEvent) EventName() string { return "items_shuffled" }
