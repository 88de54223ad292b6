package game

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type fakeSender struct {
	mu     sync.Mutex
	events map[string][]Event
}

func newFakeSender() *fakeSender {
	return &fakeSender{events: map[string][]Event{}}
}

func (s *fakeSender) Send(playerID string, ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[playerID] = append(s.events[playerID], ev)
}

func (s *fakeSender) byType(playerID, typ string) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for _, ev := range s.events[playerID] {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

func (s *fakeSender) count(playerID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events[playerID])
}

func (s *fakeSender) last(playerID string) (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	evs := s.events[playerID]
	if len(evs) == 0 {
		return Event{}, false
	}
	return evs[len(evs)-1], true
}

type fakeLookup struct {
	valid func(word string) bool
}

func (f *fakeLookup) Valid(_ context.Context, word string) bool {
	if f.valid == nil {
		return true
	}
	return f.valid(word)
}

type fakeRecorder struct {
	mu      sync.Mutex
	results []MatchResult
}

func (r *fakeRecorder) RecordMatch(_ context.Context, m MatchResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, m)
	return nil
}

func (r *fakeRecorder) all() []MatchResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]MatchResult{}, r.results...)
}

// --- harness ---

type duel struct {
	coord  *Coordinator
	sender *fakeSender
	lookup *fakeLookup
	rec    *fakeRecorder
	code   string
}

func newDuel(t *testing.T) *duel {
	t.Helper()
	d := &duel{
		sender: newFakeSender(),
		lookup: &fakeLookup{},
		rec:    &fakeRecorder{},
	}
	d.coord = NewCoordinator(NewRegistry(), d.lookup, d.sender, d.rec, zerolog.Nop())
	d.coord.pickWord = func() string { return "CRANE" }
	return d
}

// started pairs "A" (host) and "B" and starts the game.
func (d *duel) start(t *testing.T) {
	t.Helper()
	d.code = d.coord.CreateRoom("A")
	_, err := d.coord.JoinRoom("B", d.code)
	require.NoError(t, err)
	d.coord.StartGame("A")
}

func (d *duel) guess(playerID, word string) {
	d.coord.SubmitGuess(context.Background(), playerID, word)
}

// viewOf pulls playerID's entry out of a projection.
func viewOf(t *testing.T, p *Projection, playerID string) PlayerView {
	t.Helper()
	for _, pv := range p.Players {
		if pv.ID == playerID {
			return pv
		}
	}
	t.Fatalf("player %s not in projection", playerID)
	return PlayerView{}
}

var losing = []string{"AUDIO", "PIANO", "TULIP", "MANGO", "ZEBRA", "OTTER"}

// --- tests ---

func TestCreateAndJoin(t *testing.T) {
	t.Parallel()
	d := newDuel(t)

	code := d.coord.CreateRoom("A")
	require.NotEmpty(t, code)

	got, err := d.coord.JoinRoom("B", code)
	require.NoError(t, err)
	assert.Equal(t, code, got)

	// Both occupants hear the join, with identity and count.
	for _, id := range []string{"A", "B"} {
		joins := d.sender.byType(id, EventPlayerJoined)
		require.Len(t, joins, 1, "occupant %s", id)
		assert.Equal(t, "B", joins[0].PlayerID)
		assert.Equal(t, 2, joins[0].PlayerCount)
	}

	_, err = d.coord.JoinRoom("C", code)
	assert.ErrorIs(t, err, ErrRoomFull)

	_, err = d.coord.JoinRoom("C", "XXXXXX")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestStartGame(t *testing.T) {
	t.Parallel()

	t.Run("alone yields a targeted error", func(t *testing.T) {
		d := newDuel(t)
		d.coord.CreateRoom("A")
		d.coord.StartGame("A")

		errs := d.sender.byType("A", EventError)
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0].Message, "opponent")

		proj, ok := d.coord.RoomStatus("A")
		require.True(t, ok)
		assert.False(t, proj.Started)
	})

	t.Run("non-host start is ignored", func(t *testing.T) {
		d := newDuel(t)
		code := d.coord.CreateRoom("A")
		_, err := d.coord.JoinRoom("B", code)
		require.NoError(t, err)
		before := d.sender.count("B")

		d.coord.StartGame("B")
		assert.Equal(t, before, d.sender.count("B"))

		proj, _ := d.coord.RoomStatus("B")
		assert.False(t, proj.Started)
	})

	t.Run("host start delivers individual projections", func(t *testing.T) {
		d := newDuel(t)
		d.start(t)

		for _, id := range []string{"A", "B"} {
			started := d.sender.byType(id, EventGameStarted)
			require.Len(t, started, 1, "occupant %s", id)
			require.NotNil(t, started[0].Room)
			assert.True(t, started[0].Room.Started)
			assert.False(t, started[0].Room.Finished)
			assert.Empty(t, started[0].Room.Target, "target must stay hidden")
		}
	})

	t.Run("second start is ignored", func(t *testing.T) {
		d := newDuel(t)
		d.start(t)
		d.coord.StartGame("A")
		assert.Len(t, d.sender.byType("A", EventGameStarted), 1)
	})
}

func TestSubmitGuessValidation(t *testing.T) {
	t.Parallel()

	t.Run("before start is silently ignored", func(t *testing.T) {
		d := newDuel(t)
		code := d.coord.CreateRoom("A")
		_, err := d.coord.JoinRoom("B", code)
		require.NoError(t, err)
		before := d.sender.count("A")

		d.guess("A", "AUDIO")
		assert.Equal(t, before, d.sender.count("A"))
	})

	t.Run("bad shape", func(t *testing.T) {
		d := newDuel(t)
		d.start(t)
		for _, bad := range []string{"CAT", "CRANES", "CR4NE", ""} {
			d.guess("A", bad)
		}
		errs := d.sender.byType("A", EventError)
		require.Len(t, errs, 4)
		for _, ev := range errs {
			assert.Contains(t, ev.Message, "five letters")
		}

		proj, _ := d.coord.RoomStatus("A")
		assert.Zero(t, viewOf(t, proj, "A").GuessCount)
	})

	t.Run("lowercase input is normalized", func(t *testing.T) {
		d := newDuel(t)
		d.start(t)
		d.guess("A", " audio ")
		proj, _ := d.coord.RoomStatus("A")
		assert.Equal(t, []string{"AUDIO"}, viewOf(t, proj, "A").Guesses)
	})

	t.Run("unknown word is rejected without mutation", func(t *testing.T) {
		d := newDuel(t)
		d.lookup.valid = func(string) bool { return false }
		d.start(t)

		d.guess("A", "QZJXK")
		errs := d.sender.byType("A", EventError)
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0].Message, "not recognized")

		proj, _ := d.coord.RoomStatus("A")
		assert.Zero(t, viewOf(t, proj, "A").GuessCount)
	})

	t.Run("guess limit", func(t *testing.T) {
		d := newDuel(t)
		d.start(t)
		for _, w := range losing {
			d.guess("A", w)
		}
		d.guess("A", "AUDIO")
		errs := d.sender.byType("A", EventError)
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0].Message, "limit")
	})
}

func TestWinEndsGameImmediately(t *testing.T) {
	t.Parallel()
	d := newDuel(t)
	d.start(t)

	d.guess("A", "AUDIO")
	d.guess("B", "PIANO")
	d.guess("A", "TULIP")
	d.guess("A", "CRANE") // attempt 3 hits the target

	for _, id := range []string{"A", "B"} {
		over := d.sender.byType(id, EventGameOver)
		require.Len(t, over, 1, "occupant %s", id)
		proj := over[0].Room
		require.NotNil(t, proj)
		assert.True(t, proj.Finished)
		assert.Equal(t, "A", proj.Winner)
		assert.Equal(t, "CRANE", proj.Target, "target revealed at game end")
		// Literal guesses become visible to everyone once finished.
		assert.Equal(t, []string{"AUDIO", "TULIP", "CRANE"}, viewOf(t, proj, "A").Guesses)
		assert.Equal(t, []string{"PIANO"}, viewOf(t, proj, "B").Guesses)
	}

	results := d.rec.all()
	require.Len(t, results, 1)
	assert.Equal(t, OutcomeWon, results[0].Outcome)
	assert.Equal(t, "A", results[0].WinnerID)
	assert.Equal(t, map[string]int{"A": 3, "B": 1}, results[0].GuessCounts)

	// Further guesses against the finished room are silent no-ops.
	before := d.sender.count("B")
	d.guess("B", "MANGO")
	assert.Equal(t, before, d.sender.count("B"))
}

func TestExhaustedBothIsTie(t *testing.T) {
	t.Parallel()
	d := newDuel(t)
	d.start(t)

	// Interleave twelve non-winning guesses.
	for _, w := range losing {
		d.guess("A", w)
		d.guess("B", w)
	}

	over := d.sender.byType("A", EventGameOver)
	require.Len(t, over, 1)
	assert.True(t, over[0].Room.Finished)
	assert.Empty(t, over[0].Room.Winner, "tie has no winner")

	results := d.rec.all()
	require.Len(t, results, 1)
	assert.Equal(t, OutcomeTie, results[0].Outcome)
	assert.Empty(t, results[0].WinnerID)
}

func TestFirstExhaustedWaitsForOpponent(t *testing.T) {
	t.Parallel()
	d := newDuel(t)
	d.start(t)

	for _, w := range losing {
		d.guess("A", w)
	}

	// A is out of guesses but B still has turns: game stays open and
	// only incremental updates go out.
	assert.Empty(t, d.sender.byType("A", EventGameOver))
	proj, _ := d.coord.RoomStatus("B")
	assert.False(t, proj.Finished)
	assert.Equal(t, 6, viewOf(t, proj, "A").GuessCount)
}

func TestProjectionPrivacy(t *testing.T) {
	t.Parallel()
	d := newDuel(t)
	d.start(t)

	d.guess("B", "PIANO")

	// A sees B's marks and count, never B's literal words.
	updates := d.sender.byType("A", EventGameStateUpdate)
	require.NotEmpty(t, updates)
	bView := viewOf(t, updates[len(updates)-1].Room, "B")
	assert.Equal(t, 1, bView.GuessCount)
	assert.Len(t, bView.Marks, 1)
	assert.Empty(t, bView.Guesses)

	// B's own copy of the same broadcast carries B's words.
	updates = d.sender.byType("B", EventGameStateUpdate)
	require.NotEmpty(t, updates)
	own := viewOf(t, updates[len(updates)-1].Room, "B")
	assert.Equal(t, []string{"PIANO"}, own.Guesses)
}

func TestForfeitOnDeparture(t *testing.T) {
	t.Parallel()
	d := newDuel(t)
	d.start(t)
	d.guess("A", "AUDIO")

	d.coord.RemovePlayer("B", ReasonDisconnected)

	left := d.sender.byType("A", EventPlayerLeft)
	require.Len(t, left, 1)
	assert.Equal(t, "B", left[0].PlayerID)
	assert.Equal(t, 1, left[0].PlayerCount)

	over := d.sender.byType("A", EventGameOver)
	require.Len(t, over, 1)
	assert.Equal(t, ReasonDisconnected, over[0].QuitReason)
	assert.Equal(t, "A", over[0].Room.Winner)
	assert.True(t, over[0].Room.Finished)
	assert.True(t, over[0].Room.QuitEnd)

	results := d.rec.all()
	require.Len(t, results, 1)
	assert.Equal(t, OutcomeForfeit, results[0].Outcome)
	assert.Equal(t, "A", results[0].WinnerID)

	// Departure handling is idempotent.
	before := d.sender.count("A")
	d.coord.RemovePlayer("B", ReasonDisconnected)
	assert.Equal(t, before, d.sender.count("A"))
}

func TestDepartureAfterFinishKeepsWinner(t *testing.T) {
	t.Parallel()
	d := newDuel(t)
	d.start(t)
	d.guess("A", "CRANE") // A wins outright

	d.coord.RemovePlayer("B", ReasonLeft)

	over := d.sender.byType("A", EventGameOver)
	require.Len(t, over, 2) // the win, then the quit annotation
	assert.Empty(t, over[0].QuitReason)
	assert.Equal(t, ReasonLeft, over[1].QuitReason)
	assert.Equal(t, "A", over[1].Room.Winner, "recorded winner unchanged")

	// Only the win was recorded; the annotation is not a new result.
	assert.Len(t, d.rec.all(), 1)
}

func TestRestartGame(t *testing.T) {
	t.Parallel()
	d := newDuel(t)
	words := []string{"CRANE", "SLATE"}
	d.coord.pickWord = func() string { w := words[0]; words = words[1:]; return w }
	d.start(t)
	d.guess("A", "CRANE")

	d.coord.RestartGame("B")

	for _, id := range []string{"A", "B"} {
		restarted := d.sender.byType(id, EventGameRestarted)
		require.Len(t, restarted, 1, "occupant %s", id)
		proj := restarted[0].Room
		assert.True(t, proj.Started, "restart keeps the game started")
		assert.False(t, proj.Finished)
		assert.Empty(t, proj.Winner)
		assert.Zero(t, viewOf(t, proj, "A").GuessCount)
	}

	// The new instance plays against the fresh target.
	d.guess("B", "SLATE")
	over := d.sender.byType("B", EventGameOver)
	require.Len(t, over, 2)
	assert.Equal(t, "B", over[1].Room.Winner)
}

func TestRestartWithoutStartIsIgnored(t *testing.T) {
	t.Parallel()
	d := newDuel(t)
	code := d.coord.CreateRoom("A")
	_, err := d.coord.JoinRoom("B", code)
	require.NoError(t, err)
	before := d.sender.count("A")

	d.coord.RestartGame("A")
	assert.Equal(t, before, d.sender.count("A"))
}

// A disconnect racing the in-flight validity lookup must be resolved by
// the post-lookup re-check, not by aborting the call.
func TestGuessRacingDisconnect(t *testing.T) {
	t.Parallel()
	d := newDuel(t)
	d.start(t)

	d.lookup.valid = func(string) bool {
		// The submitter vanishes while its guess is being validated.
		d.coord.RemovePlayer("A", ReasonDisconnected)
		return true
	}
	d.guess("A", "AUDIO")

	// The guess was dropped; the game ended by forfeit in B's favor.
	proj, ok := d.coord.RoomStatus("B")
	require.True(t, ok)
	assert.True(t, proj.Finished)
	assert.Equal(t, "B", proj.Winner)
	assert.Zero(t, viewOf(t, proj, "B").GuessCount)

	results := d.rec.all()
	require.Len(t, results, 1)
	assert.Equal(t, OutcomeForfeit, results[0].Outcome)
}

func TestRoomStatus(t *testing.T) {
	t.Parallel()
	d := newDuel(t)

	_, ok := d.coord.RoomStatus("ghost")
	assert.False(t, ok)

	d.start(t)
	d.guess("A", "AUDIO")

	proj, ok := d.coord.RoomStatus("B")
	require.True(t, ok)
	assert.Equal(t, d.code, proj.RoomID)
	assert.False(t, viewOf(t, proj, "B").Host)
	assert.Empty(t, viewOf(t, proj, "A").Guesses, "opponent words hidden mid-game")
	assert.Equal(t, 1, viewOf(t, proj, "A").GuessCount)
}

func TestCreateRoomLeavesPreviousRoom(t *testing.T) {
	t.Parallel()
	d := newDuel(t)
	code := d.coord.CreateRoom("A")
	_, err := d.coord.JoinRoom("B", code)
	require.NoError(t, err)

	// B opens a fresh room; the old one hears the departure.
	newCode := d.coord.CreateRoom("B")
	assert.NotEqual(t, code, newCode)

	left := d.sender.byType("A", EventPlayerLeft)
	require.Len(t, left, 1)
	assert.Equal(t, "B", left[0].PlayerID)
}
