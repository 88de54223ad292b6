// internal/game/coordinator.go
//
// The coordinator ties the Registry to the game rules. Every inbound
// event resolves identity and room through the Registry, applies the
// state transition under the room's lock, and fans the per-recipient
// projections out through the Sender.
//
// Error taxonomy:
//   - user input errors → one targeted EventError to the offender, no
//     state mutation;
//   - stale/race conditions (vanished player, finished room) → silent
//     no-op, expected under concurrent disconnects;
//   - dictionary lookup failures → degrade to "word not recognized".
//
// Locking: submitGuess is the only operation with a suspension point
// (the dictionary lookup). The room lock is dropped for the lookup and
// the full precondition set is re-checked after it resolves, since the
// opponent may have won, or the room vanished, in the meantime.
package game

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/wordduel/server/internal/words"
)

// Outcomes recorded for a finished game.
const (
	OutcomeWon     = "won"
	OutcomeTie     = "tie"
	OutcomeForfeit = "forfeit"
)

// MatchResult is the immutable record of one finished game instance.
type MatchResult struct {
	RoomCode    string
	WinnerID    string // empty for a tie
	Outcome     string // OutcomeWon, OutcomeTie or OutcomeForfeit
	Target      string
	GuessCounts map[string]int
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Recorder persists finished matches. Implementations must not block
// for long; failures are logged and never surfaced to players.
type Recorder interface {
	RecordMatch(ctx context.Context, m MatchResult) error
}

type Coordinator struct {
	reg    *Registry
	lookup words.Lookup
	sender Sender
	rec    Recorder // optional
	log    zerolog.Logger

	// pickWord is swappable in tests for deterministic targets.
	pickWord func() string
	now      func() time.Time
}

func NewCoordinator(reg *Registry, lookup words.Lookup, sender Sender, rec Recorder, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		reg:      reg,
		lookup:   lookup,
		sender:   sender,
		rec:      rec,
		log:      log,
		pickWord: words.RandomAnswer,
		now:      time.Now,
	}
}

type delivery struct {
	to string
	ev Event
}

func (c *Coordinator) flush(ds []delivery) {
	for _, d := range ds {
		c.sender.Send(d.to, d.ev)
	}
}

func (c *Coordinator) sendError(playerID, msg string) {
	c.sender.Send(playerID, Event{Type: EventError, Message: msg})
}

// CreateRoom makes a new room with playerID as host and returns the
// room code. A connection already occupying a room leaves it first,
// with full departure handling.
func (c *Coordinator) CreateRoom(playerID string) string {
	if _, _, ok := c.reg.Lookup(playerID); ok {
		c.RemovePlayer(playerID, ReasonLeft)
	}
	room := c.reg.CreateRoom(playerID, c.pickWord())
	c.log.Info().Str("room", room.Code).Str("player", playerID).Msg("room created")
	return room.Code
}

// JoinRoom adds playerID to an existing room. On success everyone in
// the room (joiner included) hears playerJoined.
func (c *Coordinator) JoinRoom(playerID, code string) (string, error) {
	if _, _, ok := c.reg.Lookup(playerID); ok {
		c.RemovePlayer(playerID, ReasonLeft)
	}
	room, err := c.reg.JoinRoom(playerID, code)
	if err != nil {
		return "", err
	}

	room.Lock()
	ev := Event{Type: EventPlayerJoined, PlayerID: playerID, PlayerCount: room.playerCount()}
	occupants := append([]string{}, room.Players...)
	room.Unlock()

	for _, id := range occupants {
		c.sender.Send(id, ev)
	}
	c.log.Info().Str("room", room.Code).Str("player", playerID).Msg("player joined")
	return room.Code, nil
}

// StartGame transitions the room to IN_PROGRESS. Only the host may
// start; a non-host attempt is ignored. Starting without an opponent
// yields a targeted error. Each occupant receives its own gameStarted
// projection since own-guess views differ.
func (c *Coordinator) StartGame(playerID string) {
	p, room, ok := c.reg.Lookup(playerID)
	if !ok || !p.Host {
		return
	}

	room.Lock()
	if room.Started {
		room.Unlock()
		return
	}
	if room.playerCount() < MaxPlayers {
		room.Unlock()
		c.sendError(playerID, "need an opponent before starting")
		return
	}
	room.beginGame(c.now())
	ds := c.projectAll(room, EventGameStarted)
	room.Unlock()

	c.flush(ds)
	c.log.Info().Str("room", room.Code).Msg("game started")
}

// SubmitGuess validates and applies one guess. Validation order is
// fixed and short-circuits: phase (silent), shape, budget, dictionary.
// The dictionary call runs without the room lock; every precondition is
// re-checked afterwards.
func (c *Coordinator) SubmitGuess(ctx context.Context, playerID, raw string) {
	_, room, ok := c.reg.Lookup(playerID)
	if !ok {
		return
	}
	guess := strings.ToUpper(strings.TrimSpace(raw))

	room.Lock()
	if !room.Started || room.Finished || !room.hasPlayer(playerID) {
		room.Unlock()
		return // stale or racing client
	}
	if !ValidShape(guess) {
		room.Unlock()
		c.sendError(playerID, "guess must be five letters A-Z")
		return
	}
	if room.exhausted(playerID) {
		room.Unlock()
		c.sendError(playerID, "guess limit reached")
		return
	}
	room.Unlock()

	// Suspension point: the state may shift while we are here.
	if !c.lookup.Valid(ctx, guess) {
		c.sendError(playerID, "word not recognized")
		return
	}

	_, again, ok := c.reg.Lookup(playerID)
	if !ok || again != room {
		return // player departed or switched rooms during the lookup
	}

	room.Lock()
	if !room.Started || room.Finished || !room.hasPlayer(playerID) || room.exhausted(playerID) {
		room.Unlock()
		return
	}

	marks := Evaluate(guess, room.Target)
	room.Guesses[playerID] = append(room.Guesses[playerID], guess)
	room.Marks[playerID] = append(room.Marks[playerID], marks)

	var result *MatchResult
	eventType := EventGameStateUpdate

	switch {
	case AllCorrect(marks):
		result = c.finish(room, playerID, OutcomeWon)
		eventType = EventGameOver
	case room.exhausted(playerID):
		opponent := room.opponentOf(playerID)
		switch {
		case opponent != "" && room.hasWon(opponent):
			result = c.finish(room, opponent, OutcomeWon)
			eventType = EventGameOver
		case opponent != "" && room.exhausted(opponent):
			result = c.finish(room, "", OutcomeTie)
			eventType = EventGameOver
		}
	}

	ds := c.projectAll(room, eventType)
	room.Unlock()

	c.flush(ds)
	c.record(ctx, result)
}

// RestartGame begins a new game instance in an already-started room:
// fresh target, cleared histories, Started stays true. Ignored for
// connections without a room or rooms never started.
func (c *Coordinator) RestartGame(playerID string) {
	_, room, ok := c.reg.Lookup(playerID)
	if !ok {
		return
	}

	room.Lock()
	if !room.Started {
		room.Unlock()
		return
	}
	room.restart(c.pickWord(), c.now())
	ds := c.projectAll(room, EventGameRestarted)
	room.Unlock()

	c.flush(ds)
	c.log.Info().Str("room", room.Code).Msg("game restarted")
}

// RoomStatus returns the caller's projection of its room, or false when
// it has none.
func (c *Coordinator) RoomStatus(playerID string) (*Projection, bool) {
	_, room, ok := c.reg.Lookup(playerID)
	if !ok {
		return nil, false
	}
	room.Lock()
	defer room.Unlock()
	return room.project(playerID), true
}

// RemovePlayer handles departures; leave and disconnect behave
// identically, reason is telemetry only. Idempotent. A departure from
// a started game forfeits it in favor of the remaining player.
func (c *Coordinator) RemovePlayer(playerID, reason string) {
	room, removed := c.reg.RemovePlayer(playerID)
	if !removed {
		return
	}
	c.log.Info().Str("player", playerID).Str("reason", reason).Msg("player removed")
	if room == nil {
		return
	}

	room.Lock()
	if room.playerCount() == 0 {
		room.Unlock()
		c.log.Info().Str("room", room.Code).Msg("room deleted")
		return
	}

	ds := []delivery{}
	left := Event{Type: EventPlayerLeft, PlayerID: playerID, PlayerCount: room.playerCount()}
	for _, id := range room.Players {
		ds = append(ds, delivery{to: id, ev: left})
	}

	var result *MatchResult
	if room.Started {
		if room.Finished {
			// Outcome already settled; annotate it for the survivor
			// without touching the recorded winner.
			for _, id := range room.Players {
				ds = append(ds, delivery{to: id, ev: Event{
					Type:       EventGameOver,
					Room:       room.project(id),
					QuitReason: reason,
				}})
			}
		} else {
			remaining := room.Players[0]
			result = c.finish(room, remaining, OutcomeForfeit)
			room.QuitEnd = true
			for _, id := range room.Players {
				ds = append(ds, delivery{to: id, ev: Event{
					Type:       EventGameOver,
					Room:       room.project(id),
					QuitReason: reason,
				}})
			}
		}
	}
	room.Unlock()

	c.flush(ds)
	c.record(context.Background(), result)
}

// finish settles the game. Caller holds room.mu.
func (c *Coordinator) finish(room *Room, winner, outcome string) *MatchResult {
	room.Finished = true
	room.Winner = winner

	counts := make(map[string]int, len(room.Guesses))
	for id, gs := range room.Guesses {
		counts[id] = len(gs)
	}
	return &MatchResult{
		RoomCode:    room.Code,
		WinnerID:    winner,
		Outcome:     outcome,
		Target:      room.Target,
		GuessCounts: counts,
		StartedAt:   room.StartedAt,
		FinishedAt:  c.now(),
	}
}

// projectAll builds one event per occupant with that occupant's
// projection. Caller holds room.mu.
func (c *Coordinator) projectAll(room *Room, eventType string) []delivery {
	ds := make([]delivery, 0, len(room.Players))
	for _, id := range room.Players {
		ds = append(ds, delivery{to: id, ev: Event{Type: eventType, Room: room.project(id)}})
	}
	return ds
}

// record writes a finished match through the Recorder, best effort.
func (c *Coordinator) record(ctx context.Context, m *MatchResult) {
	if m == nil || c.rec == nil {
		return
	}
	if err := c.rec.RecordMatch(ctx, *m); err != nil {
		c.log.Warn().Err(err).Str("room", m.RoomCode).Msg("record match")
	}
}
