// internal/game/types.go
//
// Core type definitions for the duel coordinator.
// Defines:
//   - Mark: per-letter result of a guess (correct/present/absent).
//   - Player: one live connection's membership record.
//   - Room: state for a single two-player game session.
//   - Event: the outbound message envelope handed to the transport.
package game

import (
	"sync"
	"time"
)

// Mark represents the evaluation result for a single letter in a guess.
// Possible values:
//   - "correct": letter is correct and in the correct position.
//   - "present": letter exists in the target but in a different position.
//   - "absent":  letter does not exist in the (remaining) target at all.
type Mark string

const (
	MarkCorrect Mark = "correct"
	MarkPresent Mark = "present"
	MarkAbsent  Mark = "absent"
)

const (
	// MaxPlayers is the fixed room size; duels are strictly two-player.
	MaxPlayers = 2
	// MaxGuesses is the per-player guess budget for one game instance.
	MaxGuesses = 6
	// WordLength is the number of letters in guesses and targets.
	WordLength = 5
)

// Player is the membership record for one live connection. Exactly one
// Player exists per connection; it is discarded on leave/disconnect.
type Player struct {
	ID       string // opaque connection identity
	RoomCode string
	Host     bool // set only for the room creator
}

// Room holds the state of one game session. All fields are guarded by
// mu; the Registry owns the Room, the coordinator locks it for the
// duration of a single operation and never retains it past that call.
type Room struct {
	mu sync.Mutex

	Code    string
	Players []string // join order; first entry is the host
	Target  string   // 5 uppercase letters, hidden until Finished

	Started  bool
	Finished bool
	Winner   string // player id; empty + Finished means tie (or forfeit race)
	QuitEnd  bool   // finished because the opponent departed

	// Per-player histories; parallel slices of equal length, ≤ MaxGuesses,
	// append-only within one game instance (reset on restart).
	Guesses map[string][]string
	Marks   map[string][][]Mark

	StartedAt time.Time
}

// Departure reasons, distinguished for telemetry only.
const (
	ReasonLeft         = "left"
	ReasonDisconnected = "disconnected"
)

// Outbound event types.
const (
	EventPlayerJoined    = "playerJoined"
	EventPlayerLeft      = "playerLeft"
	EventGameStarted     = "gameStarted"
	EventGameStateUpdate = "gameStateUpdate"
	EventGameOver        = "gameOver"
	EventGameRestarted   = "gameRestarted"
	EventError           = "error"
)

// Event is the envelope delivered to a single connection. Broadcasts are
// realized as one Event per occupant since projections differ per
// recipient.
type Event struct {
	Type        string      `json:"type"`
	PlayerID    string      `json:"playerId,omitempty"`
	PlayerCount int         `json:"playerCount,omitempty"`
	Message     string      `json:"message,omitempty"`
	Room        *Projection `json:"room,omitempty"`
	QuitReason  string      `json:"quitReason,omitempty"`
}

// Sender delivers events to connections. The WebSocket hub implements
// it; tests use an in-memory fake.
type Sender interface {
	Send(playerID string, ev Event)
}
