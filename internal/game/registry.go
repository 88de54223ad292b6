// internal/game/registry.go
//
// In-memory registry owning the Room and Player entities.
//
// Characteristics:
//   - Rooms keyed by code, players keyed by connection id, in maps
//     guarded by a RWMutex.
//   - An explicitly owned, injectable store: created at process start,
//     fresh per test, no ambient singletons.
//   - Rooms are deleted the moment their occupant list becomes empty.
//   - Lock order is registry.mu before Room.mu, never the reverse.
package game

import (
	"crypto/rand"
	"math/big"
	"strings"
	"sync"
)

// Code alphabet skips ambiguous glyphs (0/O, 1/I/L); 30^6 ≈ 7.3e8
// codes keeps collisions negligible for any realistic room count.
const (
	codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ2345679"
	codeLength   = 6
)

type Registry struct {
	mu      sync.RWMutex
	rooms   map[string]*Room
	players map[string]*Player
}

func NewRegistry() *Registry {
	return &Registry{
		rooms:   make(map[string]*Room),
		players: make(map[string]*Player),
	}
}

// NormalizeCode canonicalizes an externally supplied room code before
// lookup.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func newCode() string {
	b := make([]byte, codeLength)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand failure is unrecoverable for code generation.
			panic(err)
		}
		b[i] = codeAlphabet[n.Int64()]
	}
	return string(b)
}

// CreateRoom makes a fresh room with playerID as sole occupant and
// host, registers the Player record, and returns the room. Code
// collisions are retried.
func (reg *Registry) CreateRoom(playerID, target string) *Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	code := newCode()
	for _, taken := reg.rooms[code]; taken; _, taken = reg.rooms[code] {
		code = newCode()
	}

	room := newRoom(code, target, playerID)
	reg.rooms[code] = room
	reg.players[playerID] = &Player{ID: playerID, RoomCode: code, Host: true}
	return room
}

// JoinRoom appends playerID to the room identified by code and creates
// its non-host Player record.
func (reg *Registry) JoinRoom(playerID, code string) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[NormalizeCode(code)]
	if !ok {
		return nil, ErrRoomNotFound
	}

	room.Lock()
	defer room.Unlock()
	if room.playerCount() >= MaxPlayers {
		return nil, ErrRoomFull
	}
	if room.Started {
		return nil, ErrGameStarted
	}
	room.Players = append(room.Players, playerID)
	reg.players[playerID] = &Player{ID: playerID, RoomCode: room.Code}
	return room, nil
}

// Lookup resolves a connection to its Player record and Room. ok is
// false when the connection is not registered; most callers no-op
// silently on that.
func (reg *Registry) Lookup(playerID string) (*Player, *Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	p, ok := reg.players[playerID]
	if !ok {
		return nil, nil, false
	}
	room := reg.rooms[p.RoomCode]
	if room == nil {
		return nil, nil, false
	}
	return p, room, true
}

// RemovePlayer discards the Player record and drops it from its room's
// occupant list; an empty room is deleted on the spot. Idempotent:
// removing an unknown player is a no-op. Returns the room the player
// occupied (nil when the call was a no-op) and whether anything was
// removed.
func (reg *Registry) RemovePlayer(playerID string) (*Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	p, ok := reg.players[playerID]
	if !ok {
		return nil, false
	}
	delete(reg.players, playerID)

	room := reg.rooms[p.RoomCode]
	if room == nil {
		return nil, true
	}

	room.Lock()
	room.removeOccupant(playerID)
	empty := room.playerCount() == 0
	room.Unlock()

	if empty {
		delete(reg.rooms, room.Code)
	}
	return room, true
}

// RoomCount reports how many rooms are live (diagnostics and tests).
func (reg *Registry) RoomCount() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}

// PlayerCount reports how many connections are registered.
func (reg *Registry) PlayerCount() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.players)
}
