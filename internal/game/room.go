// internal/game/room.go
//
// Room entity helpers. Every method here assumes the caller holds
// r.mu; the coordinator is the only caller and locks one room for the
// duration of one operation.
package game

import "time"

func newRoom(code, target, hostID string) *Room {
	r := &Room{
		Code:    code,
		Target:  target,
		Players: []string{hostID},
		Guesses: make(map[string][]string, MaxPlayers),
		Marks:   make(map[string][][]Mark, MaxPlayers),
	}
	return r
}

// Lock and Unlock expose the room mutex to the coordinator.
func (r *Room) Lock()   { r.mu.Lock() }
func (r *Room) Unlock() { r.mu.Unlock() }

func (r *Room) playerCount() int { return len(r.Players) }

func (r *Room) hasPlayer(id string) bool {
	for _, p := range r.Players {
		if p == id {
			return true
		}
	}
	return false
}

// opponentOf returns the other occupant's id, or "" when alone.
func (r *Room) opponentOf(id string) string {
	for _, p := range r.Players {
		if p != id {
			return p
		}
	}
	return ""
}

// removeOccupant drops id from the join-order list; order of the
// remaining entries is preserved.
func (r *Room) removeOccupant(id string) {
	for i, p := range r.Players {
		if p == id {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			return
		}
	}
}

// beginGame flips the room into IN_PROGRESS and resets both players'
// histories for a fresh game instance.
func (r *Room) beginGame(now time.Time) {
	r.Started = true
	r.Finished = false
	r.Winner = ""
	r.QuitEnd = false
	r.StartedAt = now
	r.Guesses = make(map[string][]string, MaxPlayers)
	r.Marks = make(map[string][][]Mark, MaxPlayers)
	for _, p := range r.Players {
		r.Guesses[p] = []string{}
		r.Marks[p] = [][]Mark{}
	}
}

// restart starts a new game instance with a fresh target. Keeps
// Started=true: restart goes FINISHED → IN_PROGRESS without revisiting
// the waiting phase.
func (r *Room) restart(target string, now time.Time) {
	r.Target = target
	r.beginGame(now)
}

// hasWon reports whether any of id's past evaluations is all-correct.
func (r *Room) hasWon(id string) bool {
	for _, m := range r.Marks[id] {
		if AllCorrect(m) {
			return true
		}
	}
	return false
}

// exhausted reports whether id has used the full guess budget.
func (r *Room) exhausted(id string) bool {
	return len(r.Guesses[id]) >= MaxGuesses
}
