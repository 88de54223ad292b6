// internal/game/projection.go
//
// Per-recipient state projection. Every outbound payload is computed
// for one recipient, never globally: evaluation marks and guess counts
// are visible to both players live (colors alone don't leak the word),
// but literal guess strings stay private to their author — and the
// target stays hidden — until the game is finished.
package game

// PlayerView is one occupant's slice of a Projection.
type PlayerView struct {
	ID         string   `json:"id"`
	Host       bool     `json:"host"`
	GuessCount int      `json:"guessCount"`
	Marks      [][]Mark `json:"marks"`
	// Guesses carries literal words only for the recipient's own entry,
	// or for everyone once the game is finished.
	Guesses []string `json:"guesses,omitempty"`
}

// Projection is the sanitized view of a room delivered to one player.
type Projection struct {
	RoomID   string       `json:"roomId"`
	Started  bool         `json:"started"`
	Finished bool         `json:"finished"`
	Winner   string       `json:"winner,omitempty"`
	QuitEnd  bool         `json:"quitEnd,omitempty"` // game ended by departure
	Target   string       `json:"target,omitempty"`  // set only when finished
	Players  []PlayerView `json:"players"`
}

// project builds recipientID's view of r. Caller holds r.mu.
func (r *Room) project(recipientID string) *Projection {
	p := &Projection{
		RoomID:   r.Code,
		Started:  r.Started,
		Finished: r.Finished,
		Winner:   r.Winner,
		QuitEnd:  r.QuitEnd,
		Players:  make([]PlayerView, 0, len(r.Players)),
	}
	if r.Finished {
		p.Target = r.Target
	}
	for i, id := range r.Players {
		pv := PlayerView{
			ID:         id,
			Host:       i == 0,
			GuessCount: len(r.Guesses[id]),
			Marks:      append([][]Mark{}, r.Marks[id]...),
		}
		if r.Finished || id == recipientID {
			pv.Guesses = append([]string{}, r.Guesses[id]...)
		}
		p.Players = append(p.Players, pv)
	}
	return p
}
