// internal/ws/protocol.go
//
// Wire format for the persistent connection. Inbound messages are a
// single JSON envelope with an action discriminator; outbound traffic
// is either a direct acknowledgement (created/joined/roomStatus) or a
// game.Event fanned out by the coordinator.
package ws

import "github.com/wordduel/server/internal/game"

// Inbound actions.
const (
	actionCreateRoom    = "createRoom"
	actionJoinRoom      = "joinRoom"
	actionStartGame     = "startGame"
	actionSubmitGuess   = "submitGuess"
	actionRestartGame   = "restartGame"
	actionGetRoomStatus = "getRoomStatus"
	actionLeaveRoom     = "leaveRoom"
)

type clientMessage struct {
	Action string `json:"action"`
	RoomID string `json:"roomId,omitempty"`
	Guess  string `json:"guess,omitempty"`
}

// ack is the direct reply to request/response style actions.
type ack struct {
	Type    string           `json:"type"`
	Success bool             `json:"success"`
	RoomID  string           `json:"roomId,omitempty"`
	Error   string           `json:"error,omitempty"`
	Room    *game.Projection `json:"room,omitempty"`
}
