// internal/ws/client.go
//
// One client per socket, with the usual gorilla pump pair: readPump
// owns all reads and dispatches inbound actions to the coordinator in
// arrival order (the per-connection serialization the game model
// expects); writePump owns all writes, draining the buffered send
// channel and keeping the connection alive with pings.
package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wordduel/server/internal/game"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 512

	// Bound on the dictionary lookup inside submitGuess.
	guessTimeout = 5 * time.Second

	sendBuffer = 64
)

type client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	done chan struct{}

	closeOnce sync.Once
}

func newClient(id string, h *Hub, conn *websocket.Conn) *client {
	return &client{
		id:   id,
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
}

// enqueue hands data to writePump without ever blocking the caller.
// A full buffer means the consumer is dead or hopelessly behind; the
// connection is dropped and its departure handled like any disconnect.
func (c *client) enqueue(data []byte) {
	select {
	case <-c.done:
	case c.send <- data:
	default:
		c.hub.log.Warn().Str("player", c.id).Msg("send buffer full, dropping connection")
		c.close()
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

func (c *client) readPump() {
	defer func() {
		c.hub.drop(c)
		c.close()
		if c.hub.coord != nil {
			c.hub.coord.RemovePlayer(c.id, game.ReasonDisconnected)
		}
		c.hub.log.Info().Str("player", c.id).Msg("connection closed")
	}()

	c.conn.SetReadLimit(maxMsgSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.reply(ack{Type: "error", Error: "malformed message"})
			continue
		}
		c.dispatch(msg)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// dispatch routes one inbound action. Runs on the readPump goroutine,
// so a connection's events are processed strictly in arrival order.
func (c *client) dispatch(msg clientMessage) {
	coord := c.hub.coord
	switch msg.Action {
	case actionCreateRoom:
		code := coord.CreateRoom(c.id)
		c.reply(ack{Type: "created", Success: true, RoomID: code})

	case actionJoinRoom:
		code, err := coord.JoinRoom(c.id, msg.RoomID)
		if err != nil {
			c.reply(ack{Type: "joined", Success: false, Error: err.Error()})
			return
		}
		c.reply(ack{Type: "joined", Success: true, RoomID: code})

	case actionStartGame:
		coord.StartGame(c.id)

	case actionSubmitGuess:
		ctx, cancel := context.WithTimeout(context.Background(), guessTimeout)
		coord.SubmitGuess(ctx, c.id, msg.Guess)
		cancel()

	case actionRestartGame:
		coord.RestartGame(c.id)

	case actionGetRoomStatus:
		proj, ok := coord.RoomStatus(c.id)
		if !ok {
			c.reply(ack{Type: "roomStatus", Success: false, Error: "not in a room"})
			return
		}
		c.reply(ack{Type: "roomStatus", Success: true, RoomID: proj.RoomID, Room: proj})

	case actionLeaveRoom:
		coord.RemovePlayer(c.id, game.ReasonLeft)

	default:
		c.reply(ack{Type: "error", Error: "unknown action"})
	}
}

func (c *client) reply(a ack) {
	data, err := json.Marshal(a)
	if err != nil {
		return
	}
	c.enqueue(data)
}
