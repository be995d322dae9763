package websocket

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// connection serialises writes to one socket.
type connection struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func newConnection(conn *websocket.Conn) *connection {
	return &connection{conn: conn}
}

func (that *connection) send(action string, payload Payload) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	response, err := json.Marshal(Message{Action: action, Payload: payloadJSON})
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	if err = that.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err = that.conn.WriteMessage(websocket.TextMessage, response); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

// registry maps player IDs to their live connection.
type registry struct {
	mu    sync.RWMutex
	conns map[string]*connection
}

func newRegistry() *registry {
	return &registry{
		conns: make(map[string]*connection),
	}
}

func (that *registry) add(playerID string, conn *connection) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.conns[playerID] = conn
}

func (that *registry) get(playerID string) (*connection, bool) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	conn, ok := that.conns[playerID]
	return conn, ok
}

// remove drops every player bound to conn and returns their IDs.
func (that *registry) remove(conn *connection) []string {
	that.mu.Lock()
	defer that.mu.Unlock()

	var removed []string
	for playerID, existing := range that.conns {
		if existing == conn {
			delete(that.conns, playerID)
			removed = append(removed, playerID)
		}
	}

	return removed
}
