package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/iamasit07/five-in-a-row/backend/internal/domain"
)

// ConnectionManager tracks the sockets watching each game. A game may be
// open in several tabs, so every game maps to a set of connections.
type ConnectionManager struct {
	connections map[string]map[*websocket.Conn]*sync.Mutex // gameID → conn → write lock

	mu sync.RWMutex // Protects the maps themselves
}

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[string]map[*websocket.Conn]*sync.Mutex),
	}
}

// AddConnection registers a socket for a game and initializes its write lock
func (cm *ConnectionManager) AddConnection(gameID string, conn *websocket.Conn) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	conns, exists := cm.connections[gameID]
	if !exists {
		conns = make(map[*websocket.Conn]*sync.Mutex)
		cm.connections[gameID] = conns
	}
	conns[conn] = &sync.Mutex{}
}

// RemoveConnection closes a socket and forgets it.
func (cm *ConnectionManager) RemoveConnection(gameID string, conn *websocket.Conn) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	conns, exists := cm.connections[gameID]
	if !exists {
		return
	}
	if _, ok := conns[conn]; ok {
		conn.Close()
		delete(conns, conn)
	}
	if len(conns) == 0 {
		delete(cm.connections, gameID)
	}
}

func (cm *ConnectionManager) ConnectionCount(gameID string) int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.connections[gameID])
}

// SendMessage writes a JSON message to one socket of a game.
func (cm *ConnectionManager) SendMessage(gameID string, conn *websocket.Conn, message interface{}) error {
	cm.mu.RLock()
	mu, exists := cm.connections[gameID][conn]
	cm.mu.RUnlock()

	if !exists {
		return nil // Socket already gone
	}

	// conn.WriteJSON is not safe for concurrent use
	mu.Lock()
	defer mu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteJSON(message)
}

// Broadcast sends a message to every socket watching gameID.
func (cm *ConnectionManager) Broadcast(gameID string, message domain.ServerMessage) {
	cm.mu.RLock()
	targets := make([]*websocket.Conn, 0, len(cm.connections[gameID]))
	for conn := range cm.connections[gameID] {
		targets = append(targets, conn)
	}
	cm.mu.RUnlock()

	for _, conn := range targets {
		// One slow socket must not hold up the others
		go func(c *websocket.Conn) {
			cm.SendMessage(gameID, c, message)
		}(conn)
	}
}

// DisconnectGame tells every socket of a game why it is being closed and
// drops them.
func (cm *ConnectionManager) DisconnectGame(gameID string, reason string) {
	cm.mu.RLock()
	targets := make([]*websocket.Conn, 0, len(cm.connections[gameID]))
	for conn := range cm.connections[gameID] {
		targets = append(targets, conn)
	}
	cm.mu.RUnlock()

	for _, conn := range targets {
		_ = cm.SendMessage(gameID, conn, domain.ServerMessage{Type: "force_disconnect", Message: reason})
		cm.RemoveConnection(gameID, conn)
	}
}
