package server

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gravitas-games/hexgrid/internal/config"
	"github.com/gravitas-games/hexgrid/internal/network"
	"github.com/gravitas-games/hexgrid/internal/terrain"
	"github.com/gravitas-games/hexgrid/pkg/grid"
	"github.com/gravitas-games/hexgrid/pkg/shape"
)

// Session owns the shared map and the connections querying it
type Session struct {
	ID        string
	CreatedAt time.Time

	connections map[string]*Connection // connectionID -> Connection
	mu          sync.RWMutex

	// world has a single writer (Populate); queries hold worldMu for reading
	world   *grid.Grid[terrain.Tile]
	gen     *terrain.Generator
	worldMu sync.RWMutex
}

// NewSession creates a session and populates its map from cfg
func NewSession(cfg *config.Config) (*Session, error) {
	layout, err := grid.ParseLayout(cfg.Map.Layout)
	if err != nil {
		return nil, fmt.Errorf("failed to configure map: %w", err)
	}
	kind, err := shape.ParseKind(cfg.Map.Shape)
	if err != nil {
		return nil, fmt.Errorf("failed to configure map: %w", err)
	}
	outline, err := shape.New(kind, cfg.Map.Params...)
	if err != nil {
		return nil, fmt.Errorf("failed to configure map: %w", err)
	}

	world := grid.New[terrain.Tile]()
	world.SetLayout(layout)
	world.SetTileSize(cfg.Map.TileWidth, cfg.Map.TileHeight)
	world.SetOrigin(cfg.Map.OriginX, cfg.Map.OriginY)

	session := &Session{
		ID:          uuid.NewString(),
		CreatedAt:   time.Now(),
		connections: make(map[string]*Connection),
		world:       world,
		gen:         terrain.NewGenerator(cfg.Terrain),
	}
	world.Populate(outline, session.gen.Tile)

	log.Printf("Session %s created with map %s (%d tiles)", session.ID, outline, world.Len())
	return session, nil
}

// Populate replaces the shared map. A nil layout keeps the current one.
func (s *Session) Populate(outline shape.Outline, layout *grid.Layout) network.MapInfoPayload {
	s.worldMu.Lock()
	defer s.worldMu.Unlock()

	if layout != nil {
		s.world.SetLayout(*layout)
	}
	s.world.Populate(outline, s.gen.Tile)
	return s.mapInfoLocked()
}

// MapInfo describes the shared map
func (s *Session) MapInfo() network.MapInfoPayload {
	s.worldMu.RLock()
	defer s.worldMu.RUnlock()
	return s.mapInfoLocked()
}

func (s *Session) mapInfoLocked() network.MapInfoPayload {
	outline := s.world.Outline()
	return network.MapInfoPayload{
		Layout:   s.world.Layout().String(),
		TileSize: s.world.TileSize(),
		Origin:   s.world.Origin(),
		Shape:    outline.Kind().String(),
		Params:   outline.Params(),
		Tiles:    s.world.Len(),
	}
}

// View runs fn with read access to the shared map. fn must not keep g.
func (s *Session) View(fn func(g *grid.Grid[terrain.Tile])) {
	s.worldMu.RLock()
	defer s.worldMu.RUnlock()
	fn(s.world)
}

// AddConnection registers a connection for broadcasts
func (s *Session) AddConnection(conn *Connection) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.connections[conn.ID] = conn
	log.Printf("Connection %s (%s) joined session %s", conn.ID, conn.user.DisplayName(), s.ID)
}

// RemoveConnection unregisters a connection
func (s *Session) RemoveConnection(conn *Connection) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.connections[conn.ID]; exists {
		delete(s.connections, conn.ID)
		log.Printf("Connection %s (%s) left session %s", conn.ID, conn.user.DisplayName(), s.ID)
	}
}

// ConnectionCount returns the number of registered connections
func (s *Session) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.connections)
}

// Connections returns a snapshot of the registered connections
func (s *Session) Connections() []*Connection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conns := make([]*Connection, 0, len(s.connections))
	for _, conn := range s.connections {
		conns = append(conns, conn)
	}
	return conns
}

// Broadcast sends a message to every registered connection
func (s *Session) Broadcast(msg *network.ServerMessage) {
	s.BroadcastExcept(nil, msg)
}

// BroadcastExcept sends a message to every connection but exclude
func (s *Session) BroadcastExcept(exclude *Connection, msg *network.ServerMessage) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, conn := range s.connections {
		if conn != exclude {
			conn.SendMessage(msg)
		}
	}
}

// Uptime returns how long the session has existed
func (s *Session) Uptime() time.Duration {
	return time.Since(s.CreatedAt)
}
