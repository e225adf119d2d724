package server

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/gravitas-games/hexgrid/internal/network"
	"github.com/gravitas-games/hexgrid/internal/terrain"
	"github.com/gravitas-games/hexgrid/pkg/grid"
	"github.com/gravitas-games/hexgrid/pkg/hex"
	"github.com/gravitas-games/hexgrid/pkg/models"
	"github.com/gravitas-games/hexgrid/pkg/shape"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

// Connection represents a WebSocket connection to a client
type Connection struct {
	ID string

	ws     *websocket.Conn
	server *Server
	user   *models.User

	// Buffered channel for outbound messages
	send chan []byte

	// Closed once the connection is torn down
	done      chan struct{}
	closeOnce sync.Once
}

// NewConnection creates a new connection for an authenticated user
func NewConnection(ws *websocket.Conn, server *Server, user *models.User) *Connection {
	id := uuid.NewString()
	user.ConnectionID = id
	user.Connected = true
	user.ConnectedAt = time.Now()
	user.SessionID = server.session.ID

	return &Connection{
		ID:     id,
		ws:     ws,
		server: server,
		user:   user,
		send:   make(chan []byte, 256),
		done:   make(chan struct{}),
	}
}

// Handle manages the connection lifecycle
func (c *Connection) Handle() {
	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go c.writePump()
	c.readPump() // Blocking
}

// readPump pumps messages from the WebSocket connection to the server
func (c *Connection) readPump() {
	defer c.Close()

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}

		var clientMsg network.ClientMessage
		if err := json.Unmarshal(message, &clientMsg); err != nil {
			log.Printf("Failed to parse client message: %v", err)
			c.SendError("", network.ErrCodeInvalidMessage, "Failed to parse message")
			continue
		}

		c.handleMessage(&clientMsg)
	}
}

// writePump pumps messages from the send channel to the WebSocket connection
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("WebSocket write error: %v", err)
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			c.ws.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case <-c.server.ctx.Done():
			// Server shutting down
			return
		}
	}
}

// handleMessage routes messages to appropriate handlers
func (c *Connection) handleMessage(msg *network.ClientMessage) {
	switch msg.Type {
	case network.MsgTypePing:
		c.reply(msg, network.MsgTypePong, network.PongPayload{Timestamp: time.Now().Unix()})

	case network.MsgTypeTileAt:
		c.handleTileAt(msg)

	case network.MsgTypeNeighbors:
		c.handleNeighbors(msg)

	case network.MsgTypeRange, network.MsgTypeRing:
		c.handleArea(msg)

	case network.MsgTypeLine:
		c.handleLine(msg)

	case network.MsgTypeReach:
		c.handleReach(msg)

	case network.MsgTypePopulate:
		c.handlePopulate(msg)

	case network.MsgTypeMapInfo:
		c.reply(msg, network.MsgTypeMapInfo, c.server.session.MapInfo())

	default:
		log.Printf("Unknown message type from %s: %s", c.ID, msg.Type)
		c.SendError(msg.ID, network.ErrCodeUnknownType, "Unknown message type")
	}
}

// decode unmarshals the payload, replying with an error on failure
func (c *Connection) decode(msg *network.ClientMessage, v interface{}) bool {
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		c.SendError(msg.ID, network.ErrCodeInvalidPayload, fmt.Sprintf("Invalid %s payload", msg.Type))
		return false
	}
	return true
}

// withinLimit rejects radii above the configured maximum
func (c *Connection) withinLimit(msg *network.ClientMessage, n int) bool {
	limit := c.server.config.Server.MaxQueryRadius
	if n > limit {
		c.SendError(msg.ID, network.ErrCodeLimitExceeded, fmt.Sprintf("%s radius %d exceeds %d", msg.Type, n, limit))
		return false
	}
	return true
}

// withinBounds rejects coordinates whose cube components exceed the
// configured maximum, so distance arithmetic cannot overflow
func (c *Connection) withinBounds(msg *network.ClientMessage, coords ...hex.Axial) bool {
	m := c.server.config.Server.MaxCoordinate
	for _, a := range coords {
		// q+r is only computed once q and r are known to be bounded
		if a.Q < -m || a.Q > m || a.R < -m || a.R > m || a.Q+a.R < -m || a.Q+a.R > m {
			c.SendError(msg.ID, network.ErrCodeLimitExceeded, fmt.Sprintf("coordinate %v exceeds %d", a, m))
			return false
		}
	}
	return true
}

func (c *Connection) handleTileAt(msg *network.ClientMessage) {
	var p network.PointPayload
	if !c.decode(msg, &p) {
		return
	}

	var res network.TilePayload
	c.server.session.View(func(g *grid.Grid[terrain.Tile]) {
		h, tile, ok := g.TileAt(grid.Point{X: p.X, Y: p.Y})
		res = network.TilePayload{Coord: h, Found: ok}
		if ok {
			res.Tile = &tile
		}
	})
	c.reply(msg, network.MsgTypeTile, res)
}

func (c *Connection) handleNeighbors(msg *network.ClientMessage) {
	var p network.NeighborsPayload
	if !c.decode(msg, &p) {
		return
	}

	var tiles []terrain.Tile
	switch {
	case p.X != nil && p.Y != nil:
		c.server.session.View(func(g *grid.Grid[terrain.Tile]) {
			tiles = g.Tiles(g.NeighborsAt(grid.Point{X: *p.X, Y: *p.Y}))
		})
	case p.Q != nil && p.R != nil:
		center := hex.Axial{Q: *p.Q, R: *p.R}
		if !c.withinBounds(msg, center) {
			return
		}
		nb := hex.Neighbors(center)
		c.server.session.View(func(g *grid.Grid[terrain.Tile]) {
			tiles = g.Tiles(nb[:])
		})
	default:
		c.SendError(msg.ID, network.ErrCodeInvalidPayload, "neighbors needs q,r or x,y")
		return
	}
	c.reply(msg, network.MsgTypeTiles, network.TilesPayload{Tiles: tiles})
}

func (c *Connection) handleArea(msg *network.ClientMessage) {
	var p network.RadiusPayload
	if !c.decode(msg, &p) || !c.withinLimit(msg, p.N) {
		return
	}

	center := hex.Axial{Q: p.Q, R: p.R}
	if !c.withinBounds(msg, center) {
		return
	}
	var coords []hex.Axial
	if msg.Type == network.MsgTypeRing {
		coords = hex.Ring(center, p.N)
	} else {
		coords = hex.Range(center, p.N)
	}

	var tiles []terrain.Tile
	c.server.session.View(func(g *grid.Grid[terrain.Tile]) {
		tiles = g.Tiles(coords)
	})
	c.reply(msg, network.MsgTypeTiles, network.TilesPayload{Tiles: tiles})
}

func (c *Connection) handleLine(msg *network.ClientMessage) {
	var p network.LinePayload
	if !c.decode(msg, &p) || !c.withinBounds(msg, p.From, p.To) {
		return
	}
	if d := hex.Distance(p.From, p.To); d > 2*c.server.config.Server.MaxQueryRadius {
		c.SendError(msg.ID, network.ErrCodeLimitExceeded, fmt.Sprintf("line length %d exceeds %d", d, 2*c.server.config.Server.MaxQueryRadius))
		return
	}

	var tiles []terrain.Tile
	c.server.session.View(func(g *grid.Grid[terrain.Tile]) {
		tiles = g.Tiles(hex.Line(p.From, p.To))
	})
	c.reply(msg, network.MsgTypeTiles, network.TilesPayload{Tiles: tiles})
}

func (c *Connection) handleReach(msg *network.ClientMessage) {
	var p network.RadiusPayload
	if !c.decode(msg, &p) || !c.withinLimit(msg, p.N) {
		return
	}

	center := hex.Axial{Q: p.Q, R: p.R}
	if !c.withinBounds(msg, center) {
		return
	}

	var frontiers [][]hex.Axial
	c.server.session.View(func(g *grid.Grid[terrain.Tile]) {
		frontiers = hex.Reach(center, p.N, terrain.Blocked(g))
	})
	if frontiers == nil {
		frontiers = [][]hex.Axial{}
	}
	c.reply(msg, network.MsgTypeFrontiers, network.FrontiersPayload{Frontiers: frontiers})
}

func (c *Connection) handlePopulate(msg *network.ClientMessage) {
	var p network.PopulatePayload
	if !c.decode(msg, &p) {
		return
	}

	kind, err := shape.ParseKind(p.Shape)
	if err != nil {
		c.SendError(msg.ID, network.ErrCodeInvalidShape, err.Error())
		return
	}
	outline, err := shape.New(kind, p.Params...)
	if err != nil {
		c.SendError(msg.ID, network.ErrCodeInvalidShape, err.Error())
		return
	}

	limit := c.server.config.Server.MaxMapTiles
	for _, v := range p.Params {
		if v > limit || v < -limit {
			c.SendError(msg.ID, network.ErrCodeLimitExceeded, fmt.Sprintf("shape parameter %d exceeds %d", v, limit))
			return
		}
	}
	if n := outline.Len(); n > limit {
		c.SendError(msg.ID, network.ErrCodeLimitExceeded, fmt.Sprintf("map of %d tiles exceeds %d", n, limit))
		return
	}

	var layout *grid.Layout
	if p.Layout != "" {
		l, err := grid.ParseLayout(p.Layout)
		if err != nil {
			c.SendError(msg.ID, network.ErrCodeInvalidPayload, err.Error())
			return
		}
		layout = &l
	}

	info := c.server.session.Populate(outline, layout)
	log.Printf("Map repopulated by %s: %s (%d tiles)", c.user.DisplayName(), outline, info.Tiles)

	c.reply(msg, network.MsgTypeMapInfo, info)
	c.server.session.BroadcastExcept(c, &network.ServerMessage{
		Type:    network.MsgTypeMapChanged,
		Payload: network.MapChangedPayload{By: c.user.DisplayName(), Map: info},
	})
}

// reply sends a response carrying the request id
func (c *Connection) reply(req *network.ClientMessage, msgType string, payload interface{}) {
	c.SendMessage(&network.ServerMessage{Type: msgType, ID: req.ID, Payload: payload})
}

// SendMessage queues a message for the client
func (c *Connection) SendMessage(msg *network.ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal message: %v", err)
		return
	}

	select {
	case <-c.done:
	case c.send <- data:
	default:
		log.Printf("Send buffer full for %s, dropping message", c.ID)
	}
}

// SendError sends an error message to the client
func (c *Connection) SendError(id, code, message string) {
	c.SendMessage(&network.ServerMessage{
		Type: network.MsgTypeError,
		ID:   id,
		Payload: network.ErrorPayload{
			Code:    code,
			Message: message,
		},
	})
}

// Close tears the connection down; it is safe to call more than once
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		c.server.session.RemoveConnection(c)
		close(c.done) // writePump sends the close frame and closes ws
	})
}
