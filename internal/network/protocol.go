package network

import (
	"encoding/json"

	"github.com/gravitas-games/hexgrid/internal/terrain"
	"github.com/gravitas-games/hexgrid/pkg/grid"
	"github.com/gravitas-games/hexgrid/pkg/hex"
)

// Message types - Client → Server
const (
	MsgTypePing      = "ping"
	MsgTypeTileAt    = "tile_at"
	MsgTypeNeighbors = "neighbors"
	MsgTypeRange     = "range"
	MsgTypeRing      = "ring"
	MsgTypeLine      = "line"
	MsgTypeReach     = "reach"
	MsgTypePopulate  = "populate"
	MsgTypeMapInfo   = "map_info"
)

// Message types - Server → Client
const (
	MsgTypeWelcome    = "welcome"
	MsgTypePong       = "pong"
	MsgTypeTile       = "tile"
	MsgTypeTiles      = "tiles"
	MsgTypeFrontiers  = "frontiers"
	MsgTypeMapChanged = "map_changed"
	MsgTypeError      = "error"
)

// Error codes
const (
	ErrCodeInvalidMessage = "invalid_message"
	ErrCodeInvalidPayload = "invalid_payload"
	ErrCodeUnknownType    = "unknown_message_type"
	ErrCodeLimitExceeded  = "limit_exceeded"
	ErrCodeInvalidShape   = "invalid_shape"
)

// ClientMessage represents any message from client to server
type ClientMessage struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"` // echoed on the reply
	Payload json.RawMessage `json:"payload"`
}

// ServerMessage represents any message from server to client
type ServerMessage struct {
	Type    string      `json:"type"`
	ID      string      `json:"id,omitempty"`
	Payload interface{} `json:"payload"`
}

// --- Client Message Payloads ---

// PointPayload is a pixel position
type PointPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NeighborsPayload selects a tile either by coordinate or by pixel
type NeighborsPayload struct {
	Q *int     `json:"q,omitempty"`
	R *int     `json:"r,omitempty"`
	X *float64 `json:"x,omitempty"`
	Y *float64 `json:"y,omitempty"`
}

// RadiusPayload is used by range, ring and reach
type RadiusPayload struct {
	Q int `json:"q"`
	R int `json:"r"`
	N int `json:"n"`
}

// LinePayload requests the tiles between two coordinates
type LinePayload struct {
	From hex.Axial `json:"from"`
	To   hex.Axial `json:"to"`
}

// PopulatePayload rebuilds the shared map
type PopulatePayload struct {
	Shape  string `json:"shape"`
	Params []int  `json:"params"`
	Layout string `json:"layout,omitempty"` // keeps the current layout when empty
}

// --- Server Message Payloads ---

// WelcomePayload is sent to client after successful connection
type WelcomePayload struct {
	ConnectionID string         `json:"connection_id"`
	UserID       string         `json:"user_id,omitempty"`
	Username     string         `json:"username"`
	SessionID    string         `json:"session_id"`
	Map          MapInfoPayload `json:"map"`
}

// TilePayload answers tile_at
type TilePayload struct {
	Coord hex.Axial     `json:"coord"`
	Found bool          `json:"found"`
	Tile  *terrain.Tile `json:"tile,omitempty"`
}

// TilesPayload answers neighbors, range, ring and line
type TilesPayload struct {
	Tiles []terrain.Tile `json:"tiles"`
}

// FrontiersPayload answers reach; frontier k holds the tiles first reached
// in k steps
type FrontiersPayload struct {
	Frontiers [][]hex.Axial `json:"frontiers"`
}

// MapInfoPayload describes the shared map
type MapInfoPayload struct {
	Layout   string     `json:"layout"`
	TileSize grid.Point `json:"tile_size"`
	Origin   grid.Point `json:"origin"`
	Shape    string     `json:"shape"`
	Params   []int      `json:"params"`
	Tiles    int        `json:"tiles"`
}

// MapChangedPayload notifies clients when another connection repopulates
// the map
type MapChangedPayload struct {
	By  string         `json:"by"`
	Map MapInfoPayload `json:"map"`
}

// PongPayload answers ping
type PongPayload struct {
	Timestamp int64 `json:"timestamp"` // Unix timestamp
}

// ErrorPayload contains error information
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
