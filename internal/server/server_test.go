package server

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"

	"github.com/gravitas-games/hexgrid/internal/config"
	"github.com/gravitas-games/hexgrid/internal/network"
	"github.com/gravitas-games/hexgrid/internal/terrain"
	"github.com/gravitas-games/hexgrid/pkg/hex"
)

// envelope is a server message with the payload left undecoded
type envelope struct {
	Type    string          `json:"type"`
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload"`
}

func startServer(t *testing.T, cfg *config.Config) (*Server, *httptest.Server) {
	t.Helper()
	srv, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.Shutdown()
		ts.Close()
	})
	return srv, ts
}

func wsURL(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

// connect dials the server and consumes the welcome message
func connect(t *testing.T, ts *httptest.Server) (*websocket.Conn, network.WelcomePayload) {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial(wsURL(ts), nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { ws.Close() })
	return ws, welcome(t, ws)
}

func welcome(t *testing.T, ws *websocket.Conn) network.WelcomePayload {
	t.Helper()
	env := readMsg(t, ws)
	if env.Type != network.MsgTypeWelcome {
		t.Fatalf("first message = %s, want welcome", env.Type)
	}
	var w network.WelcomePayload
	decode(t, env.Payload, &w)
	return w
}

func readMsg(t *testing.T, ws *websocket.Conn) envelope {
	t.Helper()
	ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	var env envelope
	if err := ws.ReadJSON(&env); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	return env
}

func decode(t *testing.T, data json.RawMessage, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
}

// request sends a message and waits for the reply carrying the same id
func request(t *testing.T, ws *websocket.Conn, msgType, id string, payload interface{}) envelope {
	t.Helper()
	msg := map[string]interface{}{"type": msgType, "id": id, "payload": payload}
	if err := ws.WriteJSON(msg); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	for {
		env := readMsg(t, ws)
		if env.ID == id {
			return env
		}
	}
}

func tileCoords(t *testing.T, data json.RawMessage) []hex.Axial {
	t.Helper()
	var p struct {
		Tiles []terrain.Tile `json:"tiles"`
	}
	decode(t, data, &p)
	coords := make([]hex.Axial, len(p.Tiles))
	for i, tile := range p.Tiles {
		coords[i] = tile.Coord
	}
	return coords
}

func errorCode(t *testing.T, env envelope) string {
	t.Helper()
	if env.Type != network.MsgTypeError {
		t.Fatalf("got %s, want error", env.Type)
	}
	var p network.ErrorPayload
	decode(t, env.Payload, &p)
	return p.Code
}

func TestHealth(t *testing.T) {
	_, ts := startServer(t, config.Default())

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		Status string `json:"status"`
		Tiles  int    `json:"tiles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "ok" || body.Tiles != 217 {
		t.Fatalf("health = %+v, want ok with 217 tiles", body)
	}
}

func TestWelcome(t *testing.T) {
	srv, ts := startServer(t, config.Default())
	_, w := connect(t, ts)

	if w.ConnectionID == "" || w.SessionID != srv.session.ID {
		t.Fatalf("welcome = %+v", w)
	}
	if w.Username != "anonymous" || w.UserID != "" {
		t.Fatalf("anonymous welcome = %+v", w)
	}
	want := network.MapInfoPayload{Layout: "pointy", Shape: "hexagon", Params: []int{8}, Tiles: 217}
	want.TileSize.X, want.TileSize.Y = 50, 50
	if diff := cmp.Diff(want, w.Map); diff != "" {
		t.Fatalf("map info mismatch (-want +got):\n%s", diff)
	}
}

func TestQueries(t *testing.T) {
	_, ts := startServer(t, config.Default())
	ws, _ := connect(t, ts)

	count := func(n int) func(*testing.T, envelope) {
		return func(t *testing.T, env envelope) {
			if env.Type != network.MsgTypeTiles {
				t.Fatalf("got %s, want tiles", env.Type)
			}
			if got := len(tileCoords(t, env.Payload)); got != n {
				t.Fatalf("got %d tiles, want %d", got, n)
			}
		}
	}
	errCode := func(code string) func(*testing.T, envelope) {
		return func(t *testing.T, env envelope) {
			if got := errorCode(t, env); got != code {
				t.Fatalf("error code = %s, want %s", got, code)
			}
		}
	}

	tests := []struct {
		name    string
		msgType string
		payload interface{}
		check   func(*testing.T, envelope)
	}{
		{"ping", network.MsgTypePing, nil, func(t *testing.T, env envelope) {
			if env.Type != network.MsgTypePong {
				t.Fatalf("got %s, want pong", env.Type)
			}
		}},
		{"tile at origin", network.MsgTypeTileAt, map[string]float64{"x": 3, "y": -4}, func(t *testing.T, env envelope) {
			var p network.TilePayload
			decode(t, env.Payload, &p)
			if !p.Found || p.Coord != (hex.Axial{}) || p.Tile == nil || p.Tile.Coord != (hex.Axial{}) {
				t.Fatalf("tile = %+v", p)
			}
		}},
		{"tile off map", network.MsgTypeTileAt, map[string]float64{"x": 10000, "y": 0}, func(t *testing.T, env envelope) {
			var p network.TilePayload
			decode(t, env.Payload, &p)
			if p.Found || p.Tile != nil {
				t.Fatalf("tile = %+v, want not found", p)
			}
		}},
		{"neighbors by coord", network.MsgTypeNeighbors, map[string]int{"q": 0, "r": 0}, count(6)},
		{"neighbors at corner", network.MsgTypeNeighbors, map[string]int{"q": 8, "r": 0}, count(3)},
		{"neighbors by pixel", network.MsgTypeNeighbors, map[string]float64{"x": 0, "y": 0}, count(6)},
		{"neighbors without target", network.MsgTypeNeighbors, map[string]int{}, errCode(network.ErrCodeInvalidPayload)},
		{"range", network.MsgTypeRange, network.RadiusPayload{N: 1}, count(7)},
		{"range clipped by map", network.MsgTypeRange, network.RadiusPayload{Q: 8, N: 1}, count(4)},
		{"range negative", network.MsgTypeRange, network.RadiusPayload{N: -1}, count(0)},
		{"range over limit", network.MsgTypeRange, network.RadiusPayload{N: 33}, errCode(network.ErrCodeLimitExceeded)},
		{"ring", network.MsgTypeRing, network.RadiusPayload{N: 2}, count(12)},
		{"ring zero", network.MsgTypeRing, network.RadiusPayload{Q: 1, R: 1, N: 0}, count(1)},
		{"line", network.MsgTypeLine, network.LinePayload{To: hex.Axial{Q: 3}}, func(t *testing.T, env envelope) {
			want := []hex.Axial{{Q: 0}, {Q: 1}, {Q: 2}, {Q: 3}}
			if diff := cmp.Diff(want, tileCoords(t, env.Payload)); diff != "" {
				t.Fatalf("line mismatch (-want +got):\n%s", diff)
			}
		}},
		{"line over limit", network.MsgTypeLine, network.LinePayload{To: hex.Axial{Q: 65}}, errCode(network.ErrCodeLimitExceeded)},
		{"line beyond coordinate bound", network.MsgTypeLine, network.LinePayload{
			From: hex.Axial{Q: math.MaxInt/2 + 1},
			To:   hex.Axial{Q: -(math.MaxInt/2 + 1) - 2},
		}, errCode(network.ErrCodeLimitExceeded)},
		{"line with q+r beyond bound", network.MsgTypeLine, network.LinePayload{
			From: hex.Axial{Q: 1 << 20, R: 1},
		}, errCode(network.ErrCodeLimitExceeded)},
		{"range beyond coordinate bound", network.MsgTypeRange, network.RadiusPayload{Q: math.MinInt, N: 1}, errCode(network.ErrCodeLimitExceeded)},
		{"neighbors beyond coordinate bound", network.MsgTypeNeighbors, map[string]int{"q": 0, "r": 1<<20 + 1}, errCode(network.ErrCodeLimitExceeded)},
		{"reach", network.MsgTypeReach, network.RadiusPayload{N: 2}, func(t *testing.T, env envelope) {
			var p network.FrontiersPayload
			decode(t, env.Payload, &p)
			if len(p.Frontiers) != 3 {
				t.Fatalf("got %d frontiers, want 3", len(p.Frontiers))
			}
			if diff := cmp.Diff([]hex.Axial{{}}, p.Frontiers[0]); diff != "" {
				t.Fatalf("frontier 0 mismatch (-want +got):\n%s", diff)
			}
		}},
		{"reach negative", network.MsgTypeReach, network.RadiusPayload{N: -1}, func(t *testing.T, env envelope) {
			var p network.FrontiersPayload
			decode(t, env.Payload, &p)
			if p.Frontiers == nil || len(p.Frontiers) != 0 {
				t.Fatalf("frontiers = %v, want empty list", p.Frontiers)
			}
		}},
		{"bad payload", network.MsgTypeRange, "oops", errCode(network.ErrCodeInvalidPayload)},
		{"unknown type", "teleport", nil, errCode(network.ErrCodeUnknownType)},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := tt.msgType + "-" + string(rune('a'+i))
			env := request(t, ws, tt.msgType, id, tt.payload)
			tt.check(t, env)
		})
	}
}

func TestLineOverflowKeepsConnection(t *testing.T) {
	_, ts := startServer(t, config.Default())
	ws, _ := connect(t, ts)

	big := math.MaxInt/2 + 1
	env := request(t, ws, network.MsgTypeLine, "overflow", network.LinePayload{
		From: hex.Axial{Q: big},
		To:   hex.Axial{Q: -big - 2},
	})
	if got := errorCode(t, env); got != network.ErrCodeLimitExceeded {
		t.Fatalf("error code = %s, want %s", got, network.ErrCodeLimitExceeded)
	}
	if env := request(t, ws, network.MsgTypePing, "after", nil); env.Type != network.MsgTypePong {
		t.Fatalf("got %s, want pong", env.Type)
	}
}

func TestMalformedMessage(t *testing.T) {
	_, ts := startServer(t, config.Default())
	ws, _ := connect(t, ts)

	if err := ws.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatal(err)
	}
	if got := errorCode(t, readMsg(t, ws)); got != network.ErrCodeInvalidMessage {
		t.Fatalf("error code = %s, want %s", got, network.ErrCodeInvalidMessage)
	}

	// The connection stays usable
	if env := request(t, ws, network.MsgTypePing, "p", nil); env.Type != network.MsgTypePong {
		t.Fatalf("got %s, want pong", env.Type)
	}
}

func TestPopulateBroadcast(t *testing.T) {
	srv, ts := startServer(t, config.Default())
	a, wa := connect(t, ts)
	b, _ := connect(t, ts)

	env := request(t, a, network.MsgTypePopulate, "pop", network.PopulatePayload{
		Shape:  "triangle_up",
		Params: []int{3},
		Layout: "flat",
	})
	if env.Type != network.MsgTypeMapInfo {
		t.Fatalf("got %s, want map_info", env.Type)
	}
	var info network.MapInfoPayload
	decode(t, env.Payload, &info)
	want := network.MapInfoPayload{Layout: "flat", Shape: "triangle_up", Params: []int{3}, Tiles: 10}
	want.TileSize.X, want.TileSize.Y = 50, 50
	if diff := cmp.Diff(want, info); diff != "" {
		t.Fatalf("map info mismatch (-want +got):\n%s", diff)
	}

	changed := readMsg(t, b)
	if changed.Type != network.MsgTypeMapChanged {
		t.Fatalf("observer got %s, want map_changed", changed.Type)
	}
	var p network.MapChangedPayload
	decode(t, changed.Payload, &p)
	if p.By != wa.Username || p.Map.Tiles != 10 {
		t.Fatalf("map_changed = %+v", p)
	}

	if got := srv.session.MapInfo().Tiles; got != 10 {
		t.Fatalf("session has %d tiles, want 10", got)
	}
	if got := len(tileCoords(t, request(t, b, network.MsgTypeRange, "r", network.RadiusPayload{N: 1}).Payload)); got != 3 {
		t.Fatalf("range on new map = %d tiles, want 3", got)
	}
}

func TestPopulateRejects(t *testing.T) {
	_, ts := startServer(t, config.Default())
	ws, _ := connect(t, ts)

	tests := []struct {
		name    string
		payload network.PopulatePayload
		code    string
	}{
		{"unknown shape", network.PopulatePayload{Shape: "octagon", Params: []int{1}}, network.ErrCodeInvalidShape},
		{"wrong arity", network.PopulatePayload{Shape: "hexagon", Params: []int{1, 2}}, network.ErrCodeInvalidShape},
		{"too many tiles", network.PopulatePayload{Shape: "hexagon", Params: []int{1000}}, network.ErrCodeLimitExceeded},
		{"huge parameter", network.PopulatePayload{Shape: "parallelogram", Params: []int{0, 0, -1 << 40, 1 << 40}}, network.ErrCodeLimitExceeded},
		{"bad layout", network.PopulatePayload{Shape: "hexagon", Params: []int{1}, Layout: "sideways"}, network.ErrCodeInvalidPayload},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := request(t, ws, network.MsgTypePopulate, tt.name, tt.payload)
			if got := errorCode(t, env); got != tt.code {
				t.Fatalf("error code = %s, want %s", got, tt.code)
			}
		})
	}

	env := request(t, ws, network.MsgTypeMapInfo, "info", nil)
	var info network.MapInfoPayload
	decode(t, env.Payload, &info)
	if info.Tiles != 217 {
		t.Fatalf("rejected populate changed the map: %+v", info)
	}
}

func TestSessionTracksConnections(t *testing.T) {
	srv, ts := startServer(t, config.Default())
	ws, _ := connect(t, ts)

	if got := srv.session.ConnectionCount(); got != 1 {
		t.Fatalf("ConnectionCount() = %d, want 1", got)
	}

	ws.Close()
	deadline := time.Now().Add(5 * time.Second)
	for srv.session.ConnectionCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("connection was not removed after close")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
