package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/vango-dev/livecoll/internal/config"
	"github.com/vango-dev/livecoll/pkg/pipeline"
	"github.com/vango-dev/livecoll/pkg/protocol"
)

func testConfig() *config.Config {
	cfg := config.New()
	cfg.Name = "test"
	cfg.Collections = []config.CollectionConfig{
		{Name: "items", Kind: config.KindList, Items: []any{1.0, 2.0, 3.0}},
		{Name: "evens", Kind: config.KindFilter, Source: "items", Predicate: "even"},
		{Name: "defaults", Kind: config.KindMap, Entries: []config.EntryConfig{
			{Key: "theme", Value: "dark"},
		}},
		{Name: "overrides", Kind: config.KindMap},
		{Name: "settings", Kind: config.KindJoin, Sources: []string{"overrides", "defaults"}},
	}
	return cfg
}

func newTestServer(t *testing.T, modify func(*config.Config), opts ...Option) (*Server, *httptest.Server) {
	t.Helper()
	cfg := testConfig()
	if modify != nil {
		modify(cfg)
	}
	p, err := pipeline.Build(cfg, pipeline.WithLogger(discardLogger()))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	srv, err := New(cfg, p, append([]Option{WithLogger(discardLogger())}, opts...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	t.Cleanup(srv.Close)
	return srv, ts
}

func wsURL(ts *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + path
}

func dial(t *testing.T, ts *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, path), nil)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		t.Fatalf("Dial(%s) error = %v (status %d)", path, err, status)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) *protocol.Frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	mt, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	if mt != websocket.BinaryMessage {
		t.Fatalf("message type = %d, want binary", mt)
	}
	frame, err := protocol.DecodeFrame(data)
	if err != nil {
		t.Fatalf("DecodeFrame() error = %v", err)
	}
	return frame
}

func readSnapshot(t *testing.T, conn *websocket.Conn) (*protocol.Snapshot, protocol.FrameFlags) {
	t.Helper()
	frame := readFrame(t, conn)
	if frame.Type != protocol.FrameSnapshot {
		t.Fatalf("frame type = %v, want Snapshot", frame.Type)
	}
	s, err := protocol.DecodeSnapshot(frame.Payload)
	if err != nil {
		t.Fatalf("DecodeSnapshot() error = %v", err)
	}
	return s, frame.Flags
}

func readEvent(t *testing.T, conn *websocket.Conn) (*protocol.Event, protocol.FrameFlags) {
	t.Helper()
	frame := readFrame(t, conn)
	if frame.Type != protocol.FrameEvent {
		t.Fatalf("frame type = %v, want Event", frame.Type)
	}
	ev, err := protocol.DecodeEvent(frame.Payload)
	if err != nil {
		t.Fatalf("DecodeEvent() error = %v", err)
	}
	return ev, frame.Flags
}

func readError(t *testing.T, conn *websocket.Conn) *protocol.ErrorMessage {
	t.Helper()
	frame := readFrame(t, conn)
	if frame.Type != protocol.FrameError {
		t.Fatalf("frame type = %v, want Error", frame.Type)
	}
	em, err := protocol.DecodeErrorMessage(frame.Payload)
	if err != nil {
		t.Fatalf("DecodeErrorMessage() error = %v", err)
	}
	return em
}

func sendOp(t *testing.T, conn *websocket.Conn, id uint64, body string) {
	t.Helper()
	frame := protocol.NewFrame(protocol.FrameOp, protocol.EncodeOp(&protocol.OpMessage{ID: id, Body: []byte(body)}))
	if err := conn.WriteMessage(websocket.BinaryMessage, frame.Encode()); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}
}

func postOps(t *testing.T, ts *httptest.Server, body, token string) (int, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/ops", strings.NewReader(body))
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST /ops error = %v", err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(data)
}

func getJSON(t *testing.T, ts *httptest.Server, path string, v any) int {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s error = %v", path, err)
	}
	defer resp.Body.Close()
	if v != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return resp.StatusCode
}

func TestServer_Health(t *testing.T) {
	_, ts := newTestServer(t, nil)

	var body map[string]string
	if status := getJSON(t, ts, "/healthz", &body); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestServer_Collections(t *testing.T) {
	_, ts := newTestServer(t, nil)

	if status, body := postOps(t, ts, `{"target":"items","op":"append","value":4}`, ""); status != http.StatusOK {
		t.Fatalf("POST /ops = %d %s", status, body)
	}

	var infos []CollectionInfo
	if status := getJSON(t, ts, "/collections", &infos); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	got := make(map[string]CollectionInfo)
	var names []string
	for _, info := range infos {
		got[info.Name] = info
		names = append(names, info.Name)
	}
	if fmt.Sprint(names) != "[items evens defaults overrides settings]" {
		t.Errorf("names = %v", names)
	}

	items := got["items"]
	if items.Kind != config.KindList || items.Shape != protocol.ShapeList || items.Len != 4 || items.Seq != 1 {
		t.Errorf("items = %+v", items)
	}
	evens := got["evens"]
	if evens.Len != 2 || evens.Seq != 1 {
		t.Errorf("evens = %+v", evens)
	}
	settings := got["settings"]
	if settings.Shape != protocol.ShapeMap || settings.Len != 1 || settings.Seq != 0 {
		t.Errorf("settings = %+v", settings)
	}
}

func TestServer_Snapshot(t *testing.T) {
	_, ts := newTestServer(t, nil)

	postOps(t, ts, `[{"target":"items","op":"append","value":4},{"target":"items","op":"append","value":6}]`, "")

	var s protocol.Snapshot
	if status := getJSON(t, ts, "/collections/evens", &s); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if s.Collection != "evens" || s.Shape != protocol.ShapeList || s.Seq != 2 {
		t.Errorf("snapshot header = %s %v seq %d", s.Collection, s.Shape, s.Seq)
	}
	if got := fmt.Sprint(s.Values()); got != "[2 4 6]" {
		t.Errorf("values = %s, want [2 4 6]", got)
	}

	var m protocol.Snapshot
	getJSON(t, ts, "/collections/settings", &m)
	if len(m.Entries) != 1 || m.Entries[0].Key != "theme" || m.Entries[0].Value != "dark" {
		t.Errorf("settings entries = %+v", m.Entries)
	}

	if status := getJSON(t, ts, "/collections/missing", nil); status != http.StatusNotFound {
		t.Errorf("unknown collection status = %d, want 404", status)
	}
}

func TestServer_Ops(t *testing.T) {
	_, ts := newTestServer(t, nil)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"single", `{"target":"items","op":"append","value":4}`, http.StatusOK, ""},
		{"batch", `[{"target":"overrides","op":"set","key":"theme","value":"light"},{"target":"items","op":"remove","index":0}]`, http.StatusOK, ""},
		{"unknown collection", `{"target":"nope","op":"append","value":1}`, http.StatusNotFound, "E120"},
		{"malformed", `{"target":`, http.StatusBadRequest, "E121"},
		{"out of range", `{"target":"items","op":"remove","index":10}`, http.StatusBadRequest, "E123"},
		{"missing key", `{"target":"overrides","op":"remove","key":"size"}`, http.StatusBadRequest, "E124"},
		{"kind mismatch", `{"target":"evens","op":"append","value":8}`, http.StatusConflict, "E122"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := postOps(t, ts, tt.body, "")
			if status != tt.status {
				t.Fatalf("status = %d, want %d (%s)", status, tt.status, body)
			}
			if tt.code != "" && !strings.Contains(body, `"`+tt.code+`"`) {
				t.Errorf("body = %s, want code %s", body, tt.code)
			}
		})
	}

	var s protocol.Snapshot
	getJSON(t, ts, "/collections/settings", &s)
	if s.Entries[0].Value != "light" {
		t.Errorf("settings = %+v, want the override to win", s.Entries)
	}
}

func TestServer_OpsPartialBatch(t *testing.T) {
	_, ts := newTestServer(t, nil)

	status, _ := postOps(t, ts, `[{"target":"items","op":"append","value":4},{"target":"items","op":"remove","index":99}]`, "")
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}

	var s protocol.Snapshot
	getJSON(t, ts, "/collections/items", &s)
	if got := fmt.Sprint(s.Values()); got != "[1 2 3 4]" {
		t.Errorf("items = %s; ops before the failure stay applied", got)
	}
}

func TestWebSocket_SnapshotThenEvents(t *testing.T) {
	_, ts := newTestServer(t, nil)

	items := dial(t, ts, "/collections/items/ws")
	evens := dial(t, ts, "/collections/evens/ws")

	s, flags := readSnapshot(t, items)
	if got := fmt.Sprint(s.Values()); got != "[1 2 3]" || s.Seq != 0 || flags != 0 {
		t.Errorf("items snapshot = %s seq %d flags %v", got, s.Seq, flags)
	}
	s, _ = readSnapshot(t, evens)
	if got := fmt.Sprint(s.Values()); got != "[2]" {
		t.Errorf("evens snapshot = %s", got)
	}

	postOps(t, ts, `[{"target":"items","op":"append","value":4},{"target":"items","op":"append","value":5}]`, "")

	for i, want := range []string{"#1 items add 3 4", "#2 items add 4 5"} {
		ev, _ := readEvent(t, items)
		if ev.String() != want {
			t.Errorf("items event %d = %s, want %s", i, ev, want)
		}
	}
	ev, _ := readEvent(t, evens)
	if ev.String() != "#1 evens add 1 4" {
		t.Errorf("evens event = %s", ev)
	}
}

func TestWebSocket_Ops(t *testing.T) {
	_, ts := newTestServer(t, nil)

	conn := dial(t, ts, "/collections/items/ws")
	readSnapshot(t, conn)

	sendOp(t, conn, 7, `{"target":"items","op":"append","value":4}`)

	ev, _ := readEvent(t, conn)
	if ev.String() != "#1 items add 3 4" {
		t.Errorf("event = %s", ev)
	}
	frame := readFrame(t, conn)
	if frame.Type != protocol.FrameAck {
		t.Fatalf("frame type = %v, want Ack", frame.Type)
	}
	ack, err := protocol.DecodeAck(frame.Payload)
	if err != nil {
		t.Fatalf("DecodeAck() error = %v", err)
	}
	if ack.ID != 7 || ack.Applied != 1 {
		t.Errorf("ack = %+v", ack)
	}

	tests := []struct {
		id   uint64
		body string
		code protocol.ErrorCode
	}{
		{8, `{"target":"items","op":"remove","index":10}`, protocol.ErrInvalidOp},
		{9, `{"target":"nope","op":"append"}`, protocol.ErrUnknownCollection},
		{10, `{"target":"evens","op":"append","value":2}`, protocol.ErrInvalidOp},
		{11, `not json`, protocol.ErrInvalidOp},
	}
	for _, tt := range tests {
		sendOp(t, conn, tt.id, tt.body)
		em := readError(t, conn)
		if em.ID != tt.id || em.Code != tt.code || em.Fatal {
			t.Errorf("op %d error = %+v, want code %v", tt.id, em, tt.code)
		}
	}
}

func TestWebSocket_InvalidFrame(t *testing.T) {
	_, ts := newTestServer(t, nil)

	conn := dial(t, ts, "/collections/items/ws")
	readSnapshot(t, conn)

	conn.WriteMessage(websocket.BinaryMessage, []byte{0xff})
	em := readError(t, conn)
	if em.Code != protocol.ErrInvalidFrame || em.Fatal {
		t.Errorf("error = %+v, want non-fatal InvalidFrame", em)
	}

	// The connection stays usable.
	sendOp(t, conn, 1, `{"target":"items","op":"append","value":4}`)
	readEvent(t, conn)
}

func TestWebSocket_Ping(t *testing.T) {
	_, ts := newTestServer(t, nil)

	conn := dial(t, ts, "/collections/items/ws")
	readSnapshot(t, conn)
	ping(t, conn, 42)
}

// ping sends a ping and waits for the matching pong.
func ping(t *testing.T, conn *websocket.Conn, timestamp uint64) {
	t.Helper()
	frame := protocol.NewControlFrame(protocol.ControlPing, &protocol.PingPong{Timestamp: timestamp})
	if err := conn.WriteMessage(websocket.BinaryMessage, frame.Encode()); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}

	frame = readFrame(t, conn)
	if frame.Type != protocol.FrameControl {
		t.Fatalf("frame type = %v, want Control", frame.Type)
	}
	ct, payload, err := protocol.DecodeControl(frame.Payload)
	if err != nil {
		t.Fatalf("DecodeControl() error = %v", err)
	}
	pong, ok := payload.(*protocol.PingPong)
	if ct != protocol.ControlPong || !ok || pong.Timestamp != timestamp {
		t.Errorf("control = %v %+v, want Pong %d", ct, payload, timestamp)
	}
}

func TestWebSocket_Resume(t *testing.T) {
	_, ts := newTestServer(t, func(cfg *config.Config) {
		cfg.Server.HistorySize = 3
	})

	for v := 4; v <= 7; v++ {
		postOps(t, ts, fmt.Sprintf(`{"target":"items","op":"append","value":%d}`, v), "")
	}

	t.Run("replay", func(t *testing.T) {
		conn := dial(t, ts, "/collections/items/ws?after=2")
		for _, want := range []string{"#3 items add 5 6", "#4 items add 6 7"} {
			ev, flags := readEvent(t, conn)
			if ev.String() != want || !flags.Has(protocol.FlagReplay) {
				t.Errorf("event = %s flags %v, want replayed %s", ev, flags, want)
			}
		}
	})

	t.Run("up to date", func(t *testing.T) {
		conn := dial(t, ts, "/collections/items/ws?after=4")
		// Nothing is sent on an up to date resume; a pong shows the
		// client is registered.
		ping(t, conn, 1)
		postOps(t, ts, `{"target":"items","op":"remove","index":0}`, "")
		ev, flags := readEvent(t, conn)
		if ev.String() != "#5 items remove 0 1" || flags != 0 {
			t.Errorf("event = %s flags %v", ev, flags)
		}
	})

	for _, after := range []string{"0", "1", "99"} {
		t.Run("resync after "+after, func(t *testing.T) {
			conn := dial(t, ts, "/collections/items/ws?after="+after)
			s, flags := readSnapshot(t, conn)
			if !flags.Has(protocol.FlagResync) {
				t.Errorf("flags = %v, want Resync", flags)
			}
			if s.Seq != 5 || len(s.Entries) != 6 {
				t.Errorf("snapshot seq %d with %d entries, want seq 5 with 6", s.Seq, len(s.Entries))
			}
		})
	}
}

func TestWebSocket_HandshakeErrors(t *testing.T) {
	_, ts := newTestServer(t, func(cfg *config.Config) {
		cfg.Server.AuthSecret = "s3cret"
	})

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"unknown collection", "/collections/nope/ws", http.StatusNotFound},
		{"bad after", "/collections/items/ws?after=x", http.StatusBadRequest},
		{"bad token", "/collections/items/ws?token=garbage", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, tt.path), nil)
			if err == nil {
				conn.Close()
				t.Fatal("Dial() should fail")
			}
			if resp == nil || resp.StatusCode != tt.status {
				t.Errorf("response = %v, want status %d", resp, tt.status)
			}
		})
	}
}

func TestServer_Auth(t *testing.T) {
	srv, ts := newTestServer(t, func(cfg *config.Config) {
		cfg.Server.AuthSecret = "s3cret"
	})
	auth := srv.Authenticator()
	if auth == nil {
		t.Fatal("Authenticator() = nil with a secret configured")
	}
	full, _ := auth.Issue("tester", time.Minute)
	limited, _ := auth.Issue("tester", time.Minute, "overrides")

	t.Run("http", func(t *testing.T) {
		tests := []struct {
			name   string
			body   string
			token  string
			status int
		}{
			{"no token", `{"target":"items","op":"append","value":4}`, "", http.StatusUnauthorized},
			{"bad token", `{"target":"items","op":"append","value":4}`, "garbage", http.StatusUnauthorized},
			{"valid token", `{"target":"items","op":"append","value":4}`, full, http.StatusOK},
			{"outside claims", `{"target":"items","op":"append","value":5}`, limited, http.StatusUnauthorized},
			{"within claims", `{"target":"overrides","op":"set","key":"theme","value":"light"}`, limited, http.StatusOK},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				status, body := postOps(t, ts, tt.body, tt.token)
				if status != tt.status {
					t.Errorf("status = %d, want %d (%s)", status, tt.status, body)
				}
			})
		}
	})

	t.Run("reads are open", func(t *testing.T) {
		if status := getJSON(t, ts, "/collections/items", nil); status != http.StatusOK {
			t.Errorf("status = %d, want 200", status)
		}
	})

	t.Run("websocket without token", func(t *testing.T) {
		conn := dial(t, ts, "/collections/items/ws")
		readSnapshot(t, conn)
		sendOp(t, conn, 1, `{"target":"items","op":"append","value":9}`)
		if em := readError(t, conn); em.Code != protocol.ErrUnauthorized || em.ID != 1 {
			t.Errorf("error = %+v, want Unauthorized", em)
		}
	})

	t.Run("websocket with token", func(t *testing.T) {
		conn := dial(t, ts, "/collections/overrides/ws?token="+limited)
		readSnapshot(t, conn)
		sendOp(t, conn, 2, `{"target":"overrides","op":"set","key":"size","value":12}`)
		readEvent(t, conn)
		if frame := readFrame(t, conn); frame.Type != protocol.FrameAck {
			t.Errorf("frame type = %v, want Ack", frame.Type)
		}
		sendOp(t, conn, 3, `{"target":"items","op":"append","value":9}`)
		if em := readError(t, conn); em.Code != protocol.ErrUnauthorized || em.ID != 3 {
			t.Errorf("error = %+v, want Unauthorized", em)
		}
	})
}

func TestWebSocket_OverflowClose(t *testing.T) {
	srv, ts := newTestServer(t, nil)

	conn := dial(t, ts, "/collections/items/ws")
	readSnapshot(t, conn)

	srv.mu.Lock()
	for c := range srv.feeds["items"].clients {
		c.stop(protocol.CloseQueueOverflow, "E163: Send queue overflow")
	}
	srv.mu.Unlock()

	em := readError(t, conn)
	if em.Code != protocol.ErrQueueOverflow || !em.Fatal {
		t.Errorf("error = %+v, want fatal QueueOverflow", em)
	}
	expectClose(t, conn, protocol.CloseQueueOverflow)
}

func TestServer_Serve(t *testing.T) {
	srv, ts := newTestServer(t, nil)
	ts.Close()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ctx, ln) }()

	url := "ws://" + ln.Addr().String() + "/collections/items/ws"
	var conn *websocket.Conn
	deadline := time.Now().Add(5 * time.Second)
	for {
		conn, _, err = websocket.DefaultDialer.Dial(url, nil)
		if err == nil || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()
	readSnapshot(t, conn)

	cancel()
	expectClose(t, conn, protocol.CloseServerShutdown)

	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}

func expectClose(t *testing.T, conn *websocket.Conn, reason protocol.CloseReason) {
	t.Helper()
	frame := readFrame(t, conn)
	if frame.Type != protocol.FrameControl {
		t.Fatalf("frame type = %v, want Control", frame.Type)
	}
	ct, payload, err := protocol.DecodeControl(frame.Payload)
	if err != nil {
		t.Fatalf("DecodeControl() error = %v", err)
	}
	cm, ok := payload.(*protocol.CloseMessage)
	if ct != protocol.ControlClose || !ok || cm.Reason != reason {
		t.Errorf("control = %v %+v, want Close %v", ct, payload, reason)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("ReadMessage() error = %v, want normal closure", err)
	}
}

func TestServer_Metrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	srv, ts := newTestServer(t, func(cfg *config.Config) {
		cfg.Metrics.Enabled = true
	}, WithRegistry(registry))

	if srv.Registry() != registry {
		t.Fatal("Registry() should return the configured registry")
	}

	conn := dial(t, ts, "/collections/items/ws?after=99")
	readSnapshot(t, conn)
	postOps(t, ts, `{"target":"items","op":"append","value":4}`, "")
	postOps(t, ts, `{"target":"items","op":"remove","index":9}`, "")
	readEvent(t, conn)

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics error = %v", err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	body := string(data)

	for _, want := range []string{
		`livecoll_events_total{collection="items",kind="add"} 1`,
		`livecoll_ops_total{status="success",target="items"} 1`,
		`livecoll_ops_total{status="error",target="items"} 1`,
		`livecoll_active_clients 1`,
		`livecoll_resumes_total{outcome="snapshot"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestServer_MetricsDisabled(t *testing.T) {
	srv, ts := newTestServer(t, nil)
	if srv.Registry() != nil {
		t.Error("Registry() should be nil with metrics disabled")
	}
	if status := getJSON(t, ts, "/metrics", nil); status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", status)
	}
}

func TestOriginChecker(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"no origin", nil, "", true},
		{"same host", nil, "http://example.com", true},
		{"cross origin", nil, "http://evil.com", false},
		{"allowed origin", []string{"http://app.com"}, "http://app.com", true},
		{"allowed host", []string{"app.com"}, "https://app.com", true},
		{"wildcard", []string{"*"}, "http://evil.com", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "http://example.com/collections/items/ws", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			if got := originChecker(tt.allowed)(r); got != tt.want {
				t.Errorf("originChecker(%v)(%q) = %v, want %v", tt.allowed, tt.origin, got, tt.want)
			}
		})
	}
}
