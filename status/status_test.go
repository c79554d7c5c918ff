package status

import (
	"encoding/json"
	"math"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		t.Fatal(err)
	}
	return e
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub()
	hub.Info("state %v", "ready")

	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if e := readEvent(t, conn); e.Message != "state ready" || e.Type != INFO {
		t.Errorf("first event %+v; expected the last published one", e)
	}

	hub.Progress(0.5, "face %s loaded", "top")
	if e := readEvent(t, conn); e.Type != PROGRESS || e.Progress != 0.5 || e.Message != "face top loaded" {
		t.Errorf("unexpected event %+v", e)
	}

	hub.Error("face %s failed", "left")
	if e := readEvent(t, conn); e.Type != ERROR {
		t.Errorf("unexpected event %+v", e)
	}
}

func TestProgressSanitized(t *testing.T) {
	hub := NewHub()
	hub.Progress(float32(math.NaN()), "nan")
	var e Event
	if err := json.Unmarshal(hub.Last(), &e); err != nil {
		t.Fatal(err)
	}
	if e.Progress != 0 {
		t.Errorf("progress %v; expected 0", e.Progress)
	}
}
