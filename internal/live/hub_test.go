package live

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + query
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("expected 101, got %d", resp.StatusCode)
	}
	t.Cleanup(func() { conn.Close() })

	var hello Message
	if err := conn.ReadJSON(&hello); err != nil {
		t.Fatalf("read hello: %v", err)
	}
	if hello.Type != "hello" {
		t.Fatalf("expected hello, got %+v", hello)
	}
	return conn
}

func waitForCount(t *testing.T, h *Hub, session string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.Count(session) != want {
		if time.Now().After(deadline) {
			t.Fatalf("session %s: expected %d clients, got %d", session, want, h.Count(session))
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestReloadReachesOnlyItsSession(t *testing.T) {
	h := NewHub(nil)
	srv := httptest.NewServer(h)
	defer srv.Close()

	a := dial(t, srv, "?session=a")
	b := dial(t, srv, "?session=b")
	waitForCount(t, h, "a", 1)
	waitForCount(t, h, "b", 1)

	h.Reloader("a").ScheduleReload(20 * time.Millisecond)

	a.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := a.ReadJSON(&msg); err != nil {
		t.Fatalf("read reload: %v", err)
	}
	if msg.Type != "reload" || msg.Session != "a" {
		t.Errorf("unexpected message: %+v", msg)
	}

	b.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if err := b.ReadJSON(&msg); err == nil {
		t.Errorf("session b should not receive %+v", msg)
	}
}

func TestBroadcastCountsAndCleanup(t *testing.T) {
	h := NewHub(nil)
	srv := httptest.NewServer(h)
	defer srv.Close()

	c1 := dial(t, srv, "?session=s")
	dial(t, srv, "?session=s")
	waitForCount(t, h, "s", 2)

	if n := h.Broadcast("s", Message{Type: "reload", Session: "s"}); n != 2 {
		t.Errorf("Broadcast reached %d clients, want 2", n)
	}
	if n := h.Broadcast("nobody", Message{Type: "reload"}); n != 0 {
		t.Errorf("Broadcast to empty session reached %d", n)
	}

	c1.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c1.Close()
	waitForCount(t, h, "s", 1)
}

func TestSessionRequired(t *testing.T) {
	h := NewHub(nil)
	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}
