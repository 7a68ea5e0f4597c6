package websocket

import (
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

func waitForSubscribers(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.SubscriberCount() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d subscribers, have %d", want, hub.SubscriberCount())
}

func TestSubscribeAndBroadcast(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	e := echo.New()
	e.GET("/ws", func(c echo.Context) error {
		return Subscribe(c, hub, map[string]interface{}{"isActive": true})
	})
	srv := httptest.NewServer(e)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	defer conn.Close()

	// The current state is pushed on connect.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var first StateUpdate
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("failed to read connect message: %v", err)
	}
	if first.Type != UpdateTypeConnected {
		t.Fatalf("expected %q message, got %q", UpdateTypeConnected, first.Type)
	}
	if first.Data == nil {
		t.Fatal("expected the connect message to carry the current state")
	}

	waitForSubscribers(t, hub, 1)

	hub.Broadcast(StateUpdate{
		Type: UpdateTypeGiveawayState,
		Data: map[string]interface{}{"isActive": false},
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var update StateUpdate
	if err := conn.ReadJSON(&update); err != nil {
		t.Fatalf("failed to read broadcast: %v", err)
	}
	if update.Type != UpdateTypeGiveawayState {
		t.Fatalf("expected %q update, got %q", UpdateTypeGiveawayState, update.Type)
	}
}

func TestDisconnectUnregisters(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	e := echo.New()
	e.GET("/ws", func(c echo.Context) error {
		return Subscribe(c, hub, nil)
	})
	srv := httptest.NewServer(e)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}

	waitForSubscribers(t, hub, 1)

	conn.Close()
	waitForSubscribers(t, hub, 0)
}

// Connecting subscribers receive their initial state push while the hub is
// broadcasting; both writes target the same connection and must be
// serialized.
func TestConcurrentConnectAndBroadcast(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	e := echo.New()
	e.GET("/ws", func(c echo.Context) error {
		return Subscribe(c, hub, map[string]interface{}{"isActive": true})
	})
	srv := httptest.NewServer(e)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
				hub.Broadcast(StateUpdate{Type: UpdateTypeGiveawayState})
				time.Sleep(2 * time.Millisecond)
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
			if err != nil {
				t.Errorf("failed to dial connection %d: %v", i, err)
				return
			}
			defer conn.Close()

			conn.SetReadDeadline(time.Now().Add(5 * time.Second))
			for n := 0; n < 10; n++ {
				var update StateUpdate
				if err := conn.ReadJSON(&update); err != nil {
					t.Errorf("connection %d failed reading frame %d: %v", i, n, err)
					return
				}
			}
		}(i)
	}
	wg.Wait()
}

func TestBroadcastToMultipleSubscribers(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	e := echo.New()
	e.GET("/ws", func(c echo.Context) error {
		return Subscribe(c, hub, nil)
	})
	srv := httptest.NewServer(e)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	conns := make([]*websocket.Conn, 0, 3)
	for i := 0; i < 3; i++ {
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			t.Fatalf("failed to dial connection %d: %v", i, err)
		}
		defer conn.Close()

		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var first StateUpdate
		if err := conn.ReadJSON(&first); err != nil {
			t.Fatalf("failed to read connect message on connection %d: %v", i, err)
		}
		conns = append(conns, conn)
	}

	waitForSubscribers(t, hub, 3)

	hub.Broadcast(StateUpdate{Type: UpdateTypeGiveawayState})

	for i, conn := range conns {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var update StateUpdate
		if err := conn.ReadJSON(&update); err != nil {
			t.Fatalf("subscriber %d missed the broadcast: %v", i, err)
		}
		if update.Type != UpdateTypeGiveawayState {
			t.Fatalf("subscriber %d got %q", i, update.Type)
		}
	}
}
