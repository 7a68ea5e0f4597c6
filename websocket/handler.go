package websocket

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Subscribe upgrades the connection, pushes the current giveaway window state
// and keeps the client registered until it disconnects.
func Subscribe(c echo.Context, hub *Hub, current interface{}) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &Client{Conn: conn}
	hub.Register(client)

	client.Send(StateUpdate{
		Type:    UpdateTypeConnected,
		Message: "Subscribed to giveaway updates",
		Data:    current,
	})

	// Clients never send anything meaningful; the read loop only exists to
	// detect disconnects.
	go func() {
		defer func() {
			hub.Unregister(client)
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()

	return nil
}
