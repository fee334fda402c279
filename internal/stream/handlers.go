package stream

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RegisterRoutes mounts the websocket endpoint. Browsers cannot set an
// Authorization header on a websocket upgrade, so the subscriber proves
// its identity with an access token in the query string; the connection
// is bound to the account the token resolves to.
func RegisterRoutes(r fiber.Router, hub *Hub, authenticate func(token string) (string, error)) {
	r.Get("/ws", func(c *fiber.Ctx) error {
		accountID, err := authenticate(c.Query("token"))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "token invalid")
		}
		c.Locals("account_id", accountID)
		return c.Next()
	}, websocket.New(func(c *websocket.Conn) {
		accountID, _ := c.Locals("account_id").(string)
		client := hub.Register(accountID)
		defer hub.Unregister(client)

		done := make(chan struct{})
		go func() {
			for msg := range client.Send {
				if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
					break
				}
			}
			close(done)
		}()

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
		<-done
	}))
}
