package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The engine is a local service; origin policy is handled by CORS upstream.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// MoodFeed streams mood changes to attached views. Each connection gets its
// own bus subscription, so a slow client never stalls another.
func (s *Server) MoodFeed(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("⚠️ Websocket upgrade failed: %v", err)
		return
	}

	changes := s.eventBus.Subscribe()
	defer s.eventBus.Unsubscribe(changes)

	// Reader goroutine: we never expect client messages, but reading is how
	// close frames get noticed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	defer conn.Close()
	for {
		select {
		case change := <-changes:
			if err := conn.WriteJSON(change); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
