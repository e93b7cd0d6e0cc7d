package gateway

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"chatsync/internal/chat/service"
	"chatsync/internal/common"
	"chatsync/internal/dbmongo"
	"chatsync/internal/identity"
	"chatsync/internal/presence"
	"chatsync/internal/typing"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

type event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type outEvent struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// client is one open conversation view over a websocket.
type client struct {
	server          *Server
	conn            *websocket.Conn
	session         *identity.Session
	peerID          string
	conversationKey string

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	publisher *typing.Publisher
	tracker   *presence.Tracker

	unsubMessages func()
	unsubTyping   func()
}

func newClient(s *Server, conn *websocket.Conn, session *identity.Session, peerID, conversationKey string) *client {
	return &client{
		server:          s,
		conn:            conn,
		session:         session,
		peerID:          peerID,
		conversationKey: conversationKey,
		send:            make(chan []byte, 256),
		done:            make(chan struct{}),
	}
}

// start wires both realtime streams plus the typing publisher and presence
// tracker for this view. An open socket implies a foregrounded app.
func (c *client) start(ctx context.Context) error {
	c.publisher = typing.NewPublisher(c.server.typingChannel, c.conversationKey, c.session.UserID, c.server.typingRate)
	c.tracker = presence.NewTracker(c.server.presenceWriter, c.session.UserID)

	unsubMessages, err := c.server.service.SubscribeMessages(ctx, c.conversationKey, func(messages []*dbmongo.Message) {
		c.push("message_list", messages)
	})
	if err != nil {
		c.publisher.Close()
		return err
	}
	c.unsubMessages = unsubMessages

	c.unsubTyping = c.server.service.SubscribeTyping(ctx, c.conversationKey, c.peerID, func(isTyping bool) {
		c.push("typing", map[string]any{
			"conversationKey": c.conversationKey,
			"userId":          c.peerID,
			"isTyping":        isTyping,
		})
	})

	// presence flips online only once the view is fully wired; a failed
	// setup never leaves the user stuck online
	c.tracker.Start(presence.StateActive)

	return nil
}

func (c *client) teardown() {
	// mandatory on view teardown - the realtime channels leak otherwise
	if c.unsubMessages != nil {
		c.unsubMessages()
	}
	if c.unsubTyping != nil {
		c.unsubTyping()
	}
	c.publisher.Close()
	// a dropped socket means the view is gone, so the peer sees offline
	c.tracker.OnStateChange(presence.StateBackground)
	// the write pump owns the connection: it sends the close frame and
	// closes the socket once done is observed
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *client) push(eventType string, payload any) {
	data, err := json.Marshal(outEvent{Type: eventType, Payload: payload})
	if err != nil {
		log.Printf("marshal %s event failed: %v", eventType, err)
		return
	}
	select {
	case c.send <- data:
	default:
		log.Printf("dropping %s event for slow client %s", eventType, c.session.UserID)
	}
}

func (c *client) readPump() {
	defer c.teardown()

	c.conn.SetReadLimit(64 * 1024)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket read error: %v", err)
			}
			return
		}

		var ev event
		if err := json.Unmarshal(raw, &ev); err != nil {
			log.Printf("bad client event: %v", err)
			continue
		}
		c.handleEvent(ev)
	}
}

func (c *client) handleEvent(ev event) {
	switch ev.Type {
	case "send_text":
		var payload struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			return
		}
		c.sendText(payload.Text)

	case "typing_start":
		c.publisher.Keystroke()

	case "typing_end":
		c.publisher.Blur()

	case "app_state":
		var payload struct {
			State string `json:"state"`
		}
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			return
		}
		c.tracker.OnStateChange(presence.AppState(payload.State))

	case "ping":
		c.push("pong", map[string]any{"time": time.Now().Unix()})
	}
}

func (c *client) sendText(text string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := c.server.service.Send(ctx, service.Draft{
		ConversationKey: c.conversationKey,
		SenderID:        c.session.UserID,
		SenderName:      c.session.DisplayName,
		Type:            common.MessageTypeText,
		Text:            text,
	})
	if err != nil {
		c.push("error", map[string]any{"op": "send_text", "message": err.Error()})
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write json failed: %v", err)
	}
}
