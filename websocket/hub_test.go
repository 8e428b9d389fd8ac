package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func waitForClients(t *testing.T, hub *Hub, userID primitive.ObjectID) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		hub.mu.RLock()
		_, ok := hub.clients[userID]
		hub.mu.RUnlock()
		if ok {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("client never became reachable by user id")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// A registered client is promoted by AuthenticateClient and becomes
// addressable through SendToUser; an unknown user id stays unreachable.
func TestAuthenticateClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := &Client{}
	hub.register <- client

	deadline := time.Now().Add(2 * time.Second)
	for {
		hub.mu.RLock()
		_, pending := hub.unauthenticatedClients[client]
		hub.mu.RUnlock()
		if pending {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	userID := primitive.NewObjectID()
	if err := hub.AuthenticateClient(client, userID); err != nil {
		t.Fatalf("AuthenticateClient: %v", err)
	}

	hub.mu.RLock()
	_, pending := hub.unauthenticatedClients[client]
	got, reachable := hub.clients[userID]
	hub.mu.RUnlock()

	if pending {
		t.Error("client still in the unauthenticated set after promotion")
	}
	if !reachable || got != client {
		t.Error("client not reachable by user id after promotion")
	}
	if err := hub.SendToUser(primitive.NewObjectID(), Notification{Type: EventTypeChatMessage}); err == nil {
		t.Error("SendToUser for an unknown user did not fail")
	}
}

// Hub deliveries and the handler's own replies share one connection; all of
// them must serialize through the client's write lock.
func TestConcurrentSends(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	userID := primitive.NewObjectID()
	clientCh := make(chan *Client, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		client := &Client{Conn: conn}
		hub.register <- client
		if err := hub.AuthenticateClient(client, userID); err != nil {
			t.Errorf("AuthenticateClient: %v", err)
			return
		}
		clientCh <- client
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := gws.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	client := <-clientCh
	waitForClients(t, hub, userID)

	const writers = 8
	const perWriter = 25

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				if err := hub.SendToUser(userID, Notification{Type: EventTypeChatMessage, Message: "hub"}); err != nil {
					t.Errorf("SendToUser: %v", err)
					return
				}
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				if err := client.Send(Notification{Type: EventTypeChatMessage, Message: "reply"}); err != nil {
					t.Errorf("Send: %v", err)
					return
				}
			}
		}()
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for received := 0; received < writers*perWriter*2; received++ {
		if _, _, err := conn.ReadMessage(); err != nil {
			t.Fatalf("read %d: %v", received, err)
		}
	}

	wg.Wait()
}
