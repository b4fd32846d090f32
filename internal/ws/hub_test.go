package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/themobileprof/mamacare-be/internal/alerts"
	"github.com/themobileprof/mamacare-be/internal/api/middleware"
	"github.com/themobileprof/mamacare-be/pkg/logging"
)

const secret = "feed-secret"

func newFeedServer(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub(secret, logging.Discard())
	r := gin.New()
	r.GET("/api/alerts/stream", hub.Stream)

	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/alerts/stream?token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) OutgoingMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg OutgoingMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestHub_BroadcastsToConnectedClients(t *testing.T) {
	hub, srv := newFeedServer(t)

	token, err := middleware.GenerateToken("nurse-1", middleware.RoleStaff, secret, time.Hour)
	require.NoError(t, err)

	a := dial(t, srv, token)
	b := dial(t, srv, token)
	assert.Equal(t, "connected", readMessage(t, a).Type)
	assert.Equal(t, "connected", readMessage(t, b).Type)
	assert.Equal(t, 2, hub.Clients())

	hub.Publish(alerts.Event{
		Kind:        alerts.KindEmergency,
		Type:        "whatsapp_emergency",
		PatientName: "Asha",
		Detail:      "heavy bleeding",
	})

	for _, conn := range []*websocket.Conn{a, b} {
		msg := readMessage(t, conn)
		require.Equal(t, "alert", msg.Type)
		require.NotNil(t, msg.Alert)
		assert.Equal(t, alerts.KindEmergency, msg.Alert.Kind)
		assert.Equal(t, "heavy bleeding", msg.Alert.Detail)
		assert.False(t, msg.Alert.At.IsZero())
	}
}

func TestHub_RejectsBadTokens(t *testing.T) {
	_, srv := newFeedServer(t)

	tests := []struct {
		name    string
		token   string
		wantErr string
	}{
		{"missing", "", "Missing token"},
		{"garbage", "not-a-jwt", "Invalid token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(srv.URL + "/api/alerts/stream?token=" + tt.token)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			buf := make([]byte, 128)
			n, _ := resp.Body.Read(buf)
			assert.Contains(t, string(buf[:n]), tt.wantErr)
		})
	}
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	hub, srv := newFeedServer(t)

	token, err := middleware.GenerateToken("nurse-1", "", secret, time.Hour)
	require.NoError(t, err)

	conn := dial(t, srv, token)
	readMessage(t, conn)
	require.Equal(t, 1, hub.Clients())

	conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)

	hub.Publish(alerts.Event{Kind: alerts.KindRiskAlert})
}

func TestHub_PublishDoesNotBlockOnSlowClient(t *testing.T) {
	hub := NewHub(secret, logging.Discard())
	slow := &client{userID: "slow", send: make(chan OutgoingMessage, 1)}
	hub.clients[slow] = struct{}{}

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			hub.Publish(alerts.Event{Kind: alerts.KindEscalation})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full client buffer")
	}
	assert.Len(t, slow.send, 1)
}

func TestHub_CloseRefusesNewClients(t *testing.T) {
	hub := NewHub(secret, logging.Discard())
	hub.Close()

	assert.False(t, hub.register(&client{send: make(chan OutgoingMessage, 1)}))
	assert.Equal(t, 0, hub.Clients())
}
