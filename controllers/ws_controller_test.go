package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/kendall-kelly/estate-inquiries-api/models"
	"github.com/kendall-kelly/estate-inquiries-api/realtime"
	"github.com/kendall-kelly/estate-inquiries-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupWSRouter(t *testing.T, user models.User, origins []string) (*realtime.Hub, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := realtime.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	router := gin.New()
	router.GET("/api/v1/ws", testutil.MockAuthMiddleware(user), NewWSHandler(hub, origins).Subscribe)
	server := httptest.NewServer(router)

	t.Cleanup(func() {
		server.Close()
		cancel()
	})
	return hub, server
}

func wsURL(server *httptest.Server, topic string) string {
	return "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/ws?topic=" + topic
}

func TestWSSubscribe_ReceivesTopicEvents(t *testing.T) {
	buyer := models.User{ID: 1, Auth0ID: "auth0|buyer", Role: models.RoleUser}
	hub, server := setupWSRouter(t, buyer, nil)
	topic := "users/1/inquiries/7"

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(server, topic), nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	require.Eventually(t, func() bool { return hub.Subscribers(topic) == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, hub.Publish(context.Background(), topic, []byte(`{"type":"message.created"}`)))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"message.created"}`, string(data))
}

func TestWSSubscribe_Rejections(t *testing.T) {
	agent := models.User{ID: 10, Auth0ID: "auth0|agent", Role: models.RoleAgent}
	_, server := setupWSRouter(t, agent, []string{"https://estates.example.com"})

	tests := []struct {
		name           string
		topic          string
		origin         string
		expectedStatus int
	}{
		{"missing topic", "", "", http.StatusBadRequest},
		{"another agent's topic", "agents/11/inquiries", "", http.StatusForbidden},
		{"buyer topic", "users/1/inquiries/7", "", http.StatusForbidden},
		{"admin topic", "admin/inquiries", "", http.StatusForbidden},
		{"disallowed origin", "agents/10/inquiries", "https://evil.example.com", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			if tt.origin != "" {
				header.Set("Origin", tt.origin)
			}
			conn, resp, err := websocket.DefaultDialer.Dial(wsURL(server, tt.topic), header)
			if conn != nil {
				conn.Close()
			}
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestWSSubscribe_AllowedOrigin(t *testing.T) {
	admin := models.User{ID: 99, Auth0ID: "auth0|admin", Role: models.RoleAdmin}
	_, server := setupWSRouter(t, admin, []string{"https://estates.example.com"})

	header := http.Header{}
	header.Set("Origin", "https://estates.example.com")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server, "admin/inquiries"), header)
	require.NoError(t, err)
	conn.Close()
}
