package websocket

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"coquiz/internal/attach"
	"coquiz/internal/bridge"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// inbox records inbound messages handed over by the hub
type inbox struct {
	mu   sync.Mutex
	msgs []string
}

func (i *inbox) HandleMessage(ctx context.Context, data []byte) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.msgs = append(i.msgs, string(data))
}

func (i *inbox) list() []string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]string(nil), i.msgs...)
}

type WebSocketTestSuite struct {
	suite.Suite
	server   *httptest.Server
	hub      *Hub
	inbox    *inbox
	notifier *bridge.Notifier
	tokens   *attach.TokenService
}

func (s *WebSocketTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.inbox = &inbox{}
	s.notifier = bridge.NewNotifier(logger)
	s.tokens = attach.NewTokenService(testSecret, time.Hour)
	s.hub = NewHub(s.inbox, s.notifier, logger)

	router := gin.New()
	router.GET("/ws", WSHandler(s.hub, s.tokens))
	s.server = httptest.NewServer(router)
}

func (s *WebSocketTestSuite) TearDownTest() {
	s.hub.CloseAll()
	s.server.Close()
}

func (s *WebSocketTestSuite) wsURL() string {
	return "ws" + strings.TrimPrefix(s.server.URL, "http") + "/ws"
}

func (s *WebSocketTestSuite) dial(device string) *websocket.Conn {
	token, err := s.tokens.IssueToken(device)
	s.Require().NoError(err)

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	conn, _, err := websocket.DefaultDialer.Dial(s.wsURL(), header)
	s.Require().NoError(err)
	return conn
}

func (s *WebSocketTestSuite) TestRejectsMissingToken() {
	_, resp, err := websocket.DefaultDialer.Dial(s.wsURL(), nil)
	s.Require().Error(err)
	s.Require().NotNil(resp)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	s.False(s.notifier.Attached())
}

func (s *WebSocketTestSuite) TestRejectsInvalidToken() {
	_, resp, err := websocket.DefaultDialer.Dial(s.wsURL()+"?token=forged", nil)
	s.Require().Error(err)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *WebSocketTestSuite) TestQueryTokenAccepted() {
	token, err := s.tokens.IssueToken("device-q")
	s.Require().NoError(err)

	conn, _, err := websocket.DefaultDialer.Dial(s.wsURL()+"?token="+token, nil)
	s.Require().NoError(err)
	defer conn.Close()

	s.Eventually(s.notifier.Attached, time.Second, 10*time.Millisecond)
}

func (s *WebSocketTestSuite) TestRoundTrip() {
	conn := s.dial("device-1")
	defer conn.Close()
	s.Eventually(s.notifier.Attached, time.Second, 10*time.Millisecond)

	inbound := `{"type":"getVersion"}`
	s.Require().NoError(conn.WriteMessage(websocket.TextMessage, []byte(inbound)))
	s.Eventually(func() bool { return len(s.inbox.list()) == 1 }, time.Second, 10*time.Millisecond)
	s.Equal(inbound, s.inbox.list()[0])

	s.Require().NoError(s.notifier.Notify(bridge.EventBackKeyPress, "dummy"))
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	s.Require().NoError(err)
	s.JSONEq(`{"type":"backKeyPress","value":"dummy"}`, string(data))
}

func (s *WebSocketTestSuite) TestNewAttachmentReplacesOld() {
	first := s.dial("device-1")
	defer first.Close()
	s.Eventually(func() bool { return s.hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	second := s.dial("device-1")
	defer second.Close()

	// the replaced view is closed by the server
	first.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := first.ReadMessage()
	s.Error(err)
	s.Eventually(func() bool { return s.hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	s.Require().NoError(s.notifier.Notify(bridge.CmdGetVersion.Success(), "1.0.0"))
	second.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := second.ReadMessage()
	s.Require().NoError(err)
	s.Contains(string(data), "getVersionSuccess")
}

func (s *WebSocketTestSuite) TestDisconnectDetaches() {
	conn := s.dial("device-1")
	s.Eventually(s.notifier.Attached, time.Second, 10*time.Millisecond)

	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()

	s.Eventually(func() bool { return !s.notifier.Attached() }, 2*time.Second, 10*time.Millisecond)
	s.ErrorIs(s.notifier.Notify(bridge.EventBackKeyPress, "dummy"), bridge.ErrNotAttached)
}

func TestWebSocketTestSuite(t *testing.T) {
	suite.Run(t, new(WebSocketTestSuite))
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer abc"))
	assert.Empty(t, bearerToken("Basic abc"))
	assert.Empty(t, bearerToken(""))
}

func TestPostMessageAfterClose(t *testing.T) {
	c := NewClient("c1", "device-1", nil, nil)
	require.NoError(t, c.PostMessage([]byte("x")))
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.PostMessage([]byte("y")), ErrClientClosed)
}

func TestPostMessageBufferFull(t *testing.T) {
	c := NewClient("c1", "device-1", nil, nil)
	for i := 0; i < SendBufferSize; i++ {
		require.NoError(t, c.PostMessage([]byte("x")))
	}
	assert.ErrorIs(t, c.PostMessage([]byte("x")), ErrSendBufferFull)
}
