package handler

import (
	"net/http"

	"coquiz/internal/bridge"
	"coquiz/internal/microservices/http-api/dto"
	"coquiz/internal/shell"

	"github.com/gin-gonic/gin"
)

type LocationReader interface {
	Snapshot() shell.Snapshot
}

type SessionReader interface {
	Snapshot() bridge.Session
}

type ViewState interface {
	Attached() bool
}

// ShellHandler serves what the host shell polls: where to point the content
// view and the current session state.
type ShellHandler struct {
	location LocationReader
	session  SessionReader
	views    ViewState
}

func NewShellHandler(location LocationReader, session SessionReader, views ViewState) *ShellHandler {
	return &ShellHandler{location: location, session: session, views: views}
}

// Content returns the address the content view should load
func (h *ShellHandler) Content(c *gin.Context) {
	c.JSON(http.StatusOK, h.location.Snapshot())
}

func (h *ShellHandler) Status(c *gin.Context) {
	s := h.session.Snapshot()
	c.JSON(http.StatusOK, dto.StatusResponse{
		Attached:         h.views.Attached(),
		Online:           s.Online,
		AppState:         string(s.AppState),
		Settings:         s.Settings,
		BackgroundTrack:  s.BackgroundTrack,
		BackgroundStatus: string(s.BackgroundStatus),
		WalletPending:    s.WalletPending,
		HasPushToken:     s.PushToken != nil,
		HasUserID:        s.UserIdentifier != "",
	})
}

func (h *ShellHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
