package httpserver

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/YonathanKevin20/barcode-generator-fe/internal/dropdown"
	apperrors "github.com/YonathanKevin20/barcode-generator-fe/internal/platform/errors"
	"github.com/YonathanKevin20/barcode-generator-fe/internal/uisession"
)

const (
	eventBuffer  = 32
	writeTimeout = 5 * time.Second
	pingInterval = 30 * time.Second
	pongTimeout  = pingInterval + 10*time.Second

	// closePageGone tells the browser its page session no longer exists.
	closePageGone = 4404
)

type dropdownState struct {
	Active *string `json:"active"`
}

// dropdownChange is pushed on the event stream for every coordinator change.
type dropdownChange struct {
	Previous *string `json:"previous"`
	Active   *string `json:"active"`
}

func optional(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

// uiCommand is a message the browser may send on the event stream instead
// of using the POST endpoints.
type uiCommand struct {
	Action string `json:"action"`
	ID     string `json:"id"`
}

func (s *Server) registerUIRoutes(csrfMiddleware echo.MiddlewareFunc) {
	g := s.echo.Group("/ui/pages/:page", csrfMiddleware)
	g.POST("/dropdowns/:id/register", s.handleDropdownRegister)
	g.POST("/dropdowns/:id/open", s.handleDropdownOpen)
	g.POST("/dropdowns/:id/close", s.handleDropdownClose)
	g.GET("/state", s.handlePageState)
	g.GET("/events", s.handlePageEvents)
	g.POST("/close", s.handlePageClose)
}

func (s *Server) lookupPage(c echo.Context) (*uisession.Page, error) {
	page, ok := s.pages.Get(c.Param("page"))
	if !ok {
		return nil, apperrors.NotFoundError("page session not found").WithField("page_id", c.Param("page"))
	}
	return page, nil
}

func (s *Server) writeState(c echo.Context, m *dropdown.Manager) error {
	active, _ := m.Active()
	if err := c.JSON(http.StatusOK, dropdownState{Active: optional(active)}); err != nil {
		return fmt.Errorf("failed to write dropdown state: %w", err)
	}
	return nil
}

func (s *Server) handleDropdownRegister(c echo.Context) error {
	page, err := s.lookupPage(c)
	if err != nil {
		return err
	}
	page.Dropdowns.Register(c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleDropdownOpen(c echo.Context) error {
	page, err := s.lookupPage(c)
	if err != nil {
		return err
	}
	page.Dropdowns.SetActive(c.Param("id"))
	return s.writeState(c, page.Dropdowns)
}

func (s *Server) handleDropdownClose(c echo.Context) error {
	page, err := s.lookupPage(c)
	if err != nil {
		return err
	}
	page.Dropdowns.ClearActive(c.Param("id"))
	return s.writeState(c, page.Dropdowns)
}

func (s *Server) handlePageState(c echo.Context) error {
	page, err := s.lookupPage(c)
	if err != nil {
		return err
	}
	return s.writeState(c, page.Dropdowns)
}

// handlePageClose ends the page session; the browser calls it on unload.
// Closing an unknown page is not an error.
func (s *Server) handlePageClose(c echo.Context) error {
	s.pages.Close(c.Param("page"))
	return c.NoContent(http.StatusNoContent)
}

// handlePageEvents streams every coordinator change of the page, in the
// order the changes were applied. A client that falls behind is
// disconnected and resynchronises from /state when it reconnects.
func (s *Server) handlePageEvents(c echo.Context) error {
	page, ok := s.pages.Get(c.Param("page"))

	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		slog.DebugContext(c.Request().Context(), "WebSocket upgrade failed", "error", err)
		return nil
	}
	defer conn.Close()

	if !ok {
		msg := websocket.FormatCloseMessage(closePageGone, "page session not found")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeTimeout))
		return nil
	}

	s.streamEvents(c, conn, page)
	return nil
}

func (s *Server) streamEvents(c echo.Context, conn *websocket.Conn, page *uisession.Page) {
	ctx := c.Request().Context()
	events := make(chan dropdown.Change, eventBuffer)
	overflow := make(chan struct{})
	var overflowed bool

	// The observer runs under the coordinator's dispatch lock, so it only
	// hands the change over.
	unsubscribe := page.Dropdowns.Subscribe(func(change dropdown.Change) {
		if overflowed {
			return
		}
		select {
		case events <- change:
		default:
			overflowed = true
			close(overflow)
		}
	})
	defer unsubscribe()

	if s.metrics != nil {
		s.metrics.UI.EventStreams.Inc()
		defer s.metrics.UI.EventStreams.Dec()
	}

	readDone := make(chan struct{})
	go s.readCommands(conn, page, readDone)

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case change := <-events:
			if err := s.writeChange(conn, change); err != nil {
				slog.DebugContext(ctx, "Event stream write failed", "page_id", page.ID, "error", err)
				return
			}
		case <-overflow:
			slog.WarnContext(ctx, "Event stream fell behind, disconnecting", "page_id", page.ID)
			s.closeStream(conn, websocket.CloseTryAgainLater, "too slow")
			return
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		case <-page.Done():
			s.closeStream(conn, closePageGone, "page session ended")
			return
		case <-readDone:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) writeChange(conn *websocket.Conn, change dropdown.Change) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	msg := dropdownChange{Previous: optional(change.Previous), Active: optional(change.Current)}
	if err := conn.WriteJSON(msg); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.UI.EventsPublished.Inc()
	}
	return nil
}

func (s *Server) closeStream(conn *websocket.Conn, code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeTimeout))
}

// readCommands applies open/close/register commands sent by the browser.
// Pongs and commands keep the page session from idling out. done is closed
// when the connection goes away.
func (s *Server) readCommands(conn *websocket.Conn, page *uisession.Page, done chan<- struct{}) {
	defer close(done)

	_ = conn.SetReadDeadline(time.Now().Add(pongTimeout))
	conn.SetPongHandler(func(string) error {
		s.pages.Get(page.ID)
		return conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	for {
		var cmd uiCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongTimeout))
		// Keep the page session alive while the browser is active.
		s.pages.Get(page.ID)

		switch cmd.Action {
		case "open":
			page.Dropdowns.SetActive(cmd.ID)
		case "close":
			page.Dropdowns.ClearActive(cmd.ID)
		case "register":
			page.Dropdowns.Register(cmd.ID)
		default:
			slog.Debug("Ignoring unknown UI command", "page_id", page.ID, "action", cmd.Action)
		}
	}
}
