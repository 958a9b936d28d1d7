package dashboard

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/raykavin/reportview/pkg/chart"
	"github.com/raykavin/reportview/pkg/chart/plan"
	"github.com/raykavin/reportview/pkg/logger"
)

// Message types
const (
	MessageLayout          = "layout"
	MessageSetVisibleRange = "setVisibleRange"
	MessageError           = "error"
	MessageRange           = "range"
	MessageRender          = "render"
)

// Message represents a message sent over WebSocket
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// ClientMessage is a message received from the browser. A range message
// reports a user scroll or zoom on one pane, a render message asks for a
// different chart group or height.
type ClientMessage struct {
	Type   string          `json:"type"`
	Pane   string          `json:"pane,omitempty"`
	Range  chart.TimeRange `json:"range"`
	Group  string          `json:"group,omitempty"`
	Height int             `json:"height,omitempty"`
}

// LayoutPayload is sent after every render
type LayoutPayload struct {
	Session string `json:"session"`
	plan.Document
}

// RangePayload asks the browser to move a pane's time axis
type RangePayload struct {
	Pane  string          `json:"pane"`
	Range chart.TimeRange `json:"range"`
}

// SessionManager handles WebSocket sessions. Every session keeps the
// composed layout of its browser tab alive so the two panes stay synced
// server side.
type SessionManager struct {
	sync.RWMutex
	sessions  map[string]*session
	upgrader  websocket.Upgrader
	log       logger.Logger
	dashboard *Dashboard
}

// NewSessionManager creates a new session manager
func NewSessionManager(log logger.Logger, dashboard *Dashboard) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*session),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		log:       log,
		dashboard: dashboard,
	}
}

// HandleWebSocket handles WebSocket connections
func (m *SessionManager) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.log.Error("Failed to upgrade connection to WebSocket: ", err)
		return
	}

	s := &session{
		id:      uuid.NewString(),
		conn:    conn,
		run:     query.Get("run"),
		manager: m,
		log:     m.log,
	}
	s.view = chart.NewView(m.dashboard.newComposer(&plan.Factory{}))

	m.Lock()
	m.sessions[s.id] = s
	count := len(m.sessions)
	m.Unlock()
	m.log.Debugf("WebSocket session %s opened, total: %d", s.id, count)

	height, _ := strconv.Atoi(query.Get("height"))
	s.render(query.Get("group"), height)

	go s.listen()
}

// Count returns the number of open sessions
func (m *SessionManager) Count() int {
	m.RLock()
	defer m.RUnlock()
	return len(m.sessions)
}

// CloseAll closes every open connection, their read loops release the
// layouts
func (m *SessionManager) CloseAll() {
	m.RLock()
	defer m.RUnlock()
	for _, s := range m.sessions {
		s.conn.Close()
	}
}

func (m *SessionManager) remove(s *session) {
	m.Lock()
	delete(m.sessions, s.id)
	count := len(m.sessions)
	m.Unlock()
	m.log.Debugf("WebSocket session %s closed, remaining: %d", s.id, count)
}

type session struct {
	id      string
	conn    *websocket.Conn
	writeMu sync.Mutex
	run     string
	view    *chart.View
	manager *SessionManager
	log     logger.Logger
}

func (s *session) listen() {
	defer func() {
		s.view.Dispose()
		s.manager.remove(s)
		s.conn.Close()
	}()

	s.conn.SetPingHandler(func(string) error {
		return s.conn.WriteControl(websocket.PongMessage, []byte{}, time.Now().Add(10*time.Second))
	})

	for {
		var msg ClientMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.log.Error("WebSocket read error: ", err)
			}
			return
		}

		switch msg.Type {
		case MessageRange:
			s.scrolled(msg.Pane, msg.Range)
		case MessageRender:
			s.render(msg.Group, msg.Height)
		default:
			s.log.Debugf("WebSocket session %s ignored message %q", s.id, msg.Type)
		}
	}
}

// render composes a chart group into a fresh layout, the previous one is
// disposed by the view
func (s *session) render(group string, height int) {
	d := s.manager.dashboard

	defer func() {
		if r := recover(); r != nil {
			s.fail(fmt.Errorf("render %q: %v", group, r))
		}
	}()

	elements, group, err := d.groupElements(s.run, group)
	if err != nil {
		s.fail(err)
		return
	}

	layout, err := s.view.Render(elements, d.parseHeight(strconv.Itoa(height)))
	if err != nil {
		s.fail(err)
		return
	}

	for _, pane := range layout.Panes() {
		surface, ok := pane.Surface.(*plan.Surface)
		if !ok {
			continue
		}
		kind := pane.Kind.String()
		surface.OnSetVisibleRange(func(r chart.TimeRange) {
			s.send(Message{Type: MessageSetVisibleRange, Payload: RangePayload{Pane: kind, Range: r}})
		})
	}

	doc := plan.Describe(layout)
	doc.Group = group
	s.send(Message{Type: MessageLayout, Payload: LayoutPayload{Session: s.id, Document: doc}})
}

// scrolled replays a browser range change on the pane's surface, the
// layout sync then moves the other pane
func (s *session) scrolled(kind string, r chart.TimeRange) {
	layout := s.view.Layout()
	if layout.Empty() {
		return
	}

	pane := paneByKind(layout, kind)
	if pane == nil {
		return
	}
	if surface, ok := pane.Surface.(*plan.Surface); ok {
		surface.Emit(r)
	}
}

func (s *session) fail(err error) {
	message := "Internal server error"
	if isNotFound(err) {
		message = http.StatusText(http.StatusNotFound)
	} else {
		s.log.WithError(err).Error("dashboard: session render failed")
	}
	s.send(Message{Type: MessageError, Payload: map[string]string{"message": message}})
}

func (s *session) send(msg Message) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.conn.WriteJSON(msg); err != nil {
		s.log.Error("Error sending WebSocket message: ", err)
	}
}
