package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/vitals-badge/go-host/internal/badge"
	"github.com/vitals-badge/go-host/internal/intake"
	"github.com/vitals-badge/go-host/internal/vitals"
)

const writeTimeout = 15 * time.Second

var errNotConnected = errors.New("no extension connected")

// #region interfaces

// EventHandler consumes measurement and navigation events from the extension.
// Satisfied by *intake.Intake.
type EventHandler interface {
	HandleMeasurement(ev intake.MeasurementEvent)
	HandleNavigation(ev intake.NavigationEvent)
}

// TabForgetter drops per-tab animation state when the browser closes a tab.
// Satisfied by *sequencer.Sequencer.
type TabForgetter interface {
	Forget(tabID int)
}

// #endregion interfaces

// #region server-struct

// Server is the WebSocket bridge between the host and the browser extension.
// Inbound, it feeds measurement and tab lifecycle events to intake and keeps
// the open-tab registry current; outbound, it implements badge.Renderer by
// sending badge commands, and sequencer.TabChecker from the registry.
// A single extension connection is active at a time; a new connection
// replaces the old one.
type Server struct {
	handler EventHandler
	forget  TabForgetter

	httpServer *http.Server
	addr       string

	mu   sync.Mutex
	conn *websocket.Conn
	tabs map[int]struct{}

	wmu sync.Mutex // serializes writes on conn
}

// New creates a bridge server listening on addr. Attach must be called
// before serving: the sequencer is built on top of the bridge (renderer and
// liveness), so the inbound side is bound afterwards.
func New(addr string) *Server {
	return &Server{
		addr: addr,
		tabs: make(map[int]struct{}),
	}
}

// Attach binds the inbound event handler and the tab forgetter.
func (s *Server) Attach(handler EventHandler, forget TabForgetter) {
	s.handler = handler
	s.forget = forget
}

// #endregion server-struct

// #region serve

// ListenAndServe blocks serving the extension endpoint until Shutdown.
func (s *Server) ListenAndServe() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/extension", s.HandleExtension)
	s.httpServer = &http.Server{Addr: s.addr, Handler: mux}

	log.Printf("[BRIDGE] listening on %s", s.addr)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and closes the active one.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn != nil {
		conn.Close(websocket.StatusGoingAway, "host shutting down")
	}
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// #endregion serve

// #region extension-handler

// HandleExtension upgrades the request and pumps extension messages until the
// connection drops.
func (s *Server) HandleExtension(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		return
	}
	defer ws.CloseNow()

	s.mu.Lock()
	old := s.conn
	s.conn = ws
	s.mu.Unlock()
	if old != nil {
		old.Close(websocket.StatusPolicyViolation, "replaced by new connection")
	}
	log.Printf("[BRIDGE] extension connected from %s", r.RemoteAddr)

	ctx := r.Context()
	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			break
		}
		s.Dispatch(data)
	}

	s.mu.Lock()
	if s.conn == ws {
		s.conn = nil
	}
	s.mu.Unlock()
	log.Printf("[BRIDGE] extension disconnected")
}

// #endregion extension-handler

// #region dispatch

// Dispatch routes one inbound extension message. Malformed messages are
// logged and dropped.
func (s *Server) Dispatch(data []byte) {
	if s.handler == nil || s.forget == nil {
		return
	}
	var msg inbound
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("[BRIDGE] bad envelope: %v", err)
		return
	}

	switch msg.Type {
	case "measurement":
		var ev intake.MeasurementEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			log.Printf("[BRIDGE] bad measurement: %v", err)
			return
		}
		s.markTab(ev.TabID, true)
		s.handler.HandleMeasurement(ev)

	case "navigation":
		var ev intake.NavigationEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			log.Printf("[BRIDGE] bad navigation: %v", err)
			return
		}
		s.markTab(ev.TabID, true)
		s.handler.HandleNavigation(ev)

	case "tabs":
		var snap tabSnapshot
		if err := json.Unmarshal(msg.Data, &snap); err != nil {
			log.Printf("[BRIDGE] bad tab snapshot: %v", err)
			return
		}
		s.replaceTabs(snap.TabIDs)

	case "tab_opened":
		var ev tabEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			log.Printf("[BRIDGE] bad tab event: %v", err)
			return
		}
		s.markTab(ev.TabID, true)

	case "tab_removed":
		var ev tabEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			log.Printf("[BRIDGE] bad tab event: %v", err)
			return
		}
		s.markTab(ev.TabID, false)
		s.forget.Forget(ev.TabID)

	default:
		log.Printf("[BRIDGE] unknown message type %q", msg.Type)
	}
}

// #endregion dispatch

// #region tab-registry

func (s *Server) markTab(tabID int, open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if open {
		s.tabs[tabID] = struct{}{}
	} else {
		delete(s.tabs, tabID)
	}
}

func (s *Server) replaceTabs(tabIDs []int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tabs = make(map[int]struct{}, len(tabIDs))
	for _, id := range tabIDs {
		s.tabs[id] = struct{}{}
	}
}

// TabExists reports whether the extension has told us the tab is open.
func (s *Server) TabExists(ctx context.Context, tabID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tabs[tabID]
	return ok
}

// #endregion tab-registry

// #region renderer

// RenderOverall sends the verdict badge frame for a tab.
func (s *Server) RenderOverall(ctx context.Context, tabID int, v vitals.Verdict) error {
	return s.sendFrame(ctx, tabID, badge.OverallFrame(v))
}

// RenderMetric sends a failing metric's badge frame for a tab.
func (s *Server) RenderMetric(ctx context.Context, tabID int, m vitals.Metric, value float64) error {
	return s.sendFrame(ctx, tabID, badge.MetricFrame(m, value))
}

func (s *Server) sendFrame(ctx context.Context, tabID int, f badge.Frame) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return errNotConnected
	}

	data, err := json.Marshal(envelope{Type: "badge", Data: badgeCommand{
		TabID: tabID,
		Icon:  f.Icon,
		Text:  f.Text,
		Color: f.Color,
	}})
	if err != nil {
		return err
	}

	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	s.wmu.Lock()
	defer s.wmu.Unlock()
	return conn.Write(writeCtx, websocket.MessageText, data)
}

// #endregion renderer
