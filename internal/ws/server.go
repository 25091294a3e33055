package ws

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"listingtrendgo/internal/scheduler/sweepscheduler"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 20 * time.Second // must be < pongWait
)

// WsServer serves the read-only operational feed: clients receive the
// current sweep stats on connect and every trending event afterwards.
type WsServer struct {
	hub   *Hub
	sched *sweepscheduler.Scheduler
	upg   websocket.Upgrader
}

func NewWsServer(h *Hub, sched *sweepscheduler.Scheduler) *WsServer {
	return &WsServer{
		hub:   h,
		sched: sched,
		upg: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true }, // dev-only
		},
	}
}

func (s *WsServer) Handle(ginCtx *gin.Context) {
	rawConn, err := s.upg.Upgrade(ginCtx.Writer, ginCtx.Request, nil)
	if err != nil {
		zap.L().Warn("ws.accept", zap.Error(err))
		return
	}
	rawConn.SetReadLimit(512)

	wsConn := &clientConn{rawConn: rawConn}
	s.hub.Join(wsConn)

	// Initial snapshot.
	if err := wsConn.writeJSON(gin.H{
		"event": "trending/stats",
		"body": gin.H{
			"schedule": s.sched.Schedule(),
			"stats":    s.sched.Snapshot(),
			"uptime":   s.sched.Uptime().String(),
		},
	}); err != nil {
		zap.L().Warn("ws.snapshot", zap.Error(err))
	}

	go s.reader(wsConn)
	go s.pinger(wsConn)
}

// reader drains (and discards) client frames so pongs and close frames
// are processed; the feed has no client-initiated commands.
func (s *WsServer) reader(conn *clientConn) {
	defer s.hub.Leave(conn)

	_ = conn.rawConn.SetReadDeadline(time.Now().Add(pongWait))
	conn.rawConn.SetPongHandler(func(string) error {
		return conn.rawConn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.rawConn.ReadMessage(); err != nil {
			return // client closed or errored
		}
	}
}

func (s *WsServer) pinger(conn *clientConn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for range ticker.C {
		if err := conn.write(websocket.PingMessage, nil); err != nil {
			return
		}
	}
}
