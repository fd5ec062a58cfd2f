package internal

import (
	"collab-lab/domain/event"
	"collab-lab/services"
	"collab-lab/sink"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// WSGateway upgrades HTTP requests to WebSocket connections and bridges
// them to the session coordinator: inbound frames become raw envelopes,
// outbound events drain through a per-connection channel. The gateway
// enforces nothing about envelope content; the coordinator already
// tolerates malformed and unrecognized input.
type WSGateway struct {
	log           *slog.Logger
	collab        services.ICollabService
	sendQueueSize int
	writeTimeout  time.Duration
}

func NewWSGateway(log *slog.Logger, collab services.ICollabService,
	sendQueueSize int, writeTimeout time.Duration) *WSGateway {
	return &WSGateway{
		log:           log,
		collab:        collab,
		sendQueueSize: sendQueueSize,
		writeTimeout:  writeTimeout,
	}
}

func (g *WSGateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.HandleWS(w, r)
}

// HandleWS runs one connection lifecycle: connect on upgrade, pump
// frames both ways, disconnect on any terminal error.
func (g *WSGateway) HandleWS(w http.ResponseWriter, r *http.Request) {
	wsConn, err := websocket.Accept(w, r, nil)
	if err != nil {
		g.log.Error("WebSocket accept failed", "error", err)
		return
	}

	conn := g.collab.Connect()
	channel := sink.NewChannelSink(g.sendQueueSize, g.log)
	conn.Attach(channel)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// shutdown is idempotent: read loop, write loop and peer close all
	// race to call it.
	var closeOnce sync.Once
	shutdown := func(code websocket.StatusCode, reason string) {
		closeOnce.Do(func() {
			conn.Close()
			_ = wsConn.Close(code, reason)
			cancel()
		})
	}

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for {
			select {
			case <-ctx.Done():
				return
			case evt := <-channel.Events:
				if err := g.writeEvent(ctx, wsConn, evt); err != nil {
					g.log.Info("WebSocket write failed",
						"participant_id", conn.Participant.ID, "error", err)
					shutdown(websocket.StatusAbnormalClosure, "write failed")
					return
				}
			}
		}
	}()

	for {
		_, data, err := wsConn.Read(ctx)
		if err != nil {
			shutdown(websocket.StatusNormalClosure, "peer closed")
			break
		}
		conn.Send(data)
	}
	<-writerDone
}

// writeEvent flattens the event fields next to its type tag, matching
// the inbound envelope shape.
func (g *WSGateway) writeEvent(parent context.Context, conn *websocket.Conn, e event.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	var fields map[string]any
	if err = json.Unmarshal(payload, &fields); err != nil {
		return err
	}
	fields["type"] = e.Tag()
	frame, err := json.Marshal(fields)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(parent, g.writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, frame)
}
