package transport

import (
	"context"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"

	"github.com/imtaco/stream-orch-exp/internal/log"
	"github.com/imtaco/stream-orch-exp/internal/workflow"
)

// streamEvents upgrades to a websocket and pushes every state transition of
// the session until the client goes away or the session closes.
func (r *Router) streamEvents(c *gin.Context) {
	sess, ok := r.lookupSession(c)
	if !ok {
		return
	}

	sub := r.hub.Subscribe(sess.ID())
	defer sub.Close()

	wsConn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		OriginPatterns: r.origins,
	})
	if err != nil {
		r.logger.Error("WebSocket open failed",
			log.String("remote_addr", c.Request.RemoteAddr),
			log.Error(err))
		return
	}
	defer wsConn.Close(websocket.StatusNormalClosure, "")

	// The client never sends application messages, but reading is the only
	// way to notice it hung up.
	readCtx, stopRead := context.WithCancel(context.Background())
	go func() {
		defer stopRead()
		for {
			if _, _, err := wsConn.Read(readCtx); err != nil {
				return
			}
		}
	}()

	ctx, cancel := workflow.WithEitherDone(c.Request.Context(), readCtx)
	defer cancel()

	// Send the current state first so the client never renders from nothing.
	if err := wsjson.Write(ctx, wsConn, sess.Snapshot()); err != nil {
		return
	}

	for {
		select {
		case snap, open := <-sub.C():
			if !open {
				wsConn.Close(websocket.StatusNormalClosure, "session closed")
				return
			}
			if err := wsjson.Write(ctx, wsConn, snap); err != nil {
				r.logger.Debug("WebSocket write failed",
					log.String("sessionId", sess.ID()),
					log.Error(err))
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
