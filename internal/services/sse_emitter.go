package services

import (
	"context"
	"time"

	"github.com/yungbote/drawhub-backend/internal/platform/logger"
	"github.com/yungbote/drawhub-backend/internal/realtime"
	"github.com/yungbote/drawhub-backend/internal/realtime/bus"
)

// SSEEmitter delivers a message to connected clients. Emit must not block.
type SSEEmitter interface {
	Emit(ctx context.Context, msg realtime.SSEMessage)
}

type HubEmitter struct{ Hub *realtime.SSEHub }

func (e *HubEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	if e == nil || e.Hub == nil {
		return
	}
	e.Hub.Broadcast(msg)
}

const defaultPublishTimeout = 5 * time.Second

// RedisEmitter publishes on the bus in the background; every instance's
// forwarder, including this one, relays the message into its local hub.
type RedisEmitter struct {
	Bus     bus.Bus
	Log     *logger.Logger
	Timeout time.Duration
}

func (e *RedisEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	if e == nil || e.Bus == nil {
		return
	}
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	if ctx == nil {
		ctx = context.Background()
	}
	base := context.WithoutCancel(ctx)
	go func() {
		pubCtx, cancel := context.WithTimeout(base, timeout)
		defer cancel()
		if err := e.Bus.Publish(pubCtx, msg); err != nil && e.Log != nil {
			e.Log.Warn("Realtime publish failed", "event", msg.Event, "error", err)
		}
	}()
}
