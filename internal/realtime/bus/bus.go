// Package bus fans hub messages out across instances.
package bus

import (
	"context"

	"github.com/yungbote/drawhub-backend/internal/realtime"
)

type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	// StartForwarder subscribes and feeds every received message to onMsg until ctx ends.
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}
