package realtime

import (
	"github.com/google/uuid"

	"github.com/yungbote/drawhub-backend/internal/platform/logger"
)

const outboundBuffer = 32

type SSEClient struct {
	ID        uuid.UUID
	Transport string
	Channels  map[string]bool
	Outbound  chan SSEMessage
	done      chan struct{}
	closed    bool // guarded by the owning hub's mu
	Logger    *logger.Logger
}

// Done is closed once the hub has released the client.
func (c *SSEClient) Done() <-chan struct{} { return c.done }
