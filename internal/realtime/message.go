package realtime

type SSEEvent string

const (
	SSEEventDrawingCreated SSEEvent = "drawing.created"
	SSEEventDrawingUpdated SSEEvent = "drawing.updated"
	SSEEventDrawingDeleted SSEEvent = "drawing.deleted"
)

// ChannelDrawings carries every catalogue change; all clients join it on connect.
const ChannelDrawings = "drawings"

type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}
