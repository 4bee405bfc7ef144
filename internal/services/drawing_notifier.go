package services

import (
	"context"

	"github.com/google/uuid"

	types "github.com/yungbote/drawhub-backend/internal/domain"
	"github.com/yungbote/drawhub-backend/internal/realtime"
)

type DrawingNotifier interface {
	DrawingCreated(d *types.Drawing)
	DrawingUpdated(d *types.Drawing)
	DrawingDeleted(id uuid.UUID)
}

type drawingNotifier struct {
	emit SSEEmitter
}

func NewDrawingNotifier(emit SSEEmitter) DrawingNotifier {
	return &drawingNotifier{emit: emit}
}

func (n *drawingNotifier) DrawingCreated(d *types.Drawing) {
	n.send(realtime.SSEEventDrawingCreated, d)
}

func (n *drawingNotifier) DrawingUpdated(d *types.Drawing) {
	n.send(realtime.SSEEventDrawingUpdated, d)
}

func (n *drawingNotifier) DrawingDeleted(id uuid.UUID) {
	if id == uuid.Nil {
		return
	}
	n.send(realtime.SSEEventDrawingDeleted, map[string]any{"id": id})
}

func (n *drawingNotifier) send(event realtime.SSEEvent, data any) {
	if n == nil || n.emit == nil || data == nil {
		return
	}
	if d, ok := data.(*types.Drawing); ok && d == nil {
		return
	}
	n.emit.Emit(context.Background(), realtime.SSEMessage{
		Channel: realtime.ChannelDrawings,
		Event:   event,
		Data:    data,
	})
}

type nopNotifier struct{}

func (nopNotifier) DrawingCreated(*types.Drawing) {}
func (nopNotifier) DrawingUpdated(*types.Drawing) {}
func (nopNotifier) DrawingDeleted(uuid.UUID)      {}

func notifierOrNop(n DrawingNotifier) DrawingNotifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}
