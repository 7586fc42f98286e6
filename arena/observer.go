package arena

import (
	"go.uber.org/zap"
)

// LogObserver writes allocation lifecycle events to a zap logger.
type LogObserver struct {
	log *zap.Logger
}

// NewLogObserver creates an observer logging at debug level.
func NewLogObserver(log *zap.Logger) *LogObserver {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogObserver{log: log}
}

func (o *LogObserver) OnArenaEvent(e Event) {
	o.log.Debug("arena event",
		zap.String("type", eventName(e.Type)),
		zap.Uint32("handle", uint32(e.Handle)),
		zap.Int("size", e.Size),
	)
}

func eventName(t EventType) string {
	switch t {
	case EventAlloc:
		return "alloc"
	case EventFree:
		return "free"
	case EventRetain:
		return "retain"
	default:
		return "unknown"
	}
}
