package service

// Broadcaster sends real-time world events to connected clients.
// Implemented by the WebSocket hub.
type Broadcaster interface {
	BroadcastWorldEvent(worldID int64, eventType string, data any)
}

// NoopBroadcaster is a no-op implementation for testing or when WS is disabled.
type NoopBroadcaster struct{}

func (NoopBroadcaster) BroadcastWorldEvent(int64, string, any) {}
