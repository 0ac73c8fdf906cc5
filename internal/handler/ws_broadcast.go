package handler

// BroadcastWorldEvent implements service.Broadcaster using the WebSocket hub.
func (h *Hub) BroadcastWorldEvent(worldID int64, eventType string, data any) {
	h.BroadcastToWorld(worldID, WSEvent{
		Type:    eventType,
		WorldID: worldID,
		Data:    data,
	})
}
