package realtime

// Имена событий, которые слушает live-страница.
const (
	EventMatchUpdate = "match-update"
	EventFrameUpdate = "frame-update"
	EventScoreUpdate = "score-update"
)

// Publisher публикует события симуляции в комнату матча. Доставка
// best-effort: durable-запись — источник истины, пропущенное live-событие
// восстанавливается снимком матча.
type Publisher struct {
	hub *Hub
}

func NewPublisher(hub *Hub) *Publisher {
	return &Publisher{hub: hub}
}

func (p *Publisher) PublishScore(matchID string, payload interface{}) {
	p.hub.BroadcastToRoom(matchID, Message{Type: EventScoreUpdate, Payload: payload, RoomID: matchID})
}

func (p *Publisher) PublishFrame(matchID string, payload interface{}) {
	p.hub.BroadcastToRoom(matchID, Message{Type: EventFrameUpdate, Payload: payload, RoomID: matchID})
}

func (p *Publisher) PublishMatch(matchID string, payload interface{}) {
	p.hub.BroadcastToRoom(matchID, Message{Type: EventMatchUpdate, Payload: payload, RoomID: matchID})
}
