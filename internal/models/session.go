package models

import "time"

// Статусы sync-сессии
const (
	SessionActive    = "active"
	SessionCompleted = "completed"
	SessionFailed    = "failed"
)

// SyncSession представляет один ограниченный обмен событиями между
// узлом-инициатором и участниками. Открывается перед обменом, закрывается
// со статусом и счетчиками после него.
type SyncSession struct {
	StartedAt         time.Time `json:"started_at"`
	FinishedAt        time.Time `json:"finished_at"`
	ID                string    `json:"id"`                 // UUID сессии
	InitiatorNodeID   string    `json:"initiator_node_id"`  // узел, открывший сессию
	Status            string    `json:"status"`             // active | completed | failed
	ParticipantNodes  []string  `json:"participant_nodes"`  // peer-узлы сессии
	EventsTransferred int       `json:"events_transferred"` // отправлено + получено событий
	ConflictsDetected int       `json:"conflicts_detected"` // обнаружено конфликтов
	ConflictsResolved int       `json:"conflicts_resolved"` // разрешено автоматически
}
