package api

import "time"

// EventStats агрегированные счетчики по журналу событий
type EventStats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`   // еще не подтверждены peer-узлами
	Processed int `json:"processed"` // подтверждены
	Abandoned int `json:"abandoned"` // брошены после превышения retry ceiling
}

// SessionStats агрегированные счетчики по sync-сессиям
type SessionStats struct {
	LastFinishedAt time.Time `json:"last_finished_at"`
	Total          int       `json:"total"`
	Active         int       `json:"active"`
	Completed      int       `json:"completed"`
	Failed         int       `json:"failed"`
}

// ConflictStats агрегированные счетчики по журналу конфликтов
type ConflictStats struct {
	Total         int `json:"total"`
	AutoResolved  int `json:"auto_resolved"`
	PendingReview int `json:"pending_review"` // требуют ручной проверки
}

// SyncStatsResponse представляет ответ GET /api/v1/admin/sync/stats
type SyncStatsResponse struct {
	Events    EventStats    `json:"events"`
	Sessions  SessionStats  `json:"sessions"`
	Conflicts ConflictStats `json:"conflicts"`
	Nodes     int           `json:"nodes"` // количество активных узлов
}

// Режимы восстановления после partition
const (
	RecoveryModeFull  = "full"  // полный ресинк: cursor сбрасывается в 0
	RecoveryModeSince = "since" // ресинк с указанного timestamp
)

// RecoveryRequest представляет запрос на запуск partition recovery
type RecoveryRequest struct {
	Mode     string `json:"mode"`                // full | since
	Since    int64  `json:"since,omitempty"`     // watermark для mode=since
	PeerID   string `json:"peer_id,omitempty"`   // ограничить recovery одним peer-узлом
	Strategy string `json:"strategy,omitempty"`  // форсированная стратегия разрешения конфликтов
}

// RecoveryResponse представляет ответ на запуск recovery
type RecoveryResponse struct {
	SessionID string `json:"session_id"` // идентификатор открытой recovery-сессии
	Message   string `json:"message"`
}

// ConflictInfo представляет одну запись журнала конфликтов
type ConflictInfo struct {
	DetectedAt         time.Time `json:"detected_at"`
	ResolvedAt         time.Time `json:"resolved_at"`
	ID                 string    `json:"id"`
	EntityType         string    `json:"entity_type"`
	EntityID           string    `json:"entity_id"`
	ConflictType       string    `json:"conflict_type"`
	ResolutionStrategy string    `json:"resolution_strategy"`
	WinnerNodeID       string    `json:"winner_node_id"`
	LocalNodeID        string    `json:"local_node_id"`
	RemoteNodeID       string    `json:"remote_node_id"`
	LocalTimestamp     int64     `json:"local_timestamp"`
	RemoteTimestamp    int64     `json:"remote_timestamp"`
	AutoResolved       bool      `json:"auto_resolved"`
	HumanReviewed      bool      `json:"human_reviewed"`
}

// ConflictsResponse представляет список конфликтов
type ConflictsResponse struct {
	Conflicts []ConflictInfo `json:"conflicts"`
}
