package models

import "time"

// Типы конфликтов между версиями одной сущности с разных узлов
const (
	ConflictUpdateUpdate = "update_update" // обе стороны изменили сущность
	ConflictUpdateDelete = "update_delete" // локально изменена, удаленно удалена
	ConflictDeleteUpdate = "delete_update" // локально удалена, удаленно изменена
)

// Стратегии разрешения конфликтов
const (
	StrategyLastWriteWins = "last_write_wins" // побеждает версия с большим (timestamp, node_id)
	StrategyLocalWins     = "local_wins"      // форсированно побеждает локальная версия (recovery)
	StrategyRemoteWins    = "remote_wins"     // форсированно побеждает удаленная версия (recovery)
	StrategyManual        = "manual"          // автоматическое разрешение невозможно, нужен человек
)

// ConflictRecord представляет запись журнала конфликтов: зафиксированное
// расхождение состояния одной сущности между двумя узлами и примененное решение.
type ConflictRecord struct {
	DetectedAt         time.Time `json:"detected_at"`         // когда конфликт обнаружен
	ResolvedAt         time.Time `json:"resolved_at"`         // когда применена стратегия
	ID                 string    `json:"id"`                  // UUID записи
	EntityType         string    `json:"entity_type"`         // тип сущности
	EntityID           string    `json:"entity_id"`           // идентификатор сущности
	ConflictType       string    `json:"conflict_type"`       // update_update | update_delete | delete_update
	ResolutionStrategy string    `json:"resolution_strategy"` // last_write_wins | local_wins | remote_wins | manual
	WinnerNodeID       string    `json:"winner_node_id"`      // узел, чья версия применена
	LocalNodeID        string    `json:"local_node_id"`       // узел локальной версии
	RemoteNodeID       string    `json:"remote_node_id"`      // узел удаленной версии
	LocalTimestamp     int64     `json:"local_timestamp"`     // Lamport timestamp локальной версии
	RemoteTimestamp    int64     `json:"remote_timestamp"`    // Lamport timestamp удаленной версии
	AutoResolved       bool      `json:"auto_resolved"`       // true = разрешен без участия человека
	HumanReviewed      bool      `json:"human_reviewed"`      // true = просмотрен оператором
}

// ClassifyConflict определяет тип конфликта по операциям двух версий
func ClassifyConflict(local, remote *SyncEvent) string {
	switch {
	case local.Deleted && !remote.Deleted:
		return ConflictDeleteUpdate
	case !local.Deleted && remote.Deleted:
		return ConflictUpdateDelete
	default:
		return ConflictUpdateUpdate
	}
}
