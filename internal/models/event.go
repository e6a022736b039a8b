package models

import "time"

// SyncEvent представляет одно захваченное изменение бизнес-сущности (CDC запись).
// События создаются при локальной записи, распространяются на peer-узлы
// и помечаются processed после подтверждения доставки.
type SyncEvent struct {
	CreatedAt  time.Time `json:"created_at"`  // время создания события
	UpdatedAt  time.Time `json:"updated_at"`  // время последнего изменения записи
	ID         string    `json:"id"`          // UUID события
	EntityType string    `json:"entity_type"` // тип сущности: "product", "customer", "payroll_run", ...
	EntityID   string    `json:"entity_id"`   // идентификатор сущности внутри типа
	Operation  string    `json:"operation"`   // операция: create | update | delete
	NodeID     string    `json:"node_id"`     // узел, породивший эту версию
	Payload    []byte    `json:"payload"`     // сериализованное состояние сущности (opaque JSON)
	Timestamp  int64     `json:"timestamp"`   // Lamport timestamp для упорядочивания
	Version    int64     `json:"version"`     // монотонная версия сущности на узле-источнике
	RetryCount int       `json:"retry_count"` // количество неудачных попыток доставки
	Processed  bool      `json:"processed"`   // true = доставка подтверждена
	Abandoned  bool      `json:"abandoned"`   // true = брошено после превышения retry ceiling
	Deleted    bool      `json:"deleted"`     // soft delete сущности
}

// Операции, фиксируемые в журнале событий
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// EntityKey возвращает ключ сущности, по которому применяется LWW.
// Две версии одной сущности с разных узлов имеют одинаковый EntityKey.
func (e *SyncEvent) EntityKey() string {
	return e.EntityType + "/" + e.EntityID
}

// IsNewerThan сравнивает две версии одной сущности по правилу LWW:
// 1. Больший Timestamp выигрывает
// 2. При равных Timestamp выигрывает лексикографически больший NodeID
// Возвращает true, если текущее событие новее other.
func (e *SyncEvent) IsNewerThan(other *SyncEvent) bool {
	if e.Timestamp > other.Timestamp {
		return true
	}
	if e.Timestamp < other.Timestamp {
		return false
	}
	// Timestamps равны - сравниваем NodeID для детерминизма
	return e.NodeID > other.NodeID
}

// Concurrent возвращает true, если обе версии относятся к одной сущности,
// но порождены разными узлами. Такая пара фиксируется в журнале конфликтов.
func (e *SyncEvent) Concurrent(other *SyncEvent) bool {
	return e.EntityKey() == other.EntityKey() && e.NodeID != other.NodeID
}

// Clone создает глубокую копию события
func (e *SyncEvent) Clone() *SyncEvent {
	payload := make([]byte, len(e.Payload))
	copy(payload, e.Payload)

	clone := *e
	clone.Payload = payload
	return &clone
}
