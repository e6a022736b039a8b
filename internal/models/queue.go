package models

import "time"

// QueuedMutation представляет мутацию в durable offline-очереди.
// Попадает в очередь при записи без связи с peer-узлами, извлекается
// при восстановлении соединения. Порядок выдачи: приоритет по убыванию,
// внутри приоритета - FIFO.
type QueuedMutation struct {
	EnqueuedAt    time.Time `json:"enqueued_at"`     // время постановки в очередь
	LastAttemptAt time.Time `json:"last_attempt_at"` // время последней попытки доставки
	ID            string    `json:"id"`              // UUID мутации
	EntityType    string    `json:"entity_type"`     // тип сущности
	EntityID      string    `json:"entity_id"`       // идентификатор сущности
	Operation     string    `json:"operation"`       // create | update | delete
	Payload       []byte    `json:"payload"`         // сериализованное состояние сущности
	Seq           uint64    `json:"seq"`             // порядковый номер внутри приоритета
	Priority      int       `json:"priority"`        // больший приоритет доставляется раньше
	AttemptCount  int       `json:"attempt_count"`   // количество попыток доставки
	IsProcessed   bool      `json:"is_processed"`    // true = доставлена или брошена
}
