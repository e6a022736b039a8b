package api

import "time"

// SyncEvent представляет одно захваченное изменение (CDC запись) для обмена между узлами
type SyncEvent struct {
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	ID         string    `json:"id"`
	EntityType string    `json:"entity_type"` // тип сущности: "product", "customer", "payroll_run", ...
	EntityID   string    `json:"entity_id"`   // идентификатор сущности внутри типа
	Operation  string    `json:"operation"`   // create | update | delete
	NodeID     string    `json:"node_id"`     // узел, породивший эту версию
	Payload    []byte    `json:"payload"`     // сериализованное состояние сущности (opaque JSON)
	Timestamp  int64     `json:"timestamp"`   // Lamport timestamp
	Version    int64     `json:"version"`     // монотонная версия сущности на узле-источнике
	Deleted    bool      `json:"deleted"`     // soft delete сущности
}

// SyncRequest представляет запрос на обмен событиями от узла-инициатора
type SyncRequest struct {
	SessionID string      `json:"session_id,omitempty"` // идентификатор sync-сессии инициатора
	Events    []SyncEvent `json:"events"`               // локальные события для применения на peer
	Since     int64       `json:"since"`                // watermark: вернуть события новее этого timestamp
}

// SyncResponse представляет ответ peer-узла на обмен событиями
type SyncResponse struct {
	Events    []SyncEvent `json:"events"`    // события peer-узла новее Since
	Watermark int64       `json:"watermark"` // текущий Lamport clock peer-узла
	Conflicts int         `json:"conflicts"` // количество конфликтов, обнаруженных при применении
}

// CaptureRequest представляет локальную мутацию для постановки в offline-очередь
type CaptureRequest struct {
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	Operation  string `json:"operation"` // create | update | delete
	Payload    []byte `json:"payload"`   // сериализованное состояние сущности (opaque JSON)
	Priority   int    `json:"priority"`  // больший приоритет доставляется раньше
}

// CaptureResponse представляет ответ на постановку мутации в очередь
type CaptureResponse struct {
	ID         string `json:"id"`  // UUID мутации
	Seq        uint64 `json:"seq"` // порядковый номер внутри приоритета
	EnqueuedAt int64  `json:"enqueued_at"`
}
