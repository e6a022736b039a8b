package models

import "time"

// SyncNode представляет peer-узел в реестре mesh.
// Liveness обновляется периодическими heartbeat; узлы со старым LastSeen
// исключаются из sync-сессий.
type SyncNode struct {
	LastSeen     time.Time `json:"last_seen"`     // последний heartbeat
	RegisteredAt time.Time `json:"registered_at"` // время регистрации
	UpdatedAt    time.Time `json:"updated_at"`    // время последнего изменения
	NodeID       string    `json:"node_id"`       // UUID узла
	Name         string    `json:"name"`          // уникальное имя узла
	Address      string    `json:"address"`       // адрес для peer-запросов
	AuthKeyHash  string    `json:"auth_key_hash"` // SHA256 хеш auth_key
	PublicSalt   string    `json:"public_salt"`   // base64 encoded salt (32 bytes)
	Capabilities []string  `json:"capabilities"`  // возможности узла
	IsActive     bool      `json:"is_active"`     // false = узел выведен из mesh
}

// RefreshToken представляет refresh token узла
type RefreshToken struct {
	ExpiresAt time.Time `json:"expires_at"` // время истечения
	CreatedAt time.Time `json:"created_at"` // время создания
	Token     string    `json:"token"`      // значение токена
	NodeID    string    `json:"node_id"`    // ID узла
}
