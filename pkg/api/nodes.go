package api

import "time"

// HeartbeatRequest представляет периодическое обновление liveness узла
type HeartbeatRequest struct {
	Address      string   `json:"address,omitempty"`      // актуальный адрес узла
	Capabilities []string `json:"capabilities,omitempty"` // актуальные возможности узла
}

// HeartbeatResponse представляет ответ на heartbeat
type HeartbeatResponse struct {
	LastSeen time.Time `json:"last_seen"` // зафиксированное время liveness
}

// NodeInfo представляет один узел в реестре
type NodeInfo struct {
	LastSeen     time.Time `json:"last_seen"`
	RegisteredAt time.Time `json:"registered_at"`
	NodeID       string    `json:"node_id"`
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	Capabilities []string  `json:"capabilities"`
	IsActive     bool      `json:"is_active"`
}

// NodesResponse представляет список узлов mesh
type NodesResponse struct {
	Nodes []NodeInfo `json:"nodes"`
}
