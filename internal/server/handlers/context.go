package handlers

import "context"

// contextKey тип для ключей контекста
type contextKey string

const (
	// NodeIDKey ключ для хранения node_id в контексте
	NodeIDKey contextKey = "node_id"
	// NodeNameKey ключ для хранения node_name в контексте
	NodeNameKey contextKey = "node_name"
)

// GetNodeID извлекает node_id из контекста запроса
func GetNodeID(ctx context.Context) (string, bool) {
	nodeID, ok := ctx.Value(NodeIDKey).(string)
	return nodeID, ok
}

// GetNodeName извлекает node_name из контекста запроса
func GetNodeName(ctx context.Context) (string, bool) {
	nodeName, ok := ctx.Value(NodeNameKey).(string)
	return nodeName, ok
}
