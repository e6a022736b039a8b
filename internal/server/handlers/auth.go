package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/syncmesh/internal/models"
	"github.com/iudanet/syncmesh/internal/server/storage"
	"github.com/iudanet/syncmesh/internal/validation"
	"github.com/iudanet/syncmesh/pkg/api"
)

// AuthHandler обрабатывает запросы регистрации и аутентификации узлов
type AuthHandler struct {
	logger       *slog.Logger
	nodeStorage  storage.NodeStorage
	tokenStorage storage.TokenStorage
	jwtConfig    JWTConfig
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(logger *slog.Logger, nodeStorage storage.NodeStorage, tokenStorage storage.TokenStorage, jwtConfig JWTConfig) *AuthHandler {
	return &AuthHandler{
		logger:       logger,
		nodeStorage:  nodeStorage,
		tokenStorage: tokenStorage,
		jwtConfig:    jwtConfig,
	}
}

// Register обрабатывает POST /api/v1/auth/register
// Регистрация нового узла в mesh
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode register request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := validation.ValidateNodeName(req.NodeName); err != nil {
		h.logger.WarnContext(ctx, "invalid node name", slog.String("node_name", req.NodeName), slog.Any("error", err))
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.AuthKeyHash == "" {
		sendError(h.logger, w, "auth_key_hash is required", http.StatusBadRequest)
		return
	}
	if req.PublicSalt == "" {
		sendError(h.logger, w, "public_salt is required", http.StatusBadRequest)
		return
	}

	nodeID := uuid.New().String()
	now := time.Now()

	node := &models.SyncNode{
		NodeID:       nodeID,
		Name:         req.NodeName,
		Address:      req.Address,
		AuthKeyHash:  req.AuthKeyHash, // SHA256 хеш auth_key от узла
		PublicSalt:   req.PublicSalt,
		Capabilities: req.Capabilities,
		IsActive:     true,
		LastSeen:     now,
		RegisteredAt: now,
		UpdatedAt:    now,
	}

	if err := h.nodeStorage.CreateNode(ctx, node); err != nil {
		if errors.Is(err, storage.ErrNodeAlreadyExists) {
			h.logger.WarnContext(ctx, "node already exists", slog.String("node_name", req.NodeName))
			sendError(h.logger, w, "node name already taken", http.StatusConflict)
			return
		}
		h.logger.ErrorContext(ctx, "failed to create node", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "node registered successfully",
		slog.String("node_name", req.NodeName),
		slog.String("node_id", nodeID))

	resp := api.RegisterResponse{
		NodeID:  nodeID,
		Message: "Node registered successfully",
	}

	sendJSON(h.logger, w, resp, http.StatusCreated)
}

// GetSalt обрабатывает GET /api/v1/auth/salt/{node_name}
// Получение public_salt узла для деривации ключей
func (h *AuthHandler) GetSalt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	nodeName := r.PathValue("node_name")
	if nodeName == "" {
		sendError(h.logger, w, "node_name is required", http.StatusBadRequest)
		return
	}

	if err := validation.ValidateNodeName(nodeName); err != nil {
		h.logger.WarnContext(ctx, "invalid node name", slog.String("node_name", nodeName), slog.Any("error", err))
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	node, err := h.nodeStorage.GetNodeByName(ctx, nodeName)
	if err != nil {
		if errors.Is(err, storage.ErrNodeNotFound) {
			h.logger.WarnContext(ctx, "node not found", slog.String("node_name", nodeName))
			sendError(h.logger, w, "node not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get node", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp := api.SaltResponse{
		PublicSalt: node.PublicSalt,
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// Login обрабатывает POST /api/v1/auth/login
// Аутентификация узла по детерминированному auth_key_hash
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode login request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := validation.ValidateNodeName(req.NodeName); err != nil {
		h.logger.WarnContext(ctx, "invalid node name", slog.String("node_name", req.NodeName), slog.Any("error", err))
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.AuthKeyHash == "" {
		sendError(h.logger, w, "auth_key_hash is required", http.StatusBadRequest)
		return
	}

	node, err := h.nodeStorage.GetNodeByName(ctx, req.NodeName)
	if err != nil {
		if errors.Is(err, storage.ErrNodeNotFound) {
			h.logger.WarnContext(ctx, "login failed: node not found", slog.String("node_name", req.NodeName))
			sendError(h.logger, w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get node", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	// Узел отправляет SHA256 хеш от auth_key (детерминированный),
	// сервер сравнивает с сохраненным хешем
	if node.AuthKeyHash != req.AuthKeyHash {
		h.logger.WarnContext(ctx, "login failed: invalid auth key", slog.String("node_name", req.NodeName))
		sendError(h.logger, w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	if !node.IsActive {
		h.logger.WarnContext(ctx, "login failed: node deactivated", slog.String("node_name", req.NodeName))
		sendError(h.logger, w, "node is deactivated", http.StatusForbidden)
		return
	}

	accessToken, expiresIn, err := GenerateAccessToken(h.jwtConfig, node.NodeID, node.Name)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate access token", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	refreshToken, expiresAt, err := GenerateRefreshToken(h.jwtConfig)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate refresh token", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	token := &models.RefreshToken{
		Token:     refreshToken,
		NodeID:    node.NodeID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}

	if err := h.tokenStorage.SaveRefreshToken(ctx, token); err != nil {
		h.logger.ErrorContext(ctx, "failed to save refresh token", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	// Успешный login засчитывается как heartbeat
	if err := h.nodeStorage.UpdateHeartbeat(ctx, node.NodeID, time.Now(), "", nil); err != nil {
		h.logger.WarnContext(ctx, "failed to update heartbeat on login", slog.Any("error", err))
	}

	h.logger.InfoContext(ctx, "node logged in successfully",
		slog.String("node_name", req.NodeName),
		slog.String("node_id", node.NodeID))

	resp := api.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// Refresh обрабатывает POST /api/v1/auth/refresh
// Обновление access token с помощью refresh token
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	refreshToken, ok := bearerToken(r)
	if !ok {
		sendError(h.logger, w, "Authorization header with Bearer token is required", http.StatusUnauthorized)
		return
	}

	storedToken, err := h.tokenStorage.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			h.logger.WarnContext(ctx, "refresh token not found")
			sendError(h.logger, w, "invalid refresh token", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get refresh token", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	if time.Now().After(storedToken.ExpiresAt) {
		h.logger.WarnContext(ctx, "refresh token expired", slog.String("node_id", storedToken.NodeID))
		sendError(h.logger, w, "refresh token expired", http.StatusUnauthorized)
		return
	}

	node, err := h.nodeStorage.GetNodeByID(ctx, storedToken.NodeID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get node", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	newAccessToken, expiresIn, err := GenerateAccessToken(h.jwtConfig, node.NodeID, node.Name)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate access token", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	newRefreshToken, newExpiresAt, err := GenerateRefreshToken(h.jwtConfig)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate refresh token", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	// Rotation: старый refresh token отзывается
	if err := h.tokenStorage.DeleteRefreshToken(ctx, refreshToken); err != nil {
		h.logger.WarnContext(ctx, "failed to delete old refresh token", slog.Any("error", err))
	}

	newToken := &models.RefreshToken{
		Token:     newRefreshToken,
		NodeID:    node.NodeID,
		ExpiresAt: newExpiresAt,
		CreatedAt: time.Now(),
	}

	if err := h.tokenStorage.SaveRefreshToken(ctx, newToken); err != nil {
		h.logger.ErrorContext(ctx, "failed to save refresh token", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "tokens refreshed successfully", slog.String("node_id", node.NodeID))

	resp := api.TokenResponse{
		AccessToken:  newAccessToken,
		RefreshToken: newRefreshToken,
		ExpiresIn:    expiresIn,
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// Logout обрабатывает POST /api/v1/auth/logout
// Отзыв всех refresh tokens узла
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accessToken, ok := bearerToken(r)
	if !ok {
		sendError(h.logger, w, "Authorization header with Bearer token is required", http.StatusUnauthorized)
		return
	}

	claims, err := ValidateAccessToken(h.jwtConfig, accessToken)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid access token", slog.Any("error", err))
		sendError(h.logger, w, "invalid or expired access token", http.StatusUnauthorized)
		return
	}

	deletedCount, err := h.tokenStorage.DeleteNodeTokens(ctx, claims.NodeID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to delete node tokens", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "node logged out successfully",
		slog.String("node_id", claims.NodeID),
		slog.Int("tokens_deleted", deletedCount))

	w.WriteHeader(http.StatusNoContent)
}

// bearerToken извлекает токен из заголовка Authorization
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")

	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", false
	}

	token := authHeader[len(bearerPrefix):]
	if token == "" {
		return "", false
	}

	return token, true
}
