package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	clientapi "github.com/iudanet/syncmesh/internal/client/api"
	clientstorage "github.com/iudanet/syncmesh/internal/client/storage"
	"github.com/iudanet/syncmesh/internal/crdt"
	"github.com/iudanet/syncmesh/internal/models"
	"github.com/iudanet/syncmesh/internal/server/storage"
	"github.com/iudanet/syncmesh/pkg/api"
)

//go:generate moq -out service_mock.go . Service

const (
	// DefaultBatchSize ограничивает количество событий в одном обмене
	DefaultBatchSize = 100

	// DefaultMaxAttempts - retry ceiling доставки, после которого
	// мутация переносится в abandoned
	DefaultMaxAttempts = 5

	// drainRetries - количество повторов записи мутации в леджер
	drainRetries = 3
)

// ErrInvalidMutation помечает мутацию, отклоненную валидацией Capture
var ErrInvalidMutation = errors.New("invalid mutation")

// SyncResult описывает итог обмена с одним peer-узлом
type SyncResult struct {
	PeerID    string `json:"peer_id"`
	Pushed    int    `json:"pushed"`    // отправлено событий
	Pulled    int    `json:"pulled"`    // применено событий peer
	Conflicts int    `json:"conflicts"` // обнаружено конфликтов с обеих сторон
	Resolved  int    `json:"resolved"`  // разрешено автоматически на этой стороне
	Watermark int64  `json:"watermark"` // новый cursor для peer
}

// NodeStatus описывает текущее состояние sync-подсистемы узла
type NodeStatus struct {
	LastSyncAt         time.Time        `json:"last_sync_at"`
	NodeID             string           `json:"node_id"`
	PeerCursors        map[string]int64 `json:"peer_cursors"`
	ClockCounter       int64            `json:"clock_counter"`
	QueueDepth         int              `json:"queue_depth"`
	AbandonedMutations int              `json:"abandoned_mutations"`
}

// Service определяет интерфейс sync-движка узла: захват локальных мутаций,
// перенос их в леджер и push-pull обмен с peer-узлами
type Service interface {
	// Capture ставит локальную мутацию в durable-очередь
	Capture(ctx context.Context, entityType, entityID, operation string, payload []byte, priority int) (*models.QueuedMutation, error)

	// DrainQueue переносит мутации из очереди в леджер событий.
	// Возвращает количество перенесенных мутаций.
	DrainQueue(ctx context.Context) (int, error)

	// SyncPeer выполняет обмен событиями с одним peer-узлом
	SyncPeer(ctx context.Context, peerID string) (*SyncResult, error)

	// SyncAll открывает сессию и обменивается со всеми активными peer-узлами
	SyncAll(ctx context.Context) ([]*SyncResult, error)

	// Recover выполняет ресинхронизацию после partition.
	// Возвращает идентификатор открытой recovery-сессии.
	Recover(ctx context.Context, mode string, since int64, peerID, strategy string) (string, error)

	// Status возвращает состояние sync-подсистемы узла
	Status(ctx context.Context) (*NodeStatus, error)
}

// Config содержит зависимости sync-движка
type Config struct {
	Logger        *slog.Logger
	Clock         *crdt.LamportClock
	Resolver      *Resolver
	Events        storage.EventStorage
	Sessions      storage.SessionStorage
	Conflicts     storage.ConflictStorage
	Nodes         storage.NodeStorage
	Queue         clientstorage.QueueStorage
	Cursors       clientstorage.CursorStorage
	Metadata      clientstorage.MetadataStorage
	Auth          clientstorage.AuthStorage
	NewPeerClient func(baseURL string) clientapi.ClientAPI
	BatchSize     int
	MaxAttempts   int
}

type service struct {
	logger        *slog.Logger
	clock         *crdt.LamportClock
	resolver      *Resolver
	events        storage.EventStorage
	sessions      storage.SessionStorage
	conflicts     storage.ConflictStorage
	nodes         storage.NodeStorage
	queue         clientstorage.QueueStorage
	cursors       clientstorage.CursorStorage
	metadata      clientstorage.MetadataStorage
	auth          clientstorage.AuthStorage
	newPeerClient func(baseURL string) clientapi.ClientAPI
	batchSize     int
	maxAttempts   int
}

// NewService создает sync-движок узла
func NewService(cfg Config) Service {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}

	return &service{
		logger:        cfg.Logger,
		clock:         cfg.Clock,
		resolver:      cfg.Resolver,
		events:        cfg.Events,
		sessions:      cfg.Sessions,
		conflicts:     cfg.Conflicts,
		nodes:         cfg.Nodes,
		queue:         cfg.Queue,
		cursors:       cfg.Cursors,
		metadata:      cfg.Metadata,
		auth:          cfg.Auth,
		newPeerClient: cfg.NewPeerClient,
		batchSize:     cfg.BatchSize,
		maxAttempts:   cfg.MaxAttempts,
	}
}

// Capture ставит мутацию в durable-очередь. Мутация переживает перезапуск
// узла и переносится в леджер при ближайшем drain.
func (s *service) Capture(ctx context.Context, entityType, entityID, operation string, payload []byte, priority int) (*models.QueuedMutation, error) {
	if entityType == "" || entityID == "" {
		return nil, fmt.Errorf("%w: entity type and id are required", ErrInvalidMutation)
	}

	switch operation {
	case models.OpCreate, models.OpUpdate, models.OpDelete:
	default:
		return nil, fmt.Errorf("%w: unknown operation %s", ErrInvalidMutation, operation)
	}

	mutation := &models.QueuedMutation{
		ID:         uuid.New().String(),
		EntityType: entityType,
		EntityID:   entityID,
		Operation:  operation,
		Payload:    payload,
		Priority:   priority,
		EnqueuedAt: time.Now(),
	}

	if err := s.queue.Enqueue(ctx, mutation); err != nil {
		return nil, fmt.Errorf("failed to enqueue mutation: %w", err)
	}

	s.logger.DebugContext(ctx, "mutation captured",
		slog.String("entity", entityType+"/"+entityID),
		slog.String("operation", operation),
		slog.Uint64("seq", mutation.Seq))

	return mutation, nil
}

// DrainQueue переносит мутации из очереди в леджер событий.
// Timestamp назначается в момент переноса: очередь хранит мутации в порядке
// доставки, поэтому Lamport-порядок внутри узла сохраняется.
func (s *service) DrainQueue(ctx context.Context) (int, error) {
	batch, err := s.queue.NextBatch(ctx, s.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to read queue: %w", err)
	}
	if len(batch) == 0 {
		return 0, nil
	}

	drained := make([]uint64, 0, len(batch))
	for _, mutation := range batch {
		event := s.buildEvent(ctx, mutation)

		if err := s.saveWithRetry(ctx, event); err != nil {
			if abandonErr := s.failMutation(ctx, mutation, err); abandonErr != nil {
				return len(drained), abandonErr
			}
			continue
		}

		drained = append(drained, mutation.Seq)
	}

	if err := s.queue.MarkProcessed(ctx, drained); err != nil {
		return 0, fmt.Errorf("failed to mark mutations processed: %w", err)
	}

	if err := s.metadata.SaveClockState(ctx, s.clock.Current()); err != nil {
		return 0, fmt.Errorf("failed to persist clock state: %w", err)
	}

	s.logger.InfoContext(ctx, "queue drained",
		slog.Int("drained", len(drained)),
		slog.Int("batch", len(batch)))

	return len(drained), nil
}

// buildEvent строит событие леджера из захваченной мутации
func (s *service) buildEvent(ctx context.Context, mutation *models.QueuedMutation) *models.SyncEvent {
	now := time.Now()

	version := int64(1)
	if latest, err := s.events.LatestForEntity(ctx, mutation.EntityType, mutation.EntityID); err == nil {
		version = latest.Version + 1
	}

	return &models.SyncEvent{
		ID:         mutation.ID,
		EntityType: mutation.EntityType,
		EntityID:   mutation.EntityID,
		Operation:  mutation.Operation,
		NodeID:     s.clock.NodeID(),
		Payload:    mutation.Payload,
		Timestamp:  s.clock.Tick(),
		Version:    version,
		Deleted:    mutation.Operation == models.OpDelete,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// saveWithRetry записывает событие в леджер с fibonacci backoff
func (s *service) saveWithRetry(ctx context.Context, event *models.SyncEvent) error {
	backoff := retry.WithMaxRetries(drainRetries, retry.NewFibonacci(50*time.Millisecond))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if _, err := s.events.SaveEvent(ctx, event); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

// failMutation учитывает неудачную попытку доставки; при превышении
// retry ceiling мутация переносится в abandoned
func (s *service) failMutation(ctx context.Context, mutation *models.QueuedMutation, cause error) error {
	attempts, err := s.queue.Touch(ctx, mutation.Seq)
	if err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}

	if attempts < s.maxAttempts {
		s.logger.WarnContext(ctx, "mutation drain failed",
			slog.Uint64("seq", mutation.Seq),
			slog.Int("attempts", attempts),
			slog.String("error", cause.Error()))
		return nil
	}

	if err := s.queue.Abandon(ctx, mutation.Seq); err != nil {
		return fmt.Errorf("failed to abandon mutation: %w", err)
	}

	s.logger.ErrorContext(ctx, "mutation abandoned after retry ceiling",
		slog.Uint64("seq", mutation.Seq),
		slog.String("entity", mutation.EntityType+"/"+mutation.EntityID),
		slog.Int("attempts", attempts))

	return nil
}

// SyncPeer выполняет push-pull обмен с одним peer-узлом:
// очередь переносится в леджер, pending события отправляются peer,
// полученные события применяются через resolver, cursor сдвигается.
func (s *service) SyncPeer(ctx context.Context, peerID string) (*SyncResult, error) {
	auth, err := s.auth.GetAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("node is not authenticated: %w", err)
	}

	peer, err := s.nodes.GetNodeByID(ctx, peerID)
	if err != nil {
		return nil, fmt.Errorf("unknown peer: %w", err)
	}
	if !peer.IsActive || peer.Address == "" {
		return nil, fmt.Errorf("peer %s is not reachable", peer.Name)
	}

	if _, err := s.DrainQueue(ctx); err != nil {
		return nil, err
	}

	pending, err := s.events.PendingEvents(ctx, s.batchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending events: %w", err)
	}

	since, err := s.cursors.GetCursor(ctx, peerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cursor: %w", err)
	}

	client := s.newPeerClient(peer.Address)
	resp, err := client.Sync(ctx, auth.AccessToken, api.SyncRequest{
		Events: eventsToWire(pending),
		Since:  since,
	})
	if err != nil {
		if retryErr := s.recordPushFailure(ctx, pending); retryErr != nil {
			return nil, retryErr
		}
		return nil, fmt.Errorf("sync with %s failed: %w", peer.Name, err)
	}

	if err := s.acknowledgePush(ctx, pending); err != nil {
		return nil, err
	}

	applied, detected, resolved, err := s.resolver.ApplyBatch(ctx, eventsFromWire(resp.Events))
	if err != nil {
		return nil, fmt.Errorf("failed to apply peer events: %w", err)
	}

	if err := s.cursors.SaveCursor(ctx, peerID, resp.Watermark); err != nil {
		return nil, fmt.Errorf("failed to save cursor: %w", err)
	}
	if err := s.metadata.SaveLastSyncTimestamp(ctx, time.Now().Unix()); err != nil {
		return nil, fmt.Errorf("failed to save sync timestamp: %w", err)
	}
	if err := s.metadata.SaveClockState(ctx, s.clock.Current()); err != nil {
		return nil, fmt.Errorf("failed to persist clock state: %w", err)
	}

	result := &SyncResult{
		PeerID:    peerID,
		Pushed:    len(pending),
		Pulled:    applied,
		Conflicts: detected + resp.Conflicts,
		Resolved:  resolved,
		Watermark: resp.Watermark,
	}

	s.logger.InfoContext(ctx, "peer sync completed",
		slog.String("peer", peer.Name),
		slog.Int("pushed", result.Pushed),
		slog.Int("pulled", result.Pulled),
		slog.Int("conflicts", result.Conflicts),
		slog.Int64("watermark", result.Watermark))

	return result, nil
}

// recordPushFailure учитывает неудачную доставку pending событий
func (s *service) recordPushFailure(ctx context.Context, pending []*models.SyncEvent) error {
	for _, event := range pending {
		if _, err := s.events.IncrementRetry(ctx, event.ID); err != nil {
			return fmt.Errorf("failed to increment retry: %w", err)
		}
	}

	abandoned, err := s.events.AbandonExceeded(ctx, s.maxAttempts)
	if err != nil {
		return fmt.Errorf("failed to abandon events: %w", err)
	}
	if abandoned > 0 {
		s.logger.WarnContext(ctx, "events abandoned after retry ceiling",
			slog.Int("abandoned", abandoned))
	}

	return nil
}

func (s *service) acknowledgePush(ctx context.Context, pending []*models.SyncEvent) error {
	if len(pending) == 0 {
		return nil
	}

	ids := make([]string, len(pending))
	for i, event := range pending {
		ids[i] = event.ID
	}

	if err := s.events.MarkProcessed(ctx, ids); err != nil {
		return fmt.Errorf("failed to mark events processed: %w", err)
	}

	return nil
}

// SyncAll открывает sync-сессию и обменивается со всеми активными peer-узлами.
// Сессия закрывается со статусом failed, если хотя бы один обмен не удался.
func (s *service) SyncAll(ctx context.Context) ([]*SyncResult, error) {
	peers, err := s.activePeers(ctx)
	if err != nil {
		return nil, err
	}
	if len(peers) == 0 {
		return nil, nil
	}

	return s.runSession(ctx, peers)
}

// runSession выполняет обмен с перечисленными peer-узлами внутри одной сессии
func (s *service) runSession(ctx context.Context, peerIDs []string) ([]*SyncResult, error) {
	session := &models.SyncSession{
		ID:               uuid.New().String(),
		InitiatorNodeID:  s.clock.NodeID(),
		Status:           models.SessionActive,
		ParticipantNodes: peerIDs,
		StartedAt:        time.Now(),
	}

	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}

	var (
		results     []*SyncResult
		transferred int
		detected    int
		resolved    int
		firstErr    error
	)

	for _, peerID := range peerIDs {
		result, err := s.SyncPeer(ctx, peerID)
		if err != nil {
			s.logger.ErrorContext(ctx, "peer sync failed",
				slog.String("peer_id", peerID),
				slog.String("error", err.Error()))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		results = append(results, result)
		transferred += result.Pushed + result.Pulled
		detected += result.Conflicts
		resolved += result.Resolved
	}

	status := models.SessionCompleted
	if firstErr != nil {
		status = models.SessionFailed
	}

	if err := s.sessions.CloseSession(ctx, session.ID, status, transferred, detected, resolved); err != nil {
		return results, fmt.Errorf("failed to close session: %w", err)
	}

	if firstErr != nil {
		return results, firstErr
	}
	return results, nil
}

// activePeers возвращает идентификаторы активных узлов mesh, кроме своего
func (s *service) activePeers(ctx context.Context) ([]string, error) {
	nodes, err := s.nodes.ListNodes(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}

	peers := make([]string, 0, len(nodes))
	for _, node := range nodes {
		if node.NodeID == s.clock.NodeID() {
			continue
		}
		peers = append(peers, node.NodeID)
	}

	return peers, nil
}

// Recover выполняет ресинхронизацию после partition: cursor сбрасывается
// (mode=full) или отматывается на указанный watermark (mode=since), после
// чего запускается обмен. Forced strategy закрывает конфликты, ожидающие
// ручного разбора.
func (s *service) Recover(ctx context.Context, mode string, since int64, peerID, strategy string) (string, error) {
	targets, err := s.recoveryTargets(ctx, peerID)
	if err != nil {
		return "", err
	}
	if len(targets) == 0 {
		return "", fmt.Errorf("no peers to recover with")
	}

	switch mode {
	case api.RecoveryModeFull:
		if peerID == "" {
			if err := s.cursors.ResetCursors(ctx); err != nil {
				return "", fmt.Errorf("failed to reset cursors: %w", err)
			}
		} else {
			if err := s.cursors.SaveCursor(ctx, peerID, 0); err != nil {
				return "", fmt.Errorf("failed to reset cursor: %w", err)
			}
		}
	case api.RecoveryModeSince:
		for _, target := range targets {
			if err := s.cursors.SaveCursor(ctx, target, since); err != nil {
				return "", fmt.Errorf("failed to rewind cursor: %w", err)
			}
		}
	default:
		return "", fmt.Errorf("unknown recovery mode: %s", mode)
	}

	session := &models.SyncSession{
		ID:               uuid.New().String(),
		InitiatorNodeID:  s.clock.NodeID(),
		Status:           models.SessionActive,
		ParticipantNodes: targets,
		StartedAt:        time.Now(),
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return "", fmt.Errorf("failed to open recovery session: %w", err)
	}

	var (
		transferred int
		detected    int
		resolved    int
		firstErr    error
	)

	for _, target := range targets {
		result, err := s.SyncPeer(ctx, target)
		if err != nil {
			s.logger.ErrorContext(ctx, "recovery sync failed",
				slog.String("peer_id", target),
				slog.String("error", err.Error()))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		transferred += result.Pushed + result.Pulled
		detected += result.Conflicts
		resolved += result.Resolved
	}

	if strategy != "" && firstErr == nil {
		forced, err := s.forceResolvePending(ctx, strategy)
		if err != nil {
			firstErr = err
		}
		resolved += forced
	}

	status := models.SessionCompleted
	if firstErr != nil {
		status = models.SessionFailed
	}

	if err := s.sessions.CloseSession(ctx, session.ID, status, transferred, detected, resolved); err != nil {
		return session.ID, fmt.Errorf("failed to close recovery session: %w", err)
	}

	s.logger.InfoContext(ctx, "recovery session finished",
		slog.String("session_id", session.ID),
		slog.String("mode", mode),
		slog.String("status", status),
		slog.Int("transferred", transferred),
		slog.Int("conflicts", detected))

	return session.ID, firstErr
}

// recoveryTargets возвращает peer-узлы, участвующие в recovery
func (s *service) recoveryTargets(ctx context.Context, peerID string) ([]string, error) {
	if peerID == "" {
		return s.activePeers(ctx)
	}

	if _, err := s.nodes.GetNodeByID(ctx, peerID); err != nil {
		return nil, fmt.Errorf("unknown peer: %w", err)
	}
	return []string{peerID}, nil
}

// forceResolvePending закрывает конфликты, ожидающие ручного разбора,
// выбранной стратегией. Возвращает количество закрытых конфликтов.
func (s *service) forceResolvePending(ctx context.Context, strategy string) (int, error) {
	pending, err := s.conflicts.ListConflicts(ctx, true, s.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending conflicts: %w", err)
	}

	forced := 0
	for _, record := range pending {
		if err := s.resolver.ForceResolve(ctx, record.ID, strategy); err != nil {
			if errors.Is(err, storage.ErrConflictNotFound) {
				continue
			}
			return forced, err
		}
		forced++
	}

	return forced, nil
}

// Status возвращает состояние sync-подсистемы узла
func (s *service) Status(ctx context.Context) (*NodeStatus, error) {
	depth, err := s.queue.Depth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read queue depth: %w", err)
	}

	abandoned, err := s.queue.AbandonedCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read abandoned count: %w", err)
	}

	cursors, err := s.cursors.ListCursors(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list cursors: %w", err)
	}

	lastSync, err := s.metadata.GetLastSyncTimestamp(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read last sync timestamp: %w", err)
	}

	status := &NodeStatus{
		NodeID:             s.clock.NodeID(),
		ClockCounter:       s.clock.Current(),
		QueueDepth:         depth,
		AbandonedMutations: abandoned,
		PeerCursors:        cursors,
	}
	if lastSync > 0 {
		status.LastSyncAt = time.Unix(lastSync, 0)
	}

	return status, nil
}

// eventsToWire конвертирует события леджера в wire-формат
func eventsToWire(events []*models.SyncEvent) []api.SyncEvent {
	wire := make([]api.SyncEvent, len(events))
	for i, e := range events {
		wire[i] = api.SyncEvent{
			ID:         e.ID,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			Operation:  e.Operation,
			NodeID:     e.NodeID,
			Payload:    e.Payload,
			Timestamp:  e.Timestamp,
			Version:    e.Version,
			Deleted:    e.Deleted,
			CreatedAt:  e.CreatedAt,
			UpdatedAt:  e.UpdatedAt,
		}
	}
	return wire
}

// eventsFromWire конвертирует wire-формат в события леджера
func eventsFromWire(wire []api.SyncEvent) []*models.SyncEvent {
	events := make([]*models.SyncEvent, len(wire))
	for i, w := range wire {
		events[i] = &models.SyncEvent{
			ID:         w.ID,
			EntityType: w.EntityType,
			EntityID:   w.EntityID,
			Operation:  w.Operation,
			NodeID:     w.NodeID,
			Payload:    w.Payload,
			Timestamp:  w.Timestamp,
			Version:    w.Version,
			Deleted:    w.Deleted,
			CreatedAt:  w.CreatedAt,
			UpdatedAt:  w.UpdatedAt,
		}
	}
	return events
}
