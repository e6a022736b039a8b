package sync

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/syncmesh/internal/crdt"
	"github.com/iudanet/syncmesh/internal/models"
	"github.com/iudanet/syncmesh/internal/server/storage"
)

// ApplyOutcome описывает результат применения удаленного события к леджеру
type ApplyOutcome struct {
	Conflict *models.ConflictRecord // nil, если конфликта не было
	Saved    bool                   // событие победило и записано в леджер
}

// Resolver применяет входящие события к леджеру по правилу last-write-wins
// и фиксирует каждое расхождение конкурентных версий в журнале конфликтов.
//
// Конфликтом считается только конкурентная пара: предыдущая версия сущности
// происходит с другого узла. Последовательные правки одного узла конфликтом
// не являются.
type Resolver struct {
	logger    *slog.Logger
	events    storage.EventStorage
	conflicts storage.ConflictStorage
	clock     *crdt.LamportClock
}

// NewResolver создает resolver поверх леджера событий и журнала конфликтов
func NewResolver(logger *slog.Logger, events storage.EventStorage, conflicts storage.ConflictStorage, clock *crdt.LamportClock) *Resolver {
	return &Resolver{
		logger:    logger,
		events:    events,
		conflicts: conflicts,
		clock:     clock,
	}
}

// Apply применяет удаленное событие к леджеру.
// Lamport-часы узла продвигаются по наблюдаемому timestamp независимо от
// исхода, чтобы последующие локальные события были упорядочены после.
func (r *Resolver) Apply(ctx context.Context, remote *models.SyncEvent) (ApplyOutcome, error) {
	r.clock.Observe(remote.Timestamp)

	result, err := r.events.SaveEvent(ctx, remote)
	if err != nil {
		return ApplyOutcome{}, fmt.Errorf("failed to apply event: %w", err)
	}

	outcome := ApplyOutcome{Saved: result.Saved}

	// Первая версия сущности или последовательная правка того же узла
	if result.Superseded == nil || !result.Superseded.Concurrent(remote) {
		return outcome, nil
	}

	record := r.buildConflictRecord(result.Superseded, remote, result.Saved)

	// Повторная доставка той же пары версий (replay при recovery) уже
	// зафиксирована в журнале и не считается новым конфликтом
	seen, err := r.conflicts.HasConflict(ctx, record)
	if err != nil {
		return ApplyOutcome{}, fmt.Errorf("failed to check conflict log: %w", err)
	}
	if seen {
		return outcome, nil
	}

	if err := r.conflicts.RecordConflict(ctx, record); err != nil {
		return ApplyOutcome{}, fmt.Errorf("failed to record conflict: %w", err)
	}
	outcome.Conflict = record

	r.logger.InfoContext(ctx, "conflict detected",
		slog.String("entity", remote.EntityKey()),
		slog.String("type", record.ConflictType),
		slog.String("strategy", record.ResolutionStrategy),
		slog.String("winner", record.WinnerNodeID),
		slog.Bool("auto_resolved", record.AutoResolved))

	return outcome, nil
}

// buildConflictRecord строит запись журнала для конкурентной пары версий.
// local — версия, которая была текущей в леджере до применения remote.
func (r *Resolver) buildConflictRecord(local, remote *models.SyncEvent, remoteWon bool) *models.ConflictRecord {
	now := time.Now()

	record := &models.ConflictRecord{
		ID:                 uuid.New().String(),
		EntityType:         remote.EntityType,
		EntityID:           remote.EntityID,
		ConflictType:       models.ClassifyConflict(local, remote),
		ResolutionStrategy: models.StrategyLastWriteWins,
		LocalNodeID:        local.NodeID,
		RemoteNodeID:       remote.NodeID,
		LocalTimestamp:     local.Timestamp,
		RemoteTimestamp:    remote.Timestamp,
		AutoResolved:       true,
		DetectedAt:         now,
		ResolvedAt:         now,
	}

	if remoteWon {
		record.WinnerNodeID = remote.NodeID
	} else {
		record.WinnerNodeID = local.NodeID
	}

	// Равные timestamp при разном содержимом: tie-break по node_id
	// детерминирован, но произволен, поэтому исход отдается оператору
	if local.Timestamp == remote.Timestamp && !bytes.Equal(local.Payload, remote.Payload) {
		record.ResolutionStrategy = models.StrategyManual
		record.AutoResolved = false
		record.WinnerNodeID = ""
		record.ResolvedAt = time.Time{}
	}

	return record
}

// ApplyBatch применяет пачку событий, возвращая счетчики для сессии
func (r *Resolver) ApplyBatch(ctx context.Context, events []*models.SyncEvent) (applied, detected, resolved int, err error) {
	for _, event := range events {
		outcome, err := r.Apply(ctx, event)
		if err != nil {
			return applied, detected, resolved, err
		}
		if outcome.Saved {
			applied++
		}
		if outcome.Conflict != nil {
			detected++
			if outcome.Conflict.AutoResolved {
				resolved++
			}
		}
	}
	return applied, detected, resolved, nil
}

// ForceResolve перезаписывает исход конфликта выбранной стратегией.
// Используется при ручном разборе и при восстановлении после разрыва сети.
func (r *Resolver) ForceResolve(ctx context.Context, conflictID, strategy string) error {
	record, err := r.conflicts.GetConflict(ctx, conflictID)
	if err != nil {
		if errors.Is(err, storage.ErrConflictNotFound) {
			return err
		}
		return fmt.Errorf("failed to load conflict: %w", err)
	}

	switch strategy {
	case models.StrategyLocalWins:
		record.WinnerNodeID = record.LocalNodeID
	case models.StrategyRemoteWins:
		record.WinnerNodeID = record.RemoteNodeID
	default:
		return fmt.Errorf("unsupported resolution strategy: %s", strategy)
	}

	if err := r.conflicts.ResolveConflict(ctx, conflictID, strategy, record.WinnerNodeID, time.Now()); err != nil {
		return fmt.Errorf("failed to resolve conflict: %w", err)
	}

	r.logger.InfoContext(ctx, "conflict force-resolved",
		slog.String("conflict_id", conflictID),
		slog.String("strategy", strategy),
		slog.String("winner", record.WinnerNodeID))

	return nil
}
