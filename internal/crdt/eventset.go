package crdt

import (
	"sync"

	"github.com/iudanet/syncmesh/internal/models"
)

// EventSet представляет LWW-Element-Set поверх журнала событий: для каждой
// бизнес-сущности хранится последняя выигравшая версия. Merge коммутативен
// и идемпотентен, поэтому узлы сходятся к одному состоянию независимо от
// порядка обмена событиями.
type EventSet struct {
	latest map[string]*models.SyncEvent // map[EntityKey]последняя версия
	mu     sync.RWMutex
}

// NewEventSet создает пустой EventSet.
func NewEventSet() *EventSet {
	return &EventSet{
		latest: make(map[string]*models.SyncEvent),
	}
}

// Apply применяет событие по правилу LWW.
// Возвращает true, если событие стало текущей версией своей сущности.
func (s *EventSet) Apply(event *models.SyncEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.applyLocked(event)
}

func (s *EventSet) applyLocked(event *models.SyncEvent) bool {
	key := event.EntityKey()

	existing, exists := s.latest[key]
	if !exists {
		s.latest[key] = event.Clone()
		return true
	}

	if event.IsNewerThan(existing) {
		s.latest[key] = event.Clone()
		return true
	}

	return false
}

// Get возвращает текущую версию сущности.
// Возвращает nil, если сущность неизвестна или удалена.
func (s *EventSet) Get(entityType, entityID string) *models.SyncEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	event, exists := s.latest[entityType+"/"+entityID]
	if !exists || event.Deleted {
		return nil
	}

	return event.Clone()
}

// Snapshot возвращает текущие версии всех сущностей, включая удаленные.
// Используется для обмена состоянием с другими узлами.
func (s *EventSet) Snapshot() []*models.SyncEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.SyncEvent, 0, len(s.latest))
	for _, event := range s.latest {
		result = append(result, event.Clone())
	}

	return result
}

// Merge применяет все события другого set по правилу LWW.
func (s *EventSet) Merge(other *EventSet) {
	other.mu.RLock()
	events := make([]*models.SyncEvent, 0, len(other.latest))
	for _, event := range other.latest {
		events = append(events, event)
	}
	other.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, event := range events {
		s.applyLocked(event)
	}
}

// Size возвращает количество неудаленных сущностей.
func (s *EventSet) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, event := range s.latest {
		if !event.Deleted {
			count++
		}
	}

	return count
}
