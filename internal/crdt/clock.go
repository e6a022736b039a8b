package crdt

import (
	"sync"

	"github.com/google/uuid"
)

// LamportClock представляет логические часы Лампорта для упорядочивания
// событий между узлами без синхронизации физического времени.
// Счетчик переживает перезапуск узла: состояние сохраняется в meta-хранилище
// и восстанавливается через Restore.
type LamportClock struct {
	nodeID  string     // уникальный идентификатор узла
	counter int64      // монотонно возрастающий счетчик
	mu      sync.Mutex // мьютекс для потокобезопасности
}

// NewLamportClock создает часы для узла с заданным идентификатором.
// Пустой nodeID заменяется новым UUID (первый запуск узла).
func NewLamportClock(nodeID string) *LamportClock {
	if nodeID == "" {
		nodeID = uuid.New().String()
	}
	return &LamportClock{nodeID: nodeID}
}

// Tick увеличивает счетчик и возвращает timestamp для нового локального события.
func (lc *LamportClock) Tick() int64 {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	lc.counter++
	return lc.counter
}

// Observe обновляет счетчик по полученному удаленному timestamp:
// counter = max(counter, remote) + 1. Вызывается при применении события
// от другого узла.
func (lc *LamportClock) Observe(remote int64) int64 {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	if remote > lc.counter {
		lc.counter = remote
	}
	lc.counter++

	return lc.counter
}

// Current возвращает текущее значение счетчика без изменения.
func (lc *LamportClock) Current() int64 {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	return lc.counter
}

// NodeID возвращает идентификатор узла.
func (lc *LamportClock) NodeID() string {
	return lc.nodeID
}

// Restore устанавливает счетчик в сохраненное значение.
// Используется при старте узла; значения меньше текущего игнорируются,
// чтобы счетчик никогда не откатывался назад.
func (lc *LamportClock) Restore(counter int64) {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	if counter > lc.counter {
		lc.counter = counter
	}
}
