package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// entry содержит контроллер посетителя и метаданные для TTL.
type entry struct {
	controller  *Controller
	createdAt   time.Time
	lastTouched time.Time
}

// Store потокобезопасное in-memory хранилище контроллеров с поддержкой TTL.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	factory func() *Controller
	now     func() time.Time
}

// NewStore создаёт хранилище. factory строит контроллер для нового посетителя.
// Если ttl == 0, сессии никогда не истекают.
func NewStore(ttl time.Duration, factory func() *Controller) *Store {
	return &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
		factory: factory,
		now:     time.Now,
	}
}

func (s *Store) expired(e entry, now time.Time) bool {
	return s.ttl > 0 && now.Sub(e.lastTouched) > s.ttl
}

// GetOrCreate возвращает контроллер сессии, создавая новый при необходимости.
// Второй результат true, если контроллер был создан.
func (s *Store) GetOrCreate(sessionID string) (*Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, ok := s.entries[sessionID]
	if ok && !s.expired(e, now) {
		e.lastTouched = now
		s.entries[sessionID] = e
		return e.controller, false
	}

	e = entry{
		controller:  s.factory(),
		createdAt:   now,
		lastTouched: now,
	}
	s.entries[sessionID] = e
	return e.controller, true
}

// Delete удаляет сессию. Незавершённый запрос отбрасывается.
func (s *Store) Delete(sessionID string) {
	s.mu.Lock()
	e, ok := s.entries[sessionID]
	delete(s.entries, sessionID)
	s.mu.Unlock()

	if ok {
		e.controller.Reset()
	}
}

// Len возвращает количество сессий, включая ещё не вычищенные истёкшие.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// ClearExpired удаляет все сессии, у которых истёк TTL относительно now.
// Возвращает количество удалённых сессий.
func (s *Store) ClearExpired(now time.Time) int {
	if s.ttl == 0 {
		return 0
	}

	s.mu.Lock()
	var stale []*Controller
	for id, e := range s.entries {
		if s.expired(e, now) {
			delete(s.entries, id)
			stale = append(stale, e.controller)
		}
	}
	s.mu.Unlock()

	for _, c := range stale {
		c.Reset()
	}
	return len(stale)
}

// RunJanitor периодически вызывает ClearExpired, пока ctx не отменён.
func (s *Store) RunJanitor(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 || s.ttl == 0 {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.ClearExpired(now); n > 0 {
				logger.Info("expired sessions removed", "count", n, "remaining", s.Len())
			}
		}
	}
}
