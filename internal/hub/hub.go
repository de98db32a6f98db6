package hub

import (
	"sync"

	"go.uber.org/zap"
)

// Hub раздает уведомления об изменении коллекции задач всем живым
// подписчикам. Сигналы коалесцируются: подписчик с необработанным тиком
// второго не получит, снапшот он все равно перечитает целиком.
type Hub struct {
	logger *zap.Logger
	mu     sync.Mutex
	subs   map[chan struct{}]struct{}
	closed bool
}

func New(logger *zap.Logger) *Hub {
	return &Hub{
		logger: logger,
		subs:   make(map[chan struct{}]struct{}),
	}
}

// Subscribe регистрирует слушателя; возвращенная функция снимает его и
// безопасна для повторных вызовов
func (h *Hub) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			if _, ok := h.subs[ch]; ok {
				delete(h.subs, ch)
				close(ch)
			}
			h.mu.Unlock()
		})
	}
	return ch, cancel
}

// Notify будит всех подписчиков, не блокируясь на медленных
func (h *Hub) Notify() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
	h.logger.Info("Hub stopped")
}
