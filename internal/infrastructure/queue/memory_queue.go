package queue

import (
	"context"
	"sync"
	"time"

	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/application/fiscal"
)

var _ fiscal.Queue = (*MemoryQueue)(nil)

// MemoryQueue cola de emisión en proceso. Una venta encolada y aún no confirmada no se duplica.
type MemoryQueue struct {
	mu      sync.Mutex
	pending map[string]struct{}
	ch      chan string
}

// NewMemoryQueue crea la cola con capacidad size.
func NewMemoryQueue(size int) *MemoryQueue {
	return &MemoryQueue{pending: make(map[string]struct{}), ch: make(chan string, size)}
}

// Enqueue agrega saleID si no está pendiente. Con la cola llena se descarta: el barrido la vuelve a encolar.
func (q *MemoryQueue) Enqueue(_ context.Context, saleID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.pending[saleID]; ok {
		return nil
	}
	select {
	case q.ch <- saleID:
		q.pending[saleID] = struct{}{}
	default:
	}
	return nil
}

// Dequeue espera hasta wait una tarea.
func (q *MemoryQueue) Dequeue(ctx context.Context, wait time.Duration) (string, error) {
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case id := <-q.ch:
		return id, nil
	case <-timer.C:
		return "", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Ack libera saleID para futuras encoladas.
func (q *MemoryQueue) Ack(_ context.Context, saleID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.pending, saleID)
	return nil
}

// Len tareas en espera.
func (q *MemoryQueue) Len() int {
	return len(q.ch)
}
