package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/application/fiscal"
)

var _ fiscal.Queue = (*RedisQueue)(nil)

// RedisQueue cola de emisión sobre listas de Redis con entrega al menos una vez.
//
//	<prefix>:pending     lista de ventas por emitir (LPUSH / BLMOVE RIGHT)
//	<prefix>:processing  ventas tomadas por un worker y no confirmadas
//	<prefix>:queued      set de deduplicación (pending + processing)
type RedisQueue struct {
	client     *redis.Client
	pending    string
	processing string
	queued     string
}

// NewRedisQueue crea el cliente y la cola con el prefijo de claves dado.
func NewRedisQueue(addr, password string, db int, prefix string) *RedisQueue {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisQueue{
		client:     client,
		pending:    prefix + ":pending",
		processing: prefix + ":processing",
		queued:     prefix + ":queued",
	}
}

func (q *RedisQueue) Ping(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}

func (q *RedisQueue) Close() error {
	return q.client.Close()
}

// Enqueue agrega saleID solo si no está ya en la cola.
func (q *RedisQueue) Enqueue(ctx context.Context, saleID string) error {
	added, err := q.client.SAdd(ctx, q.queued, saleID).Result()
	if err != nil {
		return fmt.Errorf("dedupe %s: %w", saleID, err)
	}
	if added == 0 {
		return nil
	}
	if err := q.client.LPush(ctx, q.pending, saleID).Err(); err != nil {
		_ = q.client.SRem(ctx, q.queued, saleID).Err()
		return fmt.Errorf("encolar %s: %w", saleID, err)
	}
	return nil
}

// Dequeue mueve la tarea más antigua a la lista de proceso, esperando hasta wait.
func (q *RedisQueue) Dequeue(ctx context.Context, wait time.Duration) (string, error) {
	id, err := q.client.BLMove(ctx, q.pending, q.processing, "RIGHT", "LEFT", wait).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

// Ack quita la tarea de proceso y libera la deduplicación.
func (q *RedisQueue) Ack(ctx context.Context, saleID string) error {
	pipe := q.client.TxPipeline()
	pipe.LRem(ctx, q.processing, 1, saleID)
	pipe.SRem(ctx, q.queued, saleID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("ack %s: %w", saleID, err)
	}
	return nil
}

// Recover devuelve a pending las tareas que quedaron en proceso (worker caído). Llamar al arrancar.
func (q *RedisQueue) Recover(ctx context.Context) (int, error) {
	n := 0
	for {
		_, err := q.client.LMove(ctx, q.processing, q.pending, "RIGHT", "RIGHT").Result()
		if errors.Is(err, redis.Nil) {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("recuperar tareas: %w", err)
		}
		n++
	}
}
