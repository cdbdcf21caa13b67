package infra

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const prefixoRevogado = "revogado:"

// ListaRevogacao records revoked token IDs until the token would have expired
// anyway. Entries land in the process-local set before Redis, so a revocation
// is visible to this process even when the Redis write fails.
type ListaRevogacao struct {
	rdb *redis.Client

	mu     sync.Mutex
	locais map[string]time.Time
}

// NewListaRevogacao accepts a nil client, in which case only the local set is used.
func NewListaRevogacao(rdb *redis.Client) *ListaRevogacao {
	return &ListaRevogacao{rdb: rdb, locais: make(map[string]time.Time)}
}

// Revogar marks jti as revoked until ate. The returned error only reports the
// Redis write; the local entry is always recorded.
func (l *ListaRevogacao) Revogar(ctx context.Context, jti string, ate time.Time) error {
	if jti == "" {
		return nil
	}
	l.mu.Lock()
	l.locais[jti] = ate
	l.mu.Unlock()

	if l.rdb == nil {
		return nil
	}
	ttl := time.Until(ate)
	if ttl <= 0 {
		return nil
	}
	if err := l.rdb.Set(ctx, prefixoRevogado+jti, 1, ttl).Err(); err != nil {
		return fmt.Errorf("revogacao: redis set: %w", err)
	}
	return nil
}

// Revogado reports whether jti was revoked. A Redis failure is returned so
// that callers can fail closed.
func (l *ListaRevogacao) Revogado(ctx context.Context, jti string) (bool, error) {
	l.mu.Lock()
	ate, ok := l.locais[jti]
	if ok && time.Now().After(ate) {
		delete(l.locais, jti)
		ok = false
	}
	l.mu.Unlock()
	if ok {
		return true, nil
	}

	if l.rdb == nil {
		return false, nil
	}
	n, err := l.rdb.Exists(ctx, prefixoRevogado+jti).Result()
	if err != nil {
		return false, fmt.Errorf("revogacao: redis exists: %w", err)
	}
	return n > 0, nil
}

// Limpar drops expired local entries.
func (l *ListaRevogacao) Limpar() {
	agora := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()
	for jti, ate := range l.locais {
		if agora.After(ate) {
			delete(l.locais, jti)
		}
	}
}

// IniciarLimpeza runs Limpar every intervalo until ctx is cancelled.
func (l *ListaRevogacao) IniciarLimpeza(ctx context.Context, intervalo time.Duration) {
	go func() {
		ticker := time.NewTicker(intervalo)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.Limpar()
			}
		}
	}()
}
