package infra

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// EstadoCB is the breaker state: closed lets calls through, open fails them
// immediately, half-open lets probes through until enough succeed.
type EstadoCB int

const (
	CBFechado EstadoCB = iota
	CBAberto
	CBSemiAberto
)

func (s EstadoCB) String() string {
	switch s {
	case CBFechado:
		return "closed"
	case CBAberto:
		return "open"
	case CBSemiAberto:
		return "half-open"
	default:
		return "unknown"
	}
}

var ErrCircuitoAberto = errors.New("circuit breaker aberto")

type ConfigCB struct {
	LimiteFalhas  int           // consecutive failures that open the circuit
	LimiteSucesso int           // consecutive half-open successes that close it
	TempoAberto   time.Duration // wait before the first probe
}

func DefaultConfigCB() ConfigCB {
	return ConfigCB{LimiteFalhas: 5, LimiteSucesso: 2, TempoAberto: 60 * time.Second}
}

// CircuitBreaker guards calls to a remote dependency (the mail provider).
type CircuitBreaker struct {
	nome string
	cfg  ConfigCB

	mu          sync.Mutex
	estado      EstadoCB
	falhas      int
	sucessos    int
	ultimaFalha time.Time
	agora       func() time.Time
}

func NewCircuitBreaker(nome string, cfg ConfigCB) *CircuitBreaker {
	def := DefaultConfigCB()
	if cfg.LimiteFalhas <= 0 {
		cfg.LimiteFalhas = def.LimiteFalhas
	}
	if cfg.LimiteSucesso <= 0 {
		cfg.LimiteSucesso = def.LimiteSucesso
	}
	if cfg.TempoAberto <= 0 {
		cfg.TempoAberto = def.TempoAberto
	}
	return &CircuitBreaker{nome: nome, cfg: cfg, estado: CBFechado, agora: time.Now}
}

// Estado returns the current state, moving open to half-open once TempoAberto elapsed.
func (cb *CircuitBreaker) Estado() EstadoCB {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.estadoLocked()
}

func (cb *CircuitBreaker) estadoLocked() EstadoCB {
	if cb.estado == CBAberto && cb.agora().Sub(cb.ultimaFalha) >= cb.cfg.TempoAberto {
		cb.mudar(CBSemiAberto)
	}
	return cb.estado
}

// Executar runs fn unless the circuit is open.
func (cb *CircuitBreaker) Executar(ctx context.Context, fn func(ctx context.Context) error) error {
	cb.mu.Lock()
	estado := cb.estadoLocked()
	cb.mu.Unlock()
	if estado == CBAberto {
		return ErrCircuitoAberto
	}

	err := fn(ctx)

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err != nil {
		cb.falhou()
		return err
	}
	cb.funcionou()
	return nil
}

// must hold mu
func (cb *CircuitBreaker) falhou() {
	cb.falhas++
	cb.ultimaFalha = cb.agora()
	switch cb.estado {
	case CBFechado:
		if cb.falhas >= cb.cfg.LimiteFalhas {
			cb.mudar(CBAberto)
		}
	case CBSemiAberto:
		cb.mudar(CBAberto)
	}
}

// must hold mu
func (cb *CircuitBreaker) funcionou() {
	switch cb.estado {
	case CBFechado:
		cb.falhas = 0
	case CBSemiAberto:
		cb.sucessos++
		if cb.sucessos >= cb.cfg.LimiteSucesso {
			cb.mudar(CBFechado)
		}
	}
}

func (cb *CircuitBreaker) mudar(novo EstadoCB) {
	log.Warn().Str("circuit", cb.nome).Str("de", cb.estado.String()).Str("para", novo.String()).
		Msg("circuit breaker: mudança de estado")
	cb.estado = novo
	cb.falhas = 0
	cb.sucessos = 0
}
