package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"lavanderia/internal/apierror"
	"lavanderia/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// LoginAttemptsPerMinute bounds credential endpoints per IP.
const LoginAttemptsPerMinute = 20

const purgeInterval = 5 * time.Minute

// janela is a fixed-window counter keyed by client IP.
type janela struct {
	nome    string
	limite  int
	duracao time.Duration

	mu       sync.Mutex
	contagem map[string]int
	fim      map[string]time.Time
}

func novaJanela(nome string, limite int, duracao time.Duration) *janela {
	j := &janela{
		nome:     nome,
		limite:   limite,
		duracao:  duracao,
		contagem: make(map[string]int),
		fim:      make(map[string]time.Time),
	}
	registrarJanela(j)
	return j
}

// permitir counts one hit for chave at agora. When the limit is exceeded it
// returns false and how long until the window resets.
func (j *janela) permitir(chave string, agora time.Time) (bool, time.Duration) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if fim, ok := j.fim[chave]; !ok || agora.After(fim) {
		j.contagem[chave] = 0
		j.fim[chave] = agora.Add(j.duracao)
	}
	j.contagem[chave]++
	if j.contagem[chave] > j.limite {
		return false, j.fim[chave].Sub(agora)
	}
	return true, 0
}

// purgar drops keys whose window has closed and reports how many went.
func (j *janela) purgar(agora time.Time) int {
	j.mu.Lock()
	defer j.mu.Unlock()
	n := 0
	for chave, fim := range j.fim {
		if agora.After(fim) {
			delete(j.fim, chave)
			delete(j.contagem, chave)
			n++
		}
	}
	return n
}

func (j *janela) middleware(mensagem string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, espera := j.permitir(c.ClientIP(), time.Now())
		if !ok {
			metrics.LimitesExcedidos.WithLabelValues(j.nome).Inc()
			c.Header("Retry-After", strconv.Itoa(int(espera.Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(mensagem))
			return
		}
		c.Next()
	}
}

// Credential endpoints share one budget per IP.
var limiteLogin = novaJanela("login", LoginAttemptsPerMinute, time.Minute)

// LoginRateLimiter limits login, refresh and password-reset attempts per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return limiteLogin.middleware("Muitas tentativas. Tente novamente em 1 minuto.")
}

// RateLimiter returns a general-purpose fixed-window limiter keyed by IP.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return novaJanela("api", limit, window).middleware("Muitas requisições. Tente novamente em instantes.")
}

var (
	janelas     []*janela
	janelasMu   sync.Mutex
	purgaInicio sync.Once
)

func registrarJanela(j *janela) {
	janelasMu.Lock()
	janelas = append(janelas, j)
	janelasMu.Unlock()
	purgaInicio.Do(func() { go purgarPeriodicamente() })
}

// purgarPeriodicamente keeps IPs that never return from accumulating.
func purgarPeriodicamente() {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for agora := range ticker.C {
		janelasMu.Lock()
		ativas := append([]*janela(nil), janelas...)
		janelasMu.Unlock()
		for _, j := range ativas {
			if n := j.purgar(agora); n > 0 {
				log.Debug().Str("limitador", j.nome).Int("purged", n).Msg("rate limiter entries purged")
			}
		}
	}
}
