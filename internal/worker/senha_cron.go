package worker

// Periodically drains the password-reset request queue: issues a token,
// emails the link and stores only the token hash. Uses the mail circuit
// breaker so a downed provider is skipped until it recovers.

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"lavanderia/internal/infra"
	"lavanderia/internal/model"
	"lavanderia/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	senhaTickInterval = 30 * time.Second
	senhaBatchSize    = 20
	// MaxTentativasSenha is how many ticks a request may fail before it is dropped.
	MaxTentativasSenha = 5

	queueSenha = "cron:senha"
)

// SenhaCronConfig holds all dependencies for the reset-mail goroutine.
type SenhaCronConfig struct {
	Repo     repository.SolicitacaoSenhaRepository
	Email    *EmailWorker
	CB       *infra.CircuitBreaker
	RDB      *redis.Client
	ResetURL string
	Validade time.Duration
}

// StartSenhaCron launches a background goroutine that ticks every 30s.
// It respects the context for graceful shutdown.
func StartSenhaCron(ctx context.Context, cfg SenhaCronConfig) {
	go func() {
		ticker := time.NewTicker(senhaTickInterval)
		defer ticker.Stop()

		log.Info().Msg("senha_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("senha_cron: shutting down")
				return
			case <-ticker.C:
				processarSolicitacoes(ctx, cfg)
			}
		}
	}()
}

func processarSolicitacoes(ctx context.Context, cfg SenhaCronConfig) {
	if cfg.CB.Estado() == infra.CBAberto {
		log.Debug().Msg("senha_cron: circuit breaker is open, skipping tick")
		return
	}

	pendentes, err := cfg.Repo.PendentesEnvio(ctx, senhaBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("senha_cron: failed to query pending requests")
		return
	}
	if len(pendentes) == 0 {
		return
	}
	log.Info().Int("count", len(pendentes)).Msg("senha_cron: processing reset requests")

	for i := range pendentes {
		// the breaker may trip mid-batch
		if cfg.CB.Estado() == infra.CBAberto {
			log.Debug().Msg("senha_cron: circuit breaker opened mid-batch, stopping")
			return
		}
		processarSolicitacao(ctx, cfg, &pendentes[i])
	}
}

func processarSolicitacao(ctx context.Context, cfg SenhaCronConfig, sol *model.SolicitacaoSenha) {
	token, hash, err := infra.NovoTokenRedefinicao()
	if err != nil {
		log.Error().Err(err).Msg("senha_cron: token")
		return
	}
	corpo, err := infra.CorpoRedefinicao(linkRedefinicao(cfg.ResetURL, token), int(cfg.Validade.Minutes()))
	if err != nil {
		log.Error().Err(err).Msg("senha_cron: template")
		return
	}

	sol.Tentativas++
	err = cfg.Email.enviar(ctx, "redefinicao_senha", infra.Mensagem{
		Para:    []string{sol.Email},
		Assunto: "Redefinição de senha",
		HTML:    corpo,
	}, 1)

	if err != nil {
		msg := err.Error()
		sol.UltimoErro = &msg
		if sol.Tentativas >= MaxTentativasSenha {
			// give up: the user can ask again
			sol.Enviado = true
			payload, _ := json.Marshal(map[string]string{"solicitacao_id": sol.ID.String()})
			SendToDLQ(ctx, cfg.RDB, queueSenha, "redefinicao_senha", payload,
				fmt.Sprintf("max retries (%d) exceeded: %s", MaxTentativasSenha, msg), sol.Tentativas)
		} else {
			log.Warn().Str("solicitacao_id", sol.ID.String()).Int("tentativas", sol.Tentativas).
				Msg("senha_cron: envio falhou, nova tentativa no próximo ciclo")
		}
	} else {
		expira := time.Now().Add(cfg.Validade)
		sol.Enviado = true
		sol.TokenHash = &hash
		sol.ExpiraEm = &expira
		sol.UltimoErro = nil
	}

	if err := cfg.Repo.Atualizar(ctx, sol); err != nil {
		log.Error().Err(err).Str("solicitacao_id", sol.ID.String()).Msg("senha_cron: failed to update request")
	}
}

func linkRedefinicao(base, token string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base + "?token=" + url.QueryEscape(token)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}
