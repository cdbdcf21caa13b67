package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"lavanderia/internal/infra"
	"lavanderia/internal/metrics"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	Tipo    string   `json:"tipo"`
	Para    []string `json:"para"`
	Assunto string   `json:"assunto"`
	HTML    string   `json:"html"`
}

// EmailWorker sends outbound mail through a circuit breaker so a downed
// provider is not hammered by every job.
type EmailWorker struct {
	mailer infra.Mailer
	cb     *infra.CircuitBreaker
}

func NewEmailWorker(mailer infra.Mailer, cb *infra.CircuitBreaker) *EmailWorker {
	return &EmailWorker{mailer: mailer, cb: cb}
}

// Process is the QueueEmail handler.
func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("email_worker: payload inválido: %w", err)
	}
	if len(payload.Para) == 0 {
		log.Warn().Msg("email_worker: sem destinatário, ignorando")
		return nil
	}
	return w.Enviar(ctx, payload.Tipo, infra.Mensagem{
		Para:    payload.Para,
		Assunto: payload.Assunto,
		HTML:    payload.HTML,
	})
}

// Enviar delivers msg with up to MaxTentativas attempts.
func (w *EmailWorker) Enviar(ctx context.Context, tipo string, msg infra.Mensagem) error {
	return w.enviar(ctx, tipo, msg, MaxTentativas)
}

func (w *EmailWorker) enviar(ctx context.Context, tipo string, msg infra.Mensagem, tentativas int) error {
	if tipo == "" {
		tipo = "generico"
	}
	err := withRetry(ctx, tentativas, func(attempt int) error {
		err := w.cb.Executar(ctx, func(ctx context.Context) error {
			return w.mailer.Enviar(ctx, msg)
		})
		if err != nil && !errors.Is(err, infra.ErrCircuitoAberto) {
			log.Warn().Err(err).Int("attempt", attempt+1).Str("tipo", tipo).Msg("email_worker: envio falhou")
		}
		return err
	})
	if err != nil {
		metrics.EmailsEnviados.WithLabelValues(tipo, "falha").Inc()
		return fmt.Errorf("email_worker: %s: %w", tipo, err)
	}
	metrics.EmailsEnviados.WithLabelValues(tipo, "ok").Inc()
	log.Info().Str("tipo", tipo).Int("destinatarios", len(msg.Para)).Msg("email_worker: enviado")
	return nil
}
