package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"lavanderia/internal/infra"
	"lavanderia/internal/repository"
	"lavanderia/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// GeradorNota renders the receipt of a demand without a user session.
type GeradorNota interface {
	NotaPorEscopo(ctx context.Context, esc repository.Escopo, demandaID uuid.UUID) (*service.Nota, error)
}

// NotificacaoWorker emails the client when a demand is delivered, with the
// receipt attached.
type NotificacaoWorker struct {
	notas GeradorNota
	email *EmailWorker
}

func NewNotificacaoWorker(notas GeradorNota, email *EmailWorker) *NotificacaoWorker {
	return &NotificacaoWorker{notas: notas, email: email}
}

// Process is the QueueNotificacao handler.
func (w *NotificacaoWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload EntregaPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("notificacao_worker: payload inválido: %w", err)
	}
	lavID, err := uuid.Parse(payload.LavanderiaID)
	if err != nil {
		return fmt.Errorf("notificacao_worker: lavanderia_id: %w", err)
	}
	demandaID, err := uuid.Parse(payload.DemandaID)
	if err != nil {
		return fmt.Errorf("notificacao_worker: demanda_id: %w", err)
	}

	nota, err := w.notas.NotaPorEscopo(ctx, repository.EscopoLavanderia(lavID), demandaID)
	if errors.Is(err, repository.ErrNaoEncontrado) {
		log.Warn().Str("demanda_id", payload.DemandaID).Msg("notificacao_worker: demanda não existe mais")
		return nil
	}
	if err != nil {
		return fmt.Errorf("notificacao_worker: gerar nota: %w", err)
	}
	if nota.ClienteEmail == nil || *nota.ClienteEmail == "" {
		return nil
	}

	corpo, err := infra.CorpoEntrega(nota.ClienteNome, nota.Codigo, nota.Lavanderia, nota.Status.Rotulo())
	if err != nil {
		return err
	}
	return w.email.Enviar(ctx, "entrega", infra.Mensagem{
		Para:    []string{*nota.ClienteEmail},
		Assunto: fmt.Sprintf("%s: demanda %s %s", nota.Lavanderia, nota.Codigo, nota.Status.Rotulo()),
		HTML:    corpo,
		Anexos: []infra.Anexo{{
			Nome:     nota.NomeArquivo,
			Tipo:     "application/pdf",
			Conteudo: nota.PDF,
		}},
	})
}
