package infra

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// ResendMailer sends mail through the Resend HTTP API.
type ResendMailer struct {
	client *resend.Client
	from   string
}

func NewResendMailer(apiKey, from string) *ResendMailer {
	return &ResendMailer{client: resend.NewClient(apiKey), from: from}
}

func (m *ResendMailer) Enviar(ctx context.Context, msg Mensagem) error {
	req := &resend.SendEmailRequest{
		From:    m.from,
		To:      msg.Para,
		Subject: msg.Assunto,
		Html:    msg.HTML,
	}
	for _, a := range msg.Anexos {
		req.Attachments = append(req.Attachments, &resend.Attachment{
			Filename:    a.Nome,
			Content:     a.Conteudo,
			ContentType: a.Tipo,
		})
	}

	if _, err := m.client.Emails.SendWithContext(ctx, req); err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	return nil
}
