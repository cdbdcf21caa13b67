package infra

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"lavanderia/internal/config"
)

// Anexo is a file attached to an outbound message.
type Anexo struct {
	Nome     string
	Tipo     string
	Conteudo []byte
}

// Mensagem is one outbound email.
type Mensagem struct {
	Para    []string
	Assunto string
	HTML    string
	Anexos  []Anexo
}

// Mailer delivers a message or returns the transport error.
type Mailer interface {
	Enviar(ctx context.Context, m Mensagem) error
}

// NewMailerFromConfig picks Resend when an API key is configured and plain
// SMTP otherwise.
func NewMailerFromConfig(cfg *config.Config) Mailer {
	if cfg.ResendAPIKey != "" {
		return NewResendMailer(cfg.ResendAPIKey, cfg.MailFrom)
	}
	return NewSMTPMailer(cfg)
}

var (
	tplRedefinicao = template.Must(template.New("redefinicao").Parse(`<p>Olá,</p>
<p>Recebemos um pedido para redefinir a senha da sua conta.</p>
<p><a href="{{.Link}}">Clique aqui para criar uma nova senha</a>. O link expira em {{.Minutos}} minutos.</p>
<p>Se você não fez esse pedido, ignore este email.</p>`))

	tplEntrega = template.Must(template.New("entrega").Parse(`<p>Olá, {{.Cliente}}!</p>
<p>Sua demanda <strong>{{.Codigo}}</strong> na {{.Lavanderia}} mudou para <strong>{{.Status}}</strong>.</p>
<p>Segue em anexo a nota com os detalhes do serviço.</p>`))
)

// CorpoRedefinicao renders the password reset email body.
func CorpoRedefinicao(link string, minutos int) (string, error) {
	return renderizar(tplRedefinicao, map[string]any{"Link": link, "Minutos": minutos})
}

// CorpoEntrega renders the delivery notification body.
func CorpoEntrega(cliente, codigo, lavanderia, status string) (string, error) {
	return renderizar(tplEntrega, map[string]any{
		"Cliente":    cliente,
		"Codigo":     codigo,
		"Lavanderia": lavanderia,
		"Status":     status,
	})
}

func renderizar(t *template.Template, dados any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, dados); err != nil {
		return "", fmt.Errorf("mailer: template %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}
