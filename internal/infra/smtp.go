package infra

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"

	"lavanderia/internal/config"

	"github.com/jordan-wright/email"
)

// SMTPMailer sends mail through a plain SMTP relay.
type SMTPMailer struct {
	from     string
	host     string
	user     string
	password string
	addr     string
}

func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		from:     cfg.MailFrom,
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
}

func (m *SMTPMailer) Enviar(ctx context.Context, msg Mensagem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e := montarEmail(m.from, msg)
	for _, a := range msg.Anexos {
		if _, err := e.Attach(bytes.NewReader(a.Conteudo), a.Nome, a.Tipo); err != nil {
			return fmt.Errorf("mailer: anexar %s: %w", a.Nome, err)
		}
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	return e.Send(m.addr, auth)
}

func montarEmail(from string, msg Mensagem) *email.Email {
	e := email.NewEmail()
	e.From = from
	e.To = msg.Para
	e.Subject = msg.Assunto
	e.HTML = []byte(msg.HTML)
	return e
}
