package dto

import "time"

// LavanderiaRequest is used for create and for full-record update.
type LavanderiaRequest struct {
	Nome                 string   `json:"nome"                  validate:"required,min=2,max=120"`
	Endereco             string   `json:"endereco"              validate:"required,max=255"`
	Telefone             string   `json:"telefone"              validate:"required,max=30"`
	Email                string   `json:"email"                 validate:"required,email"`
	HorarioFuncionamento *string  `json:"horario_funcionamento" validate:"omitempty,max=120"`
	PrazoEntregaDias     int      `json:"prazo_entrega_dias"    validate:"omitempty,min=1,max=365"`
	Logo                 *string  `json:"logo"                  validate:"omitempty,startswith=data:image/"`
	Status               string   `json:"status"                validate:"omitempty,oneof=atv inativo"`
	Papeis               []string `json:"papeis"                validate:"omitempty,dive,min=2,max=40"`
}

type LavanderiaResponse struct {
	ID                   string    `json:"id"`
	Nome                 string    `json:"nome"`
	Endereco             string    `json:"endereco"`
	Telefone             string    `json:"telefone"`
	Email                string    `json:"email"`
	HorarioFuncionamento *string   `json:"horario_funcionamento"`
	PrazoEntregaDias     int       `json:"prazo_entrega_dias"`
	Logo                 *string   `json:"logo"`
	Status               string    `json:"status"`
	Papeis               []string  `json:"papeis"`
	CreatedAt            time.Time `json:"created_at"`
}
