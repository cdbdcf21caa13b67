package dto

import "time"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CriarDemandaRequest carries money as text: "150.00", "150,00" and
// "1.234,56" are all accepted.
type CriarDemandaRequest struct {
	ClienteNome     string     `json:"cliente_nome"     validate:"required,min=2,max=150"`
	ClienteEmail    *string    `json:"cliente_email"    validate:"omitempty,email"`
	ClienteTelefone string     `json:"cliente_telefone" validate:"required,min=8,max=30"`
	CpfCnpj         *string    `json:"cpf_cnpj"         validate:"omitempty,max=18"`
	Descricao       string     `json:"descricao"        validate:"required,min=1"`
	Observacoes     *string    `json:"observacoes"`
	Preco           string     `json:"preco"            validate:"required"`
	Desconto        string     `json:"desconto"`
	PrevisaoEntrega *time.Time `json:"previsao_entrega"`
	Categorias      []string   `json:"categorias"       validate:"required,min=1,dive,uuid"`
	Fotos           []string   `json:"fotos"            validate:"omitempty,dive,startswith=data:image/"`
	FormasPagamento []string   `json:"formas_pagamento" validate:"omitempty,dive,uuid"`
	ResponsavelID   string     `json:"responsavel_id"   validate:"omitempty,uuid"`
}

// AtualizarDemandaRequest is a partial patch. A nil Categorias leaves the
// current selection untouched; a present one replaces it.
type AtualizarDemandaRequest struct {
	ClienteNome     *string    `json:"cliente_nome"     validate:"omitempty,min=2,max=150"`
	ClienteEmail    *string    `json:"cliente_email"    validate:"omitempty,email"`
	ClienteTelefone *string    `json:"cliente_telefone" validate:"omitempty,min=8,max=30"`
	CpfCnpj         *string    `json:"cpf_cnpj"         validate:"omitempty,max=18"`
	Descricao       *string    `json:"descricao"        validate:"omitempty,min=1"`
	Observacoes     *string    `json:"observacoes"`
	Preco           *string    `json:"preco"`
	Desconto        *string    `json:"desconto"`
	PrevisaoEntrega *time.Time `json:"previsao_entrega"`
	Status          *string    `json:"status"`
	ResponsavelID   *string    `json:"responsavel_id"   validate:"omitempty,uuid"`
	Categorias      []string   `json:"categorias"       validate:"omitempty,min=1,dive,uuid"`
}

// AvancarStatusRequest requires an explicit confirmation and the status the
// caller saw, so a concurrent advance cannot be applied twice.
type AvancarStatusRequest struct {
	StatusAtual string `json:"status_atual" validate:"required"`
	Confirmar   bool   `json:"confirmar"    validate:"required"`
}

// TransicionarStatusRequest sets a status explicitly; only the current one or
// its direct successor is accepted.
type TransicionarStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type CancelarDemandaRequest struct {
	Motivo *string `json:"motivo" validate:"omitempty,max=500"`
}

// DemandaFilter is bound from the query string.
type DemandaFilter struct {
	Busca  string `form:"busca"`
	Status string `form:"status"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type DemandaCategoriaResponse struct {
	ID          string    `json:"id"`
	CategoriaID string    `json:"categoria_id"`
	Nome        string    `json:"nome"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type DemandaFotoResponse struct {
	ID     string `json:"id"`
	Imagem string `json:"imagem"`
}

type DemandaPagamentoResponse struct {
	ID               string `json:"id"`
	FormaPagamentoID string `json:"forma_pagamento_id"`
}

type DemandaResponse struct {
	ID                 string                     `json:"id"`
	CodigoUnico        string                     `json:"codigo_unico"`
	LavanderiaID       string                     `json:"lavanderia_id"`
	ClienteNome        string                     `json:"cliente_nome"`
	ClienteEmail       *string                    `json:"cliente_email"`
	ClienteTelefone    string                     `json:"cliente_telefone"`
	CpfCnpj            *string                    `json:"cpf_cnpj"`
	Descricao          string                     `json:"descricao"`
	Observacoes        *string                    `json:"observacoes"`
	Preco              string                     `json:"preco"`
	Desconto           string                     `json:"desconto"`
	Total              string                     `json:"total"`
	Status             string                     `json:"status"`
	StatusRotulo       string                     `json:"status_rotulo"`
	ProximoStatus      *string                    `json:"proximo_status"`
	ResponsavelID      string                     `json:"responsavel_id"`
	PrevisaoEntrega    *time.Time                 `json:"previsao_entrega"`
	MotivoCancelamento *string                    `json:"motivo_cancelamento,omitempty"`
	CreatedAt          time.Time                  `json:"created_at"`
	UpdatedAt          time.Time                  `json:"updated_at"`
	Categorias         []DemandaCategoriaResponse `json:"categorias"`
	Fotos              []DemandaFotoResponse      `json:"fotos,omitempty"`
	Pagamentos         []DemandaPagamentoResponse `json:"pagamentos,omitempty"`
}

type DemandaListResponse struct {
	Data       []DemandaResponse `json:"data"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}
