package dto

type CriarCategoriaRequest struct {
	Codigo    string  `json:"codigo"    validate:"required,min=1,max=20"`
	Nome      string  `json:"nome"      validate:"required,min=2,max=120"`
	Descricao *string `json:"descricao" validate:"omitempty,max=500"`
	Unidade   string  `json:"unidade"   validate:"required,unidade"`
	Preco     string  `json:"preco"     validate:"required"`
}

type AtualizarCategoriaRequest struct {
	Codigo    *string `json:"codigo"    validate:"omitempty,min=1,max=20"`
	Nome      *string `json:"nome"      validate:"omitempty,min=2,max=120"`
	Descricao *string `json:"descricao" validate:"omitempty,max=500"`
	Unidade   *string `json:"unidade"   validate:"omitempty,unidade"`
	Preco     *string `json:"preco"`
}

type CategoriaResponse struct {
	ID             string  `json:"id"`
	Codigo         string  `json:"codigo"`
	Nome           string  `json:"nome"`
	Descricao      *string `json:"descricao"`
	Unidade        string  `json:"unidade"`
	Preco          string  `json:"preco"`
	PrecoFormatado string  `json:"preco_formatado"`
}

type FormaPagamentoRequest struct {
	Descricao string `json:"descricao" validate:"required,min=2,max=80"`
	Sigla     string `json:"sigla"     validate:"required,min=1,max=10"`
	Status    string `json:"status"    validate:"omitempty,oneof=atv dtv"`
}

type FormaPagamentoResponse struct {
	ID        string `json:"id"`
	Descricao string `json:"descricao"`
	Sigla     string `json:"sigla"`
	Status    string `json:"status"`
}
