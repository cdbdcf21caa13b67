package dto

import "time"

type DashboardResponse struct {
	PorStatus                map[string]int64 `json:"por_status"`
	Total                    int64            `json:"total"`
	ReceitaEntregue          string           `json:"receita_entregue"`
	ReceitaEntregueFormatada string           `json:"receita_entregue_formatada"`
}

// RelatorioFilter is bound from the query string. Dates are YYYY-MM-DD and
// the end date is inclusive.
type RelatorioFilter struct {
	Inicio      string `form:"inicio"`
	Fim         string `form:"fim"`
	Responsavel string `form:"responsavel"`
}

type RelatorioLinha struct {
	DemandaID   string    `json:"demanda_id"`
	CodigoUnico string    `json:"codigo_unico"`
	Lavanderia  string    `json:"lavanderia"`
	ClienteNome string    `json:"cliente_nome"`
	Descricao   string    `json:"descricao"`
	Categorias  []string  `json:"categorias"`
	Responsavel string    `json:"responsavel"`
	Status      string    `json:"status"`
	Preco       string    `json:"preco"`
	Desconto    string    `json:"desconto"`
	CriadoEm    time.Time `json:"criado_em"`
}

type RelatorioResponse struct {
	Linhas         []RelatorioLinha `json:"linhas"`
	Quantidade     int              `json:"quantidade"`
	Total          string           `json:"total"`
	TotalFormatado string           `json:"total_formatado"`
}
