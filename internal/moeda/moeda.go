// Package moeda parses and formats Brazilian real amounts.
package moeda

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Parse reads a non-negative money amount written either way:
// "150", "150.00", "150,00", "1.234,56", "1,234.56" or "R$ 1.234,56".
// A lone dot is the decimal separator. More than two fraction digits is an
// error, so "1.234" must be written "1.234,00" or "1234".
func Parse(s string) (decimal.Decimal, error) {
	orig := s
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R$")
	s = strings.NewReplacer(" ", "", "\u00a0", "").Replace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("valor monetário vazio")
	}

	virgula := strings.LastIndex(s, ",")
	ponto := strings.LastIndex(s, ".")
	switch {
	case virgula >= 0 && ponto >= 0:
		if virgula > ponto {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case virgula >= 0:
		if strings.Count(s, ",") > 1 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case ponto >= 0 && strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}
	if i := strings.Index(s, "."); i >= 0 && len(s)-i-1 > 2 {
		return decimal.Zero, fmt.Errorf("valor monetário com mais de duas casas decimais: %q", orig)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("valor monetário inválido: %q", orig)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("valor monetário negativo: %q", orig)
	}
	return d, nil
}

// FormatarBRL renders d the pt-BR way: "R$ 1.234,56".
func FormatarBRL(d decimal.Decimal) string {
	negativo := d.IsNegative()
	partes := strings.SplitN(d.Abs().StringFixed(2), ".", 2)
	inteiro := partes[0]

	var b strings.Builder
	for i, r := range inteiro {
		if i > 0 && (len(inteiro)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	out := "R$ " + b.String() + "," + partes[1]
	if negativo {
		out = "-" + out
	}
	return out
}

// LimitarDesconto clamps desconto into [0, preco].
func LimitarDesconto(preco, desconto decimal.Decimal) decimal.Decimal {
	if desconto.IsNegative() {
		return decimal.Zero
	}
	if desconto.GreaterThan(preco) {
		return preco
	}
	return desconto
}
