package infra

// pdf.go renders the demand receipt ("nota") with go-pdf/fpdf:
//   - tenant header (name, address, phone, email)
//   - demand code, dates and responsible user
//   - client block
//   - active categories with their current catalog name
//   - price, discount and total
//   - payment methods

import (
	"bytes"
	"fmt"

	"lavanderia/internal/model"
	"lavanderia/internal/moeda"

	"github.com/go-pdf/fpdf"
)

// NotaDemanda gathers everything printed on a receipt.
type NotaDemanda struct {
	Lavanderia      model.Lavanderia
	Demanda         model.Demanda
	Responsavel     string
	FormasPagamento []string
}

// NomeArquivo is the attachment/download name of the receipt.
func (n NotaDemanda) NomeArquivo() string {
	return fmt.Sprintf("nota_%s.pdf", n.Demanda.CodigoUnico)
}

// GerarNotaPDF renders an A5 receipt and returns the PDF bytes.
func GerarNotaPDF(nota NotaDemanda) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 20
	d := nota.Demanda
	lav := nota.Lavanderia

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 7, tr(lav.Nome), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 4, tr(lav.Endereco), "", 1, "C", false, 0, "")
	pdf.CellFormat(contentW, 4, tr(lav.Telefone+"  |  "+lav.Email), "", 1, "C", false, 0, "")
	pdf.Ln(3)
	pdf.Line(10, pdf.GetY(), pageW-10, pdf.GetY())
	pdf.Ln(3)

	// ── Demand ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, tr("Nota de serviço "+d.CodigoUnico), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	linha(pdf, tr, contentW, "Entrada", d.CreatedAt.Format("02/01/2006 15:04"))
	if d.PrevisaoEntrega != nil {
		linha(pdf, tr, contentW, "Previsão de entrega", d.PrevisaoEntrega.Format("02/01/2006"))
	}
	linha(pdf, tr, contentW, "Status", d.Status.Rotulo())
	if nota.Responsavel != "" {
		linha(pdf, tr, contentW, "Responsável", nota.Responsavel)
	}
	pdf.Ln(2)

	// ── Client ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(contentW, 5, "Cliente", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	linha(pdf, tr, contentW, "Nome", d.ClienteNome)
	linha(pdf, tr, contentW, "Telefone", d.ClienteTelefone)
	if d.ClienteEmail != nil {
		linha(pdf, tr, contentW, "Email", *d.ClienteEmail)
	}
	if d.CpfCnpj != nil {
		linha(pdf, tr, contentW, "CPF/CNPJ", *d.CpfCnpj)
	}
	pdf.Ln(2)

	// ── Items ────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(contentW, 5, tr("Serviços"), "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	for _, c := range d.Categorias {
		if c.Status != model.SoftAtivo {
			continue
		}
		pdf.CellFormat(contentW, 5, tr("• "+c.Nome), "", 1, "L", false, 0, "")
	}
	pdf.SetFont("Helvetica", "I", 8)
	pdf.MultiCell(contentW, 4, tr(d.Descricao), "", "L", false)
	pdf.Ln(2)

	// ── Totals ───────────────────────────────────────────────────────────────
	colL := contentW * 0.6
	colR := contentW * 0.4
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(colL, 5, tr("Preço:"), "", 0, "L", false, 0, "")
	pdf.CellFormat(colR, 5, tr(moeda.FormatarBRL(d.Preco)), "", 1, "R", false, 0, "")
	if !d.Desconto.IsZero() {
		pdf.CellFormat(colL, 5, "Desconto:", "", 0, "L", false, 0, "")
		pdf.CellFormat(colR, 5, tr("-"+moeda.FormatarBRL(d.Desconto)), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(colL, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(colR, 6, tr(moeda.FormatarBRL(d.Total())), "", 1, "R", false, 0, "")

	if len(nota.FormasPagamento) > 0 {
		pdf.SetFont("Helvetica", "", 8)
		for _, f := range nota.FormasPagamento {
			pdf.CellFormat(contentW, 4, tr("Pagamento: "+f), "", 1, "L", false, 0, "")
		}
	}

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, tr("Obrigado pela preferência!"), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render nota %s: %w", d.CodigoUnico, err)
	}
	return buf.Bytes(), nil
}

func linha(pdf *fpdf.Fpdf, tr func(string) string, w float64, rotulo, valor string) {
	pdf.CellFormat(w*0.35, 4, tr(rotulo+":"), "", 0, "L", false, 0, "")
	pdf.CellFormat(w*0.65, 4, tr(valor), "", 1, "L", false, 0, "")
}
