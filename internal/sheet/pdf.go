package sheet

import (
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/tabwork/tabwork/internal/engine"
)

// Page geometry for the table grid, in millimeters on landscape A4.
const (
	pdfMargin     = 10.0
	pdfPageWidth  = 297.0
	pdfPageBottom = 190.0
	pdfHeaderH    = 7.0
	pdfRowH       = 6.0
	pdfMaxCellLen = 60
)

// writePDF encodes the table as a paginated grid, repeating the header
// row at the top of every page.
func (c *Codec) writePDF(t *engine.Table, path string) error {
	return c.atomicWrite(path, func(w io.Writer) error {
		return encodePDF(t, w)
	})
}

func encodePDF(t *engine.Table, w io.Writer) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	names := t.ColumnNames()
	colW := (pdfPageWidth - 2*pdfMargin) / float64(max(len(names), 1))

	writeHeader := func() {
		pdf.SetFont("Helvetica", "B", 8)
		pdf.SetFillColor(230, 230, 230)
		for _, name := range names {
			pdf.CellFormat(colW, pdfHeaderH, tr(clipText(name)), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 8)
	}

	pdf.AddPage()
	writeHeader()
	for i := 0; i < t.NumRows(); i++ {
		if pdf.GetY()+pdfRowH > pdfPageBottom {
			pdf.AddPage()
			writeHeader()
		}
		for _, cell := range t.Row(i) {
			pdf.CellFormat(colW, pdfRowH, tr(clipText(cell.String())), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	return pdf.Output(w)
}

// clipText keeps cell text short enough for a grid cell.
func clipText(s string) string {
	runes := []rune(s)
	if len(runes) <= pdfMaxCellLen {
		return s
	}
	return string(runes[:pdfMaxCellLen-1]) + "~"
}
