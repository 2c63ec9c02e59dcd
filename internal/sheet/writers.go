package sheet

import "github.com/tabwork/tabwork/internal/engine"

// The format writers adapt the codec's encoders to the exporter's
// registry. Register only the writers a deployment supports; the
// exporter reports anything else as unavailable.

type csvWriter struct{ c *Codec }

func (w csvWriter) Format() engine.Format { return engine.FormatCSV }

func (w csvWriter) Write(t *engine.Table, path string) error {
	return w.c.writeCSV(t, path, ',')
}

type excelWriter struct{ c *Codec }

func (w excelWriter) Format() engine.Format { return engine.FormatExcel }

func (w excelWriter) Write(t *engine.Table, path string) error {
	return w.c.writeExcel(t, path)
}

type pdfWriter struct{ c *Codec }

func (w pdfWriter) Format() engine.Format { return engine.FormatPDF }

func (w pdfWriter) Write(t *engine.Table, path string) error {
	return w.c.writePDF(t, path)
}

type parquetWriter struct{ c *Codec }

func (w parquetWriter) Format() engine.Format { return engine.FormatParquet }

func (w parquetWriter) Write(t *engine.Table, path string) error {
	return w.c.writeParquet(t, path)
}

// CSVWriter returns the CSV export writer.
func (c *Codec) CSVWriter() engine.FormatWriter { return csvWriter{c} }

// ExcelWriter returns the Excel export writer.
func (c *Codec) ExcelWriter() engine.FormatWriter { return excelWriter{c} }

// PDFWriter returns the PDF export writer.
func (c *Codec) PDFWriter() engine.FormatWriter { return pdfWriter{c} }

// ParquetWriter returns the Parquet export writer.
func (c *Codec) ParquetWriter() engine.FormatWriter { return parquetWriter{c} }
