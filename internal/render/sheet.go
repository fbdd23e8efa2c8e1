package render

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	"github.com/skip2/go-qrcode"
)

const dotsPerInch = 300.0

var errEmptyLayout = errors.New("layout needs at least one column and one row")

// pageSizes maps the stored page format onto the fpdf size name.
var pageSizes = map[string]string{
	"A4":     "A4",
	"LETTER": "Letter",
}

// Layout places square codes on a grid. Lengths are millimetres.
type Layout struct {
	PageFormat string
	MarginMM   float64
	GapMM      float64
	SizeMM     float64
	Cols       int
	Rows       int
}

func (l Layout) PerPage() int {
	return l.Cols * l.Rows
}

// Position returns the top-left corner of the slot-th code on its page.
func (l Layout) Position(slot int) (x, y float64) {
	pos := slot % l.PerPage()
	col := pos % l.Cols
	row := pos / l.Cols

	x = l.MarginMM + float64(col)*(l.SizeMM+l.GapMM)
	y = l.MarginMM + float64(row)*(l.SizeMM+l.GapMM)

	return x, y
}

type SheetMeta struct {
	Title   string
	Creator string
}

// WriteSheet renders one QR code per content string, filling pages left to
// right and top to bottom, and writes the PDF to w.
func WriteSheet(w io.Writer, layout Layout, meta SheetMeta, contents []string) error {
	if layout.Cols < 1 || layout.Rows < 1 {
		return errEmptyLayout
	}

	size, ok := pageSizes[layout.PageFormat]
	if !ok {
		return fmt.Errorf("unsupported page format %q", layout.PageFormat)
	}

	pdf := fpdf.New("P", "mm", size, "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator(meta.Creator, true)
	pdf.SetAuthor(meta.Creator, true)
	pdf.SetTitle(meta.Title, true)

	px := int(layout.SizeMM / 25.4 * dotsPerInch)
	opts := fpdf.ImageOptions{ImageType: "PNG"}

	for i, content := range contents {
		if i%layout.PerPage() == 0 {
			pdf.AddPage()
		}

		png, err := CodePNG(content, px)
		if err != nil {
			return fmt.Errorf("CodePNG -> %w", err)
		}

		name := fmt.Sprintf("qr-%d", i)
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))

		x, y := layout.Position(i)
		pdf.ImageOptions(name, x, y, layout.SizeMM, layout.SizeMM, false, opts, 0, "")

		if err = pdf.Error(); err != nil {
			return fmt.Errorf("pdf.ImageOptions -> %w", err)
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf.Output -> %w", err)
	}

	return nil
}

// CodePNG encodes content as a borderless QR code with high error
// correction, px pixels wide.
func CodePNG(content string, px int) ([]byte, error) {
	code, err := qrcode.New(content, qrcode.High)
	if err != nil {
		return nil, err
	}
	code.DisableBorder = true

	if px < 64 {
		px = 64
	}

	return code.PNG(px)
}
