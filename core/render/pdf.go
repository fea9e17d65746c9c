package render

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/gaurav-prasanna/threadpipe/core"
	"github.com/jung-kurt/gofpdf"
)

var (
	italicPattern     = regexp.MustCompile(`(?:^|\s)\*([^*]+)\*(?:\s|$)`)
	inlineCodePattern = regexp.MustCompile("`([^`]+)`")
	imagePattern      = regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`)
	linkPattern       = regexp.MustCompile(`\[([^\]]*)\]\(([^)]+)\)`)
	numberedPattern   = regexp.MustCompile(`^\d+\.\s`)
)

// PDFRenderer lays out the Markdown digest as a PDF document.
// Images are not embedded; their alt text is kept.
type PDFRenderer struct{}

// NewPDFRenderer creates a PDFRenderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Render converts the digest of items into PDF bytes.
func (r *PDFRenderer) Render(items []core.ContentItem) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, line := range strings.Split(digest(items), "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			pdf.Ln(3)
		case trimmed == "---":
			pdf.AddPage()
		case strings.HasPrefix(trimmed, "#"):
			level := len(trimmed) - len(strings.TrimLeft(trimmed, "#"))
			renderHeading(pdf, tr(cleanInlineMarkdown(strings.TrimLeft(trimmed, "# "))), level)
		case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* "):
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, tr("• "+cleanInlineMarkdown(trimmed[2:])), "", "L", false)
		case numberedPattern.MatchString(trimmed):
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, tr(cleanInlineMarkdown(trimmed)), "", "L", false)
		default:
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, tr(cleanInlineMarkdown(line)), "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension for PDF output.
func (r *PDFRenderer) Extension() string {
	return ".pdf"
}

func renderHeading(pdf *gofpdf.Fpdf, text string, level int) {
	sizes := map[int]float64{1: 16, 2: 13, 3: 11}
	size, ok := sizes[level]
	if !ok {
		size = 10
	}
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", size)
	pdf.MultiCell(0, size*0.6, text, "", "L", false)
	pdf.Ln(1)
}

// cleanInlineMarkdown strips inline Markdown syntax. Links keep their
// target since a printed page cannot be clicked.
func cleanInlineMarkdown(text string) string {
	text = italicPattern.ReplaceAllString(text, " $1 ")
	text = inlineCodePattern.ReplaceAllString(text, "$1")
	text = imagePattern.ReplaceAllString(text, "[image: $1]")
	text = linkPattern.ReplaceAllStringFunc(text, func(m string) string {
		sub := linkPattern.FindStringSubmatch(m)
		if sub[1] == sub[2] || sub[1] == "" {
			return sub[2]
		}
		return sub[1] + " <" + sub[2] + ">"
	})
	return strings.TrimSpace(text)
}
