// Package pdf assembles the downloadable analysis report: a summary
// table, optional patient details, the X-ray image, the narrative
// report body, and a medical disclaimer.
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/radgen/radgen/internal/models"
)

// ErrRender indicates PDF assembly failed.
var ErrRender = errors.New("pdf render failed")

// Document is everything the renderer needs for one report.
type Document struct {
	Classification models.Classification
	Patient        models.PatientInfo
	ReportText     string
	AnalyzedAt     time.Time
	// Image holds the original upload bytes; ImageFormat is the
	// format name reported by image.Decode ("jpeg", "png", "gif").
	Image       []byte
	ImageFormat string
}

const disclaimer = "MEDICAL DISCLAIMER: This report is generated by an AI system for educational and research purposes only. " +
	"This analysis should not be used as the sole basis for medical diagnosis or treatment decisions. " +
	"Always consult with qualified healthcare professionals for proper medical evaluation and care."

// Render produces the PDF byte stream. Long report text flows onto
// additional pages automatically.
func Render(doc Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "Letter", "")
	pdf.SetTitle("Medical Image Analysis Report", false)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	writeTitle(pdf)
	writeSummaryTable(pdf, doc)

	if doc.Patient.HasData() {
		writePatientTable(pdf, doc.Patient)
	}

	if len(doc.Image) > 0 {
		embedImage(pdf, doc.Image, doc.ImageFormat)
	}

	writeReportBody(pdf, doc.ReportText)
	writeDisclaimer(pdf)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	if buf.Len() == 0 {
		return nil, fmt.Errorf("%w: empty output", ErrRender)
	}
	return buf.Bytes(), nil
}

func writeTitle(pdf *gofpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(0, 0, 128)
	pdf.CellFormat(0, 12, "MEDICAL IMAGE ANALYSIS REPORT", "", 1, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)
}

func sectionHeader(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(0, 0, 128)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(1)
}

func tableRow(pdf *gofpdf.Fpdf, key, value string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(50, 7, key, "1", 0, "L", true, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(110, 7, value, "1", 1, "L", false, 0, "")
}

func writeSummaryTable(pdf *gofpdf.Fpdf, doc Document) {
	in := models.Interpret(doc.Classification.Label)

	tableRow(pdf, "Analysis Date:", doc.AnalyzedAt.Format("2006-01-02 15:04:05"))
	tableRow(pdf, "Predicted Condition:", doc.Classification.Label)
	tableRow(pdf, "AI Confidence:", fmt.Sprintf("%.1f%% (%s)",
		doc.Classification.Confidence*100, models.ConfidenceBand(doc.Classification.Confidence)))
	tableRow(pdf, "Urgency:", in.Urgency)
	tableRow(pdf, "System:", "radgen chest X-ray analysis")
	pdf.Ln(6)
}

func writePatientTable(pdf *gofpdf.Fpdf, p models.PatientInfo) {
	sectionHeader(pdf, "PATIENT INFORMATION")

	row := func(key, value string) {
		if value != "" {
			tableRow(pdf, key, value)
		}
	}
	row("Patient ID:", p.PatientID)
	row("Age:", p.Age)
	row("Gender:", p.Gender)
	row("Clinical History:", p.ClinicalHistory)
	row("Referring Physician:", p.ReferringPhysician)
	pdf.Ln(6)
}

func embedImage(pdf *gofpdf.Fpdf, data []byte, format string) {
	imageType, ok := imageTypeFor(format)
	if !ok {
		slog.Warn("Skipping PDF image embed for unsupported format", "format", format)
		return
	}

	sectionHeader(pdf, "CHEST X-RAY IMAGE")

	opts := gofpdf.ImageOptions{ImageType: imageType}
	info := pdf.RegisterImageOptionsReader("xray", opts, bytes.NewReader(data))
	if pdf.Err() || info == nil {
		// Image embedding is best-effort; the report text still renders.
		slog.Warn("Failed to register PDF image", "err", pdf.Error())
		pdf.ClearError()
		return
	}

	const maxSide = 100.0 // mm
	w, h := info.Width(), info.Height()
	scale := maxSide / w
	if s := maxSide / h; s < scale {
		scale = s
	}
	if scale > 1 {
		scale = 1
	}

	pdf.ImageOptions("xray", pdf.GetX(), pdf.GetY(), w*scale, h*scale, true, opts, 0, "")
	pdf.Ln(6)
}

func imageTypeFor(format string) (string, bool) {
	switch strings.ToLower(format) {
	case "jpeg", "jpg":
		return "JPG", true
	case "png":
		return "PNG", true
	case "gif":
		return "GIF", true
	default:
		return "", false
	}
}

func writeReportBody(pdf *gofpdf.Fpdf, text string) {
	sectionHeader(pdf, "DETAILED MEDICAL REPORT")

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		// All-caps short lines are section headers in the report text.
		if para == strings.ToUpper(para) && len(para) < 50 && !strings.ContainsAny(para, "\n") {
			pdf.SetFont("Helvetica", "B", 11)
		} else {
			pdf.SetFont("Helvetica", "", 10)
		}
		pdf.MultiCell(0, 5, stripMarkdownBold(para), "", "L", false)
		pdf.Ln(2)
	}
}

// stripMarkdownBold removes the **bold** markers LLMs tend to emit.
func stripMarkdownBold(s string) string {
	return strings.ReplaceAll(s, "**", "")
}

func writeDisclaimer(pdf *gofpdf.Fpdf) {
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(200, 0, 0)
	pdf.MultiCell(0, 4, disclaimer, "", "C", false)
	pdf.SetTextColor(0, 0, 0)
}
