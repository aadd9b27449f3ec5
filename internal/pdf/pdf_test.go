package pdf

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/radgen/radgen/internal/models"
)

func testDocument(reportText string) Document {
	return Document{
		Classification: models.Classification{
			Label:      models.LabelLungOpacity,
			Confidence: 0.72,
			Scores: map[string]float32{
				models.LabelCOVID:          0.08,
				models.LabelViralPneumonia: 0.12,
				models.LabelLungOpacity:    0.72,
				models.LabelNormal:         0.08,
			},
		},
		ReportText: reportText,
		AnalyzedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
}

func TestRenderProducesPDFHeader(t *testing.T) {
	data, err := Render(testDocument("FINDINGS: opacities noted.\n\nIMPRESSION: follow up advised."))
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Expected non-empty PDF buffer")
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("Expected PDF header bytes, got %q", data[:4])
	}
}

func TestRenderWithPatientInfo(t *testing.T) {
	doc := testDocument("IMPRESSION: normal study.")
	doc.Patient = models.PatientInfo{
		PatientID:          "PX-77",
		Age:                "45",
		Gender:             "Female",
		ReferringPhysician: "Dr. Okafor",
	}

	data, err := Render(doc)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("Expected PDF header bytes")
	}
}

func TestRenderWithEmbeddedImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}

	doc := testDocument("FINDINGS: see image.")
	doc.Image = buf.Bytes()
	doc.ImageFormat = "png"

	data, err := Render(doc)
	if err != nil {
		t.Fatalf("Render with image failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("Expected PDF header bytes")
	}
}

func TestRenderUnsupportedImageFormatIsSkipped(t *testing.T) {
	doc := testDocument("IMPRESSION: normal.")
	doc.Image = []byte{0x00, 0x01, 0x02}
	doc.ImageFormat = "bmp"

	data, err := Render(doc)
	if err != nil {
		t.Fatalf("Render should skip unsupported images, got: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("Expected PDF header bytes")
	}
}

func TestRenderLongReportPaginates(t *testing.T) {
	paragraph := strings.Repeat("The lung fields were reviewed in detail. ", 40)
	var long strings.Builder
	for i := 0; i < 30; i++ {
		long.WriteString(paragraph)
		long.WriteString("\n\n")
	}

	data, err := Render(testDocument(long.String()))
	if err != nil {
		t.Fatalf("Render of long report failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("Expected PDF header bytes")
	}

	short, err := Render(testDocument("IMPRESSION: normal."))
	if err != nil {
		t.Fatal(err)
	}
	if len(data) <= len(short) {
		t.Errorf("Expected long report (%d bytes) to outgrow short report (%d bytes)", len(data), len(short))
	}
}

func TestStripMarkdownBold(t *testing.T) {
	got := stripMarkdownBold("**FINDINGS:** clear lungs with **no** effusion")
	want := "FINDINGS: clear lungs with no effusion"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
