package models

import "time"

// Canonical condition labels emitted by the chest X-ray classifier.
const (
	LabelCOVID          = "COVID-19"
	LabelViralPneumonia = "Viral Pneumonia"
	LabelLungOpacity    = "Lung Opacity"
	LabelNormal         = "Normal"
)

// Labels returns the fixed, exhaustive label set in model output order.
func Labels() []string {
	return []string{LabelCOVID, LabelViralPneumonia, LabelLungOpacity, LabelNormal}
}

// IsValidLabel reports whether label belongs to the fixed label set.
func IsValidLabel(label string) bool {
	for _, l := range Labels() {
		if l == label {
			return true
		}
	}
	return false
}

// Classification is the result of one forward pass through the model.
type Classification struct {
	Label      string             `json:"label"`
	Confidence float32            `json:"confidence"`
	Scores     map[string]float32 `json:"scores"`
}

// PatientInfo is optional context supplied with an upload. All fields
// may be empty; empty fields are omitted from prompts and the PDF.
type PatientInfo struct {
	PatientID          string `json:"patient_id,omitempty"`
	Age                string `json:"age,omitempty"`
	Gender             string `json:"gender,omitempty"`
	ClinicalHistory    string `json:"clinical_history,omitempty"`
	ReferringPhysician string `json:"referring_physician,omitempty"`
}

// HasData reports whether any patient field was provided.
func (p PatientInfo) HasData() bool {
	return p.PatientID != "" || p.Age != "" || p.Gender != "" ||
		p.ClinicalHistory != "" || p.ReferringPhysician != ""
}

// AnalysisSession represents one completed X-ray analysis.
type AnalysisSession struct {
	ID             string          `json:"id"`
	ImagePath      string          `json:"image_path"`
	ImageURL       string          `json:"image_url"`
	ImageWidth     int             `json:"image_width"`
	ImageHeight    int             `json:"image_height"`
	Classification *Classification `json:"classification,omitempty"`
	ReportText     string          `json:"report_text,omitempty"`
	ReportProvider string          `json:"report_provider,omitempty"`
	Patient        PatientInfo     `json:"patient,omitempty"`
	Warnings       []string        `json:"warnings,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Interpretation describes how a predicted condition should be presented.
type Interpretation struct {
	Description string `json:"description"`
	Urgency     string `json:"urgency"`
}

var interpretations = map[string]Interpretation{
	LabelCOVID:          {Description: "COVID-19 pneumonia detected", Urgency: "High"},
	LabelViralPneumonia: {Description: "Viral pneumonia detected", Urgency: "High"},
	LabelLungOpacity:    {Description: "Lung opacities detected", Urgency: "Medium"},
	LabelNormal:         {Description: "No abnormalities detected", Urgency: "Low"},
}

// Interpret returns the presentation details for a label.
func Interpret(label string) Interpretation {
	if in, ok := interpretations[label]; ok {
		return in
	}
	return Interpretation{Description: "Unknown condition", Urgency: "Unknown"}
}

// ConfidenceBand buckets a confidence score for display.
func ConfidenceBand(confidence float32) string {
	switch {
	case confidence > 0.8:
		return "High"
	case confidence > 0.6:
		return "Moderate"
	default:
		return "Low"
	}
}
