package report

import (
	"context"
	"fmt"

	"github.com/radgen/radgen/internal/models"
)

// Template is the deterministic fallback used when the remote service
// is unavailable. It produces a complete report from fixed text so the
// pipeline still finishes offline.
type Template struct{}

func NewTemplate() *Template { return &Template{} }

func (t *Template) Name() string { return "template" }

func (t *Template) GenerateReport(_ context.Context, req Request) (string, error) {
	body, ok := templateBodies[req.Classification.Label]
	if !ok {
		return "", fmt.Errorf("no report template for condition %q", req.Classification.Label)
	}

	return fmt.Sprintf(`CHEST X-RAY INTERPRETATION REPORT

%s

CLINICAL INDICATION: %s

TECHNIQUE: Standard chest radiography

FINDINGS: %s (AI confidence: %.1f%%.) %s

IMPRESSION: %s

RECOMMENDATIONS:
%s

Report generated: %s`,
		PatientContext(req.Patient),
		body.indication,
		body.findingsLead,
		req.Classification.Confidence*100,
		body.findings,
		body.impression,
		body.recommendations,
		req.AnalyzedAt.Format("2006-01-02 15:04:05"),
	), nil
}

type templateBody struct {
	indication      string
	findingsLead    string
	findings        string
	impression      string
	recommendations string
}

var templateBodies = map[string]templateBody{
	models.LabelCOVID: {
		indication:   "Evaluation for suspected COVID-19 pneumonia",
		findingsLead: "The chest radiograph demonstrates findings consistent with COVID-19 pneumonia",
		findings: "Bilateral ground-glass opacities are observed, predominantly in the peripheral and lower lobe distribution. " +
			"The pattern is characteristic of viral pneumonia with COVID-19 features. The cardiac silhouette appears normal in size and contour. " +
			"No pleural effusion or pneumothorax is identified. The mediastinal contours are unremarkable.",
		impression: "Radiographic findings highly suggestive of COVID-19 pneumonia with bilateral peripheral ground-glass opacities.",
		recommendations: `1. RT-PCR testing for COVID-19 confirmation and clinical correlation
2. Patient isolation per institutional COVID-19 protocols
3. Follow-up chest imaging in 7-10 days or if clinical condition deteriorates
4. Consider chest CT for better characterization if symptoms worsen
5. Monitor oxygen saturation and respiratory status closely`,
	},
	models.LabelViralPneumonia: {
		indication:   "Evaluation for suspected viral pneumonia",
		findingsLead: "The chest radiograph shows findings consistent with viral pneumonia",
		findings: "Bilateral interstitial infiltrates are observed with a diffuse pattern throughout both lung fields. " +
			"The appearance suggests viral etiology rather than bacterial pneumonia. The cardiac silhouette is within normal limits. " +
			"No significant pleural effusion is noted.",
		impression: "Findings consistent with viral pneumonia, characterized by bilateral interstitial infiltrates.",
		recommendations: `1. Clinical correlation with symptoms and vital signs
2. Supportive care and symptomatic treatment as indicated
3. Follow-up chest radiograph in 7-10 days to assess progression
4. Consider viral studies if specific pathogen identification needed
5. Monitor for complications and respiratory deterioration`,
	},
	models.LabelLungOpacity: {
		indication:   "Evaluation of lung opacities",
		findingsLead: "The chest radiograph reveals lung opacities",
		findings: "Areas of increased density are noted, suggesting possible infectious process, inflammatory changes, or fluid accumulation. " +
			"The distribution and characteristics require clinical correlation for definitive diagnosis. The cardiac silhouette appears normal. " +
			"Costophrenic angles are preserved.",
		impression: "Lung opacities present with differential diagnosis including pneumonia, pulmonary edema, or inflammatory process.",
		recommendations: `1. Clinical correlation with patient symptoms, vital signs, and physical examination
2. Complete blood count and inflammatory markers (CRP, ESR, procalcitonin)
3. Consider chest CT for better characterization of opacities
4. Follow-up imaging in 48-72 hours to assess response to treatment
5. Appropriate antimicrobial therapy if infectious etiology suspected`,
	},
	models.LabelNormal: {
		indication:   "Routine chest evaluation",
		findingsLead: "The chest radiograph appears normal",
		findings: "The lungs are clear bilaterally with no evidence of consolidation, pneumothorax, or pleural effusion. " +
			"The cardiac silhouette is normal in size and configuration. The mediastinal contours are unremarkable. " +
			"The diaphragmatic contours are normal and the costophrenic angles are sharp.",
		impression: "Normal chest radiograph. No acute cardiopulmonary abnormalities detected.",
		recommendations: `1. No immediate follow-up imaging required unless clinically indicated
2. Continue routine health maintenance and age-appropriate screening
3. Return for imaging if respiratory symptoms develop
4. Clinical follow-up as deemed appropriate by treating physician`,
	},
}
