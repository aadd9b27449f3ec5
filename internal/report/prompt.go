package report

import (
	"fmt"
	"strings"

	"github.com/radgen/radgen/internal/models"
)

// conditionGuidance steers the LLM toward the radiological findings,
// impression and recommendations appropriate for each label.
type conditionGuidance struct {
	findings        string
	impression      string
	recommendations string
}

var guidance = map[string]conditionGuidance{
	models.LabelCOVID: {
		findings:        "Describe bilateral ground-glass opacities with peripheral and lower lobe distribution, the typical appearance of COVID-19 pneumonia, any air bronchograms or consolidation, and comment on the cardiac silhouette and pleural spaces.",
		impression:      "State findings consistent with COVID-19 pneumonia and mention the bilateral peripheral pattern typical of viral pneumonia.",
		recommendations: "Include RT-PCR confirmation, isolation protocols, clinical correlation with symptoms, a follow-up imaging timeline, and chest CT if clinically indicated.",
	},
	models.LabelViralPneumonia: {
		findings:        "Describe bilateral interstitial or mixed alveolar-interstitial infiltrates, the diffuse distribution typical of viral etiology, and how the appearance differs from bacterial pneumonia.",
		impression:      "State findings consistent with viral pneumonia and note the bilateral interstitial pattern.",
		recommendations: "Include supportive care, symptom monitoring, a follow-up imaging schedule, clinical evaluation, and antiviral therapy if a specific virus is identified.",
	},
	models.LabelLungOpacity: {
		findings:        "Describe the location, extent and character of the opacities, a differential including infection, inflammation or fluid, any air bronchograms or volume loss, and the distribution pattern.",
		impression:      "State the presence of lung opacities with a differential diagnosis and the need for clinical correlation.",
		recommendations: "Include clinical correlation with symptoms and vitals, laboratory studies (CBC, inflammatory markers), chest CT for better characterization, and a follow-up imaging timeline.",
	},
	models.LabelNormal: {
		findings:        "Confirm clear lung fields bilaterally with no consolidation, a normal cardiac silhouette and mediastinal contours, normal diaphragmatic contours and sharp costophrenic angles.",
		impression:      "State a normal chest radiograph with no acute cardiopulmonary abnormalities.",
		recommendations: "Include routine follow-up as clinically appropriate, continued monitoring if symptomatic, and age-appropriate screening; no immediate imaging follow-up required.",
	},
}

func guidanceFor(label string) conditionGuidance {
	if g, ok := guidance[label]; ok {
		return g
	}
	return guidance[models.LabelNormal]
}

// BuildPrompt renders the instruction the LLM receives. The model is
// framed as a formatting assistant for a radiologist, not as the
// diagnostician; only the classification, never the image, is described.
func BuildPrompt(req Request) string {
	g := guidanceFor(req.Classification.Label)

	return fmt.Sprintf(`You are an expert assistant for a radiologist, skilled at structuring AI-driven analysis into a professional report format.

An AI image analysis model has processed a chest X-ray and produced the following preliminary result:

%s

AI ANALYSIS RESULTS:
- Predicted Condition: %s
- AI Confidence Level: %.1f%%
- Analysis Date: %s

Based on the predicted condition '%s', draft a radiology report using the guidance and structure below. Format the information professionally; do not make a diagnosis.

REPORT STRUCTURE TO FOLLOW:

CHEST X-RAY INTERPRETATION REPORT

CLINICAL INDICATION: Evaluation of chest for potential abnormalities.

TECHNIQUE: Standard chest radiography.

FINDINGS:
[Describe the typical radiological findings for '%s'.]
Guidance for Findings: %s

IMPRESSION:
[Write a concise summary for '%s'.]
Guidance for Impression: %s

RECOMMENDATIONS:
[Provide a numbered list of appropriate recommendations for '%s'.]
Guidance for Recommendations: %s

DISCLAIMER: This report was generated with the assistance of an AI model and should be reviewed and validated by a qualified radiologist before being used for clinical decision-making.`,
		PatientContext(req.Patient),
		req.Classification.Label,
		req.Classification.Confidence*100,
		req.AnalyzedAt.Format("2006-01-02 15:04:05"),
		req.Classification.Label,
		req.Classification.Label, g.findings,
		req.Classification.Label, g.impression,
		req.Classification.Label, g.recommendations,
	)
}

// PatientContext renders the optional patient fields for the prompt
// and the fallback templates.
func PatientContext(p models.PatientInfo) string {
	if !p.HasData() {
		return "PATIENT INFORMATION: Not provided"
	}

	var b strings.Builder
	b.WriteString("PATIENT INFORMATION:")
	writeField := func(name, value string) {
		if value != "" {
			b.WriteString("\n- " + name + ": " + value)
		}
	}
	writeField("Patient ID", p.PatientID)
	writeField("Age", p.Age)
	writeField("Gender", p.Gender)
	writeField("Clinical History", p.ClinicalHistory)
	writeField("Referring Physician", p.ReferringPhysician)

	return b.String()
}
