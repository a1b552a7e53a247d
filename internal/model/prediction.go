package model

// Class labels produced by the claim classifier. The label values are fixed
// by the trained model's output ordering.
const (
	LabelHome = 0
	LabelAuto = 1
)

// ClassName returns the human-readable name for a class label, or "unknown"
// for anything outside {0, 1}.
func ClassName(label int) string {
	switch label {
	case LabelHome:
		return "home"
	case LabelAuto:
		return "auto"
	default:
		return "unknown"
	}
}

// Prediction holds the outcome of scoring a single claim text.
type Prediction struct {
	// Label is the winning class: 0 (home) or 1 (auto).
	Label int `json:"label"`
	// Class is the name of the winning class.
	Class string `json:"class"`
	// Scores holds the model's per-class scores, indexed by label.
	Scores []float32 `json:"scores"`
}
