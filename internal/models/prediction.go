package models

// PredictionResult is the display-ready record returned for a single prediction
type PredictionResult struct {
	Target        Target              `json:"target"`
	Value         float64             `json:"value"`
	RangeMin      float64             `json:"range_min"`
	RangeMax      float64             `json:"range_max"`
	Confidence    int                 `json:"confidence"`
	Category      string              `json:"category"`
	Source        Source              `json:"source"`
	Outcome       Outcome             `json:"outcome,omitempty"`
	Probabilities map[Outcome]float64 `json:"probabilities,omitempty"`
}

// FromModel reports whether a trained model produced the value
func (r *PredictionResult) FromModel() bool {
	return r.Source == SourceModel
}
