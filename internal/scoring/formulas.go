package scoring

// Component weights for the institutional score formulas. Each table sums to
// 1, so a formula over components in [0,100] stays in [0,100] without
// clamping; results are never rounded before classification.

// EnglishComponents holds the raw English course components.
type EnglishComponents struct {
	Assessment    float64 `json:"assessment"`
	Writing       float64 `json:"writing"`
	Presentation1 float64 `json:"presentation1"`
	Presentation2 float64 `json:"presentation2"`
	Presentation3 float64 `json:"presentation3"`
	Participation float64 `json:"participation"`
	Midterm       float64 `json:"midterm"`
}

// ICTComponents holds the raw ICT course components.
type ICTComponents struct {
	Quiz         float64 `json:"quiz"`
	Lab          float64 `json:"lab"`
	Presentation float64 `json:"presentation"`
	Exam         float64 `json:"exam"`
}

// ADIAKComponents holds the raw ADIAK course components.
type ADIAKComponents struct {
	Presentation  float64 `json:"presentation"`
	Participation float64 `json:"participation"`
	Midterm       float64 `json:"midterm"`
	Final         float64 `json:"final"`
}

// HistoryComponents holds the raw History course components.
type HistoryComponents struct {
	Seminar      float64 `json:"seminar"`
	Interactive  float64 `json:"interactive"`
	Presentation float64 `json:"presentation"`
	Midterm      float64 `json:"midterm"`
	Final        float64 `json:"final"`
}

// EnglishPoint combines English components into a single 0-100 point.
func EnglishPoint(c EnglishComponents) float64 {
	return 0.10*c.Assessment +
		0.20*c.Writing +
		0.10*c.Presentation1 +
		0.10*c.Presentation2 +
		0.10*c.Presentation3 +
		0.10*c.Participation +
		0.30*c.Midterm
}

// ICTPoint combines ICT components into a single 0-100 point.
func ICTPoint(c ICTComponents) float64 {
	return 0.20*c.Quiz + 0.20*c.Lab + 0.20*c.Presentation + 0.40*c.Exam
}

// ADIAKPoint combines ADIAK components into a single 0-100 point.
func ADIAKPoint(c ADIAKComponents) float64 {
	return 0.15*c.Presentation + 0.15*c.Participation + 0.30*c.Midterm + 0.40*c.Final
}

// HistoryPoint combines History components into a single 0-100 point.
func HistoryPoint(c HistoryComponents) float64 {
	return 0.15*c.Seminar + 0.10*c.Interactive + 0.15*c.Presentation + 0.25*c.Midterm + 0.35*c.Final
}
