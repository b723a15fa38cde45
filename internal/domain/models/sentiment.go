package models

// Sentiment is the Fear & Greed reading with its derived label and style class.
type Sentiment struct {
	Index int    `json:"index"`
	State State  `json:"state"`
	Label string `json:"label"`
	Class string `json:"class"`
}

// NewSentiment derives label and class from a score.
func NewSentiment(score int) Sentiment {
	return Sentiment{
		Index: score,
		State: StateAvailable,
		Label: FearGreedLabel(score),
		Class: FearGreedClass(score),
	}
}

// FearGreedLabel maps a score to its five-bucket label.
func FearGreedLabel(score int) string {
	switch {
	case score >= 80:
		return "Extreme Greed"
	case score >= 60:
		return "Greed"
	case score >= 40:
		return "Neutral"
	case score >= 20:
		return "Fear"
	case score >= 0:
		return "Extreme Fear"
	default:
		return "?"
	}
}

// FearGreedClass maps a score to the coarser four-bucket style class.
// The boundaries differ from FearGreedLabel on purpose.
func FearGreedClass(score int) string {
	switch {
	case score >= 70:
		return "greed"
	case score >= 50:
		return "neutral"
	case score >= 30:
		return "fear"
	default:
		return "extreme-fear"
	}
}
