package domain

// RiskLevel is the five-step heat stress guidance scale derived from a WBGT
// value. It is recomputed on demand and never persisted.
type RiskLevel struct {
	Level    int    `json:"level"`
	Label    string `json:"label"`
	Guidance string `json:"guidance"`
}

// Classify maps a WBGT value to its risk level using inclusive lower bounds.
// Total over all reals: anything below the lowest threshold, including
// negative values, classifies as level 0.
func Classify(wbgt float64) RiskLevel {
	switch {
	case wbgt >= 31:
		return RiskLevel{Level: 4, Label: "危険", Guidance: "運動は原則中止"}
	case wbgt >= 28:
		return RiskLevel{Level: 3, Label: "厳重警戒", Guidance: "激しい運動は中止"}
	case wbgt >= 25:
		return RiskLevel{Level: 2, Label: "警戒", Guidance: "積極的に休息"}
	case wbgt >= 21:
		return RiskLevel{Level: 1, Label: "注意", Guidance: "積極的に水分補給"}
	default:
		return RiskLevel{Level: 0, Label: "ほぼ安全", Guidance: "適宜水分補給"}
	}
}
