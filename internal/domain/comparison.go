package domain

// Verdict is the outcome of comparing one attribute of two EVs.
type Verdict string

const (
	VerdictFirst       Verdict = "first"
	VerdictSecond      Verdict = "second"
	VerdictEqual       Verdict = "equal"
	VerdictUnavailable Verdict = "unavailable"
)

// Compared attributes.
const (
	CompareBatterySize  = "Battery_size"
	CompareCost         = "Cost"
	ComparePower        = "Power"
	CompareAverageScore = "Average_Score"
)

// ComparedAttributes lists the compared attributes in display order.
var ComparedAttributes = []string{CompareBatterySize, CompareCost, ComparePower, CompareAverageScore}

// Comparison is the side-by-side result for two EVs.
type Comparison struct {
	First       EV
	Second      EV
	FirstScore  AverageScore
	SecondScore AverageScore
	Verdicts    map[string]Verdict
}

// ComparisonRow is one attribute of a Comparison, ready for display.
type ComparisonRow struct {
	Attribute string
	First     string
	Second    string
	Verdict   Verdict
}

// Compare derives a verdict per attribute: VerdictFirst when ev1's value is
// strictly greater, VerdictSecond when ev2's is, VerdictEqual otherwise.
// Average_Score is VerdictUnavailable when either EV has no reviews.
func Compare(ev1, ev2 EV, score1, score2 AverageScore) Comparison {
	verdicts := map[string]Verdict{
		CompareBatterySize: verdict(ev1.BatterySize, ev2.BatterySize),
		CompareCost:        verdict(ev1.Cost, ev2.Cost),
		ComparePower:       verdict(ev1.Power, ev2.Power),
	}
	if score1.HasReviews() && score2.HasReviews() {
		verdicts[CompareAverageScore] = verdict(score1.Value, score2.Value)
	} else {
		verdicts[CompareAverageScore] = VerdictUnavailable
	}

	return Comparison{
		First:       ev1,
		Second:      ev2,
		FirstScore:  score1,
		SecondScore: score2,
		Verdicts:    verdicts,
	}
}

func verdict(a, b float64) Verdict {
	switch {
	case a > b:
		return VerdictFirst
	case a < b:
		return VerdictSecond
	default:
		return VerdictEqual
	}
}

// Rows returns the comparison in display order.
func (c Comparison) Rows() []ComparisonRow {
	rows := make([]ComparisonRow, 0, len(ComparedAttributes))
	for _, attr := range ComparedAttributes {
		row := ComparisonRow{Attribute: attr, Verdict: c.Verdicts[attr]}
		switch attr {
		case CompareBatterySize:
			row.First, row.Second = formatNumber(c.First.BatterySize), formatNumber(c.Second.BatterySize)
		case CompareCost:
			row.First, row.Second = formatNumber(c.First.Cost), formatNumber(c.Second.Cost)
		case ComparePower:
			row.First, row.Second = formatNumber(c.First.Power), formatNumber(c.Second.Power)
		case CompareAverageScore:
			row.First, row.Second = c.FirstScore.String(), c.SecondScore.String()
		}
		rows = append(rows, row)
	}
	return rows
}
