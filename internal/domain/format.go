package domain

import "fmt"

// summaryDateLayout renders period bounds in the farmer-facing summary.
const summaryDateLayout = "Jan 02"

// FormatVerdict assembles the final response from the evaluator output plus
// the request echo, source availability, and imagery snapshots. Pure
// transformation; the summary is a bounded deterministic template per level.
func FormatVerdict(req EvaluationRequest, assessment Assessment, availability SourceAvailability, imagery []ImagerySnapshot) RiskVerdict {
	messages := make([]string, len(assessment.Alerts))
	for i, a := range assessment.Alerts {
		messages[i] = a.Message
	}

	return RiskVerdict{
		RiskLevel: assessment.Level,
		Crop:      req.Crop,
		Location: Geo{
			Latitude:  req.Coordinate.Lat,
			Longitude: req.Coordinate.Lon,
		},
		Period: Period{
			Start: req.Range.Start.Format("2006-01-02"),
			End:   req.Range.End.Format("2006-01-02"),
		},
		Alerts:           messages,
		Recommendations:  assessment.Recommendations,
		Summary:          summarize(req, assessment),
		DataAvailability: availability,
		Imagery:          imagery,
		GeneratedAt:      clock.Now().UTC(),
	}
}

func summarize(req EvaluationRequest, assessment Assessment) string {
	period := fmt.Sprintf("%s–%s",
		req.Range.Start.Format(summaryDateLayout),
		req.Range.End.Format(summaryDateLayout))
	count := len(assessment.Alerts)

	switch assessment.Level {
	case RiskHigh:
		return fmt.Sprintf("High risk for %s during %s: %d critical %s detected, immediate attention recommended.",
			req.Crop, period, count, pluralize("issue", count))
	case RiskMedium:
		return fmt.Sprintf("Moderate risk for %s during %s: %d %s to monitor, take precautionary measures.",
			req.Crop, period, count, pluralize("concern", count))
	default:
		return fmt.Sprintf("No major risks detected for %s during %s; conditions look favorable.",
			req.Crop, period)
	}
}

func pluralize(noun string, n int) string {
	if n == 1 {
		return noun
	}
	return noun + "s"
}
