// Package domain models agricultural risk evaluation over external
// earth-observation data feeds.
//
// # Data Sources
//
// Four independent upstream providers contribute to an evaluation:
//
//	weather       NASA POWER daily point API: 2-meter air temperature (T2M)
//	              and corrected precipitation (PRECTOTCORR), one value per
//	              calendar day. POWER encodes missing values as -999; the
//	              adapter translates the sentinel to an absent value.
//	precipitation GPM IMERG daily precipitation estimates. Higher resolution
//	              than POWER's precipitation and preferred over it whenever a
//	              day has values from both sources.
//	vegetation    MODIS NDVI subsets. Raw subset values are scaled by 1e-4
//	              and the -3000 fill value means no valid observation.
//	imagery       Worldview snapshot availability. Contributes no evaluator
//	              input, only availability and per-day snapshot URLs echoed
//	              in the verdict.
//
// Every provider response is parsed into the fixed record types in this
// package at the adapter boundary; nothing past the adapters handles raw
// provider JSON. Records are ordered by date ascending with first-wins
// de-duplication when an upstream repeats a date.
//
// # Missing Data Policy
//
// Absent values are explicit (nil pointers), never zero. A day without a
// precipitation value contributes nothing to the water balance and the water
// requirement is pro-rated over the days that do have values, so sparse data
// cannot masquerade as measured drought. When no day in the period has any
// water value the evaluator emits a missing-data alert instead of a drought
// classification. When all four sources are unavailable the evaluation fails
// with [ErrInsufficientData] rather than fabricating a low-risk verdict.
//
// # Risk Classification
//
// Rules are evaluated independently per crop profile and combined through a
// weighted score (see the constants in evaluate.go):
//
//	temperature  daily values against the crop's stress limits; exceedance
//	             beyond HighSeverityTempMarginC is a high-severity condition.
//	water        summed precipitation against the crop's pro-rated water
//	             requirement; deficit below WaterDeficitMarginRatio of the
//	             requirement, single-day totals above the crop's flood
//	             threshold, and period totals above WaterExcessCeilingRatio.
//	vegetation   the latest NDVI sample against the crop's stress threshold;
//	             a shortfall of NDVIHighSeverityDrop or more is high severity.
//
// The resulting level is "high", "medium", or "low"; never absent. Evaluation
// is a pure function: identical inputs yield identical verdicts.
package domain
