// Package difficulty maps candidate experience and answer outcomes to the
// adaptive interview difficulty on a 1.0 to 5.0 scale.
package difficulty

import "math"

const (
	Min = 1.0
	Max = 5.0

	stepUp   = 0.2
	stepDown = 0.5
)

// Initial returns the starting difficulty for the given years of experience.
func Initial(experience float64) float64 {
	switch {
	case experience <= 0:
		return 2.0
	case experience <= 2:
		return 2.5
	case experience <= 5:
		return 3.5
	default:
		return 4.5
	}
}

// Next raises the difficulty after a passed answer and lowers it after a
// failed one, always staying within [Min, Max].
func Next(current float64, passed bool) float64 {
	current = Clamp(current)
	if passed {
		return round(math.Min(Max, current+stepUp))
	}
	return round(math.Max(Min, current-stepDown))
}

func Clamp(d float64) float64 {
	return math.Max(Min, math.Min(Max, d))
}

// ExperienceLevel describes the experience band used when phrasing prompts.
func ExperienceLevel(experience float64) string {
	switch {
	case experience < 1:
		return "entry-level with less than 1 year of experience"
	case experience <= 2:
		return "junior with 1-2 years of experience"
	case experience <= 5:
		return "mid-level with 3-5 years of experience"
	case experience <= 10:
		return "senior with 6-10 years of experience"
	default:
		return "very senior with 10+ years of experience"
	}
}

// round trims float drift so repeated +0.2 steps land on exact tenths
func round(d float64) float64 {
	return math.Round(d*1e6) / 1e6
}
