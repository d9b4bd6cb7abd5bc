package match

import (
	"math"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

const (
	// EmptyQueryScore orders the home view when nothing has been typed.
	EmptyQueryScore = 0.8

	// worstScore is the score of a field that offers no match at all.
	worstScore = 1.0

	// maxLengthDelta bounds the fields that are worth an edit distance.
	maxLengthDelta = 4

	// maxFraction keeps a key inside its integer tier.
	maxFraction = 0.99
)

// Score rates how well query matches candidate in [0, 1]; lower is better.
// candidate holds ';'-separated fields and the best field wins.
func Score(query, candidate string) float64 {
	if query == "" {
		return EmptyQueryScore
	}
	if candidate == "" {
		return worstScore
	}

	best := worstScore
	for len(candidate) > 0 {
		field := candidate
		if i := strings.IndexByte(candidate, ';'); i >= 0 {
			field, candidate = candidate[:i], candidate[i+1:]
		} else {
			candidate = ""
		}
		if field == "" {
			continue
		}

		if field == query {
			return 0
		}

		if strings.HasPrefix(field, query) {
			coverage := float64(len(query)) / float64(len(field))
			if s := 0.1 + 0.1*(1-coverage); s < best {
				best = s
			}
			continue
		}

		if abs(len(field)-len(query)) < maxLengthDelta {
			dist := levenshtein.DistanceForStrings([]rune(query), []rune(field), levenshtein.DefaultOptionsWithSub)
			normed := clamp(float64(dist)/float64(len(field)), 0.2, 1.0)
			if normed < best {
				best = normed
			}
		}
	}
	return best
}

// Key folds a base priority and the match score into one ascending sort key.
// The integer part of base is the category tier. Its fraction (the usage
// weight) is shifted two decimal places down so that the similarity score
// dominates within a tier and usage only breaks ties.
func Key(base float64, query, candidate string) float64 {
	tier := math.Floor(base)
	usage := (base - tier) / 100
	return tier + math.Min(maxFraction, usage+Score(query, candidate))
}

// UsageFraction converts a launch count into a priority fraction in [0, 1).
// More launches give a smaller fraction; decimals sets how many launches
// are distinguishable (10^decimals - 1).
func UsageFraction(count, decimals int) float64 {
	if decimals < 1 {
		decimals = 1
	}
	scale := math.Pow10(decimals)
	capped := math.Min(float64(max(count, 0)), scale-1)
	return (scale - 1 - capped) / scale
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
