package worker

import "strings"

// Keyword weights for the lexical threat scoring pass. This is the first,
// cheap tier of scoring; anything above the dashboard thresholds gets
// surfaced for analyst review rather than auto-actioned.
var threatTerms = map[string]float64{
	"attack":     0.5,
	"bomb":       0.8,
	"kill":       0.7,
	"threat":     0.5,
	"weapon":     0.6,
	"shoot":      0.7,
	"violence":   0.5,
	"explosive":  0.8,
	"hostage":    0.8,
	"terror":     0.8,
	"hack":       0.4,
	"leak":       0.3,
	"dox":        0.6,
	"ransom":     0.6,
	"stalk":      0.5,
	"surveil":    0.3,
	"credential": 0.3,
}

// ScoreContent assigns a 0..1 threat score to a piece of text.
// The score is the maximum matched term weight with a small boost when
// multiple terms co-occur, capped at 1.
func ScoreContent(content string) float64 {
	if content == "" {
		return 0
	}

	lowered := strings.ToLower(content)

	var max float64
	matches := 0
	for term, weight := range threatTerms {
		if strings.Contains(lowered, term) {
			matches++
			if weight > max {
				max = weight
			}
		}
	}

	if matches > 1 {
		max += 0.1 * float64(matches-1)
	}
	if max > 1 {
		max = 1
	}

	return max
}
