package domain

import "math"

// NewIdeaStats builds stats from raw counts.
// Every priority key is present in the breakdown, zero when absent from counts.
func NewIdeaStats(total, voice, text int, byPriority map[Priority]int) *IdeaStats {
	breakdown := make(map[Priority]int, len(Priorities))
	for _, p := range Priorities {
		breakdown[p] = byPriority[p]
	}

	return &IdeaStats{
		TotalIdeas:        total,
		VoiceIdeas:        voice,
		TextIdeas:         text,
		VoicePercentage:   VoicePercentage(voice, total),
		PriorityBreakdown: breakdown,
	}
}

// VoicePercentage returns voice/total*100 rounded to 2 decimal places, 0 for an empty store
func VoicePercentage(voice, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(voice)/float64(total)*100*100) / 100
}
