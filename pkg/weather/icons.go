package weather

import "strings"

// icon maps a wttr.in condition description to an emoji. Matching is
// keyword-based because the descriptions are free text.
func icon(desc string) string {
	d := strings.ToLower(desc)
	switch {
	case strings.Contains(d, "thunder"):
		return "⛈️"
	case strings.Contains(d, "snow"), strings.Contains(d, "blizzard"), strings.Contains(d, "ice"):
		return "❄️"
	case strings.Contains(d, "sleet"):
		return "🌨️"
	case strings.Contains(d, "drizzle"), strings.Contains(d, "rain"), strings.Contains(d, "shower"):
		return "🌧️"
	case strings.Contains(d, "fog"), strings.Contains(d, "mist"), strings.Contains(d, "haze"):
		return "🌫️"
	case strings.Contains(d, "overcast"):
		return "☁️"
	case strings.Contains(d, "cloud"):
		return "⛅"
	case strings.Contains(d, "sunny"), strings.Contains(d, "clear"):
		return "☀️"
	default:
		return "🌡️"
	}
}
