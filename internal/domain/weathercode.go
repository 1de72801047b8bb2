package domain

import "strconv"

// weatherCodeLabels maps WMO weather interpretation codes to display labels.
var weatherCodeLabels = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Depositing rime fog",
	51: "Drizzle: Light",
	53: "Drizzle: Moderate",
	55: "Drizzle: Dense",
	56: "Freezing Drizzle: Light",
	57: "Freezing Drizzle: Dense",
	61: "Rain: Slight",
	63: "Rain: Moderate",
	65: "Rain: Heavy",
	66: "Freezing Rain: Light",
	67: "Freezing Rain: Heavy",
	71: "Snow fall: Slight",
	73: "Snow fall: Moderate",
	75: "Snow fall: Heavy",
	77: "Snow grains",
	80: "Rain showers: Slight",
	81: "Rain showers: Moderate",
	82: "Rain showers: Violent",
	85: "Snow showers: Slight",
	86: "Snow showers: Heavy",
	95: "Thunderstorm: Slight/Moderate",
	96: "Thunderstorm with slight hail",
	99: "Thunderstorm with heavy hail",
}

// ConditionLabel returns the label for code, or "Unknown" when code is nil or
// not in the table.
func ConditionLabel(code *int) string {
	if code == nil {
		return "Unknown"
	}
	if label, ok := weatherCodeLabels[*code]; ok {
		return label
	}
	return "Unknown"
}

// ConditionKey is the categorical key used in climatology frequencies: the
// label when known, otherwise the decimal code.
func ConditionKey(code int) string {
	if label, ok := weatherCodeLabels[code]; ok {
		return label
	}
	return strconv.Itoa(code)
}
