package export

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/couchcryptid/weather-outlook-service/internal/domain"
)

const maxFilenameLength = 120

var (
	// Unicode spaces too, so NBSP and BOM become "_" like ASCII whitespace.
	whitespace  = regexp.MustCompile(`[\s\v\p{Z}\x{FEFF}]+`)
	unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.\-]`)
)

// Filename derives the download name for doc: the place name (or "lat_lng")
// joined with the date and hour, sanitized, truncated, then suffixed with ext.
func Filename(doc domain.ExportDocument, ext string) string {
	base := ""
	if doc.PlaceName != nil && *doc.PlaceName != "" {
		base = *doc.PlaceName
	} else {
		base = strconv.FormatFloat(doc.Request.Point.Lat, 'f', -1, 64) + "_" +
			strconv.FormatFloat(doc.Request.Point.Lng, 'f', -1, 64)
	}
	return fmt.Sprintf("%s.%s", SafeName(fmt.Sprintf("%s_%s_%d", base, doc.Request.Date, doc.Request.Hour)), ext)
}

// SafeName replaces whitespace runs with "_", drops every character outside
// [A-Za-z0-9_.-] and truncates to 120 characters. An empty result becomes
// "location".
func SafeName(s string) string {
	s = whitespace.ReplaceAllString(s, "_")
	s = unsafeChars.ReplaceAllString(s, "")
	if len(s) > maxFilenameLength {
		s = s[:maxFilenameLength]
	}
	if s == "" {
		return "location"
	}
	return s
}
