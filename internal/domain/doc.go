// Package domain models point weather queries and the data needed to answer them.
//
// # Question
//
// Every query asks "what is the weather at point P, on calendar date D, at UTC
// hour H?". Dates already reached (00:00 UTC of D is not after the current
// instant) are answered with a measured observation. Later dates have no
// measurement yet and are answered with a climatology estimate: statistics of
// the same month/day/hour across prior years.
//
// # Data Sources
//
// Hourly observations come from the Open-Meteo historical archive
// (https://archive-api.open-meteo.com/v1/archive), requested with
// timezone=UTC so that row timestamps are UTC hours.
//
// Daily series for charting come from the NASA POWER daily point API
// (https://power.larc.nasa.gov/api/temporal/daily/point). Days are keyed by
// an 8-digit YYYYMMDD code and rendered as MM/DD/YYYY.
//
// # Conventions
//
// Missing values:
//
//	-999 is the provider sentinel for "no measurement". It is normalized to
//	nil before any statistic sees it. Values merely close to it (-998.9) are
//	real measurements. See [NormalizeSentinel].
//
// Weather codes:
//
//	WMO weather interpretation codes (0 = clear sky, 3 = overcast,
//	61 = slight rain, 95 = thunderstorm, ...). Labels come from a fixed
//	table; see [ConditionLabel].
//
// Insufficient data:
//
//	Every statistic over an empty sample returns nil, never NaN, zero or
//	infinity. Consumers render "not enough historical data" for nil.
//
// Identity:
//
//	Markers are identified by exact float equality of latitude and
//	longitude. Callers must reuse stored coordinates rather than recompute
//	them.
package domain
