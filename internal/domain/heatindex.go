package domain

import "math"

// HeatIndex derives the apparent "feels like" temperature in °C from air
// temperature (°C) and relative humidity (%), using the NWS Rothfusz
// regression with its low-humidity and high-humidity adjustments. Below
// 80°F the simple Steadman form is used. Returns nil unless both inputs are
// present.
func HeatIndex(tempC, humidity *float64) *float64 {
	if tempC == nil || humidity == nil {
		return nil
	}
	t := *tempC*9/5 + 32
	rh := *humidity

	hi := 0.5 * (t + 61.0 + (t-68.0)*1.2 + rh*0.094)
	if (hi+t)/2 >= 80 {
		hi = -42.379 + 2.04901523*t + 10.14333127*rh -
			0.22475541*t*rh - 0.00683783*t*t -
			0.05481717*rh*rh + 0.00122874*t*t*rh +
			0.00085282*t*rh*rh - 0.00000199*t*t*rh*rh

		switch {
		case rh < 13 && t >= 80 && t <= 112:
			hi -= ((13 - rh) / 4) * math.Sqrt((17-math.Abs(t-95))/17)
		case rh > 85 && t >= 80 && t <= 87:
			hi += ((rh - 85) / 10) * ((87 - t) / 5)
		}
	}

	c := (hi - 32) * 5 / 9
	c = math.Round(c*100) / 100
	return &c
}
