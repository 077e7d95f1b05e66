// Package units converts station readings between the imperial units NOAA
// reports and their metric display equivalents.
package units

import (
	"math"
)

const (
	feetPerMeter  = 3.28084
	metersPerKnot = 0.514444
)

// cardinals covers 0 through 360 degrees in 22.5 degree sectors. North appears
// twice so that readings just under 360 wrap back to it.
var cardinals = [...]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW", "N",
}

func FeetToMeters(ft float64) float64 {
	return ft / feetPerMeter
}

func FahrenheitToCelsius(f float64) float64 {
	return (f - 32) * 5 / 9
}

func KnotsToMetersPerSecond(kts float64) float64 {
	return kts * metersPerKnot
}

// Cardinal names the 16 point compass direction of a heading in degrees
// clockwise from north. Non-finite headings have no name.
func Cardinal(degrees float64) string {
	if math.IsNaN(degrees) || math.IsInf(degrees, 0) {
		return ""
	}
	degrees = math.Mod(degrees, 360)
	if degrees < 0 {
		degrees += 360
	}
	return cardinals[int(math.Floor((degrees+11.25)/22.5))%len(cardinals)]
}
