// Package rules holds the closed enumerations shared by every layer of the
// simulator: weather, player modifiers, team events, blood types and the
// statistic kinds recorded by a roster side.
package rules

import (
	"fmt"
	"strings"
)

// Weather is fixed for a whole game. Numeric values match the league feed.
type Weather int

const (
	WeatherVoid Weather = iota
	WeatherSun2
	WeatherOvercast
	WeatherRainy
	WeatherSandstorm
	WeatherSnowy
	WeatherAcidic
	WeatherSolarEclipse
	WeatherGlitter
	WeatherBlooddrain
	WeatherPeanuts
	WeatherBirds
	WeatherFeedback
	WeatherReverb
	WeatherBlackHole
	WeatherCoffee
	WeatherCoffee2
	WeatherCoffee3
	WeatherFlooding
	WeatherSalmon
	WeatherPolarityPlus
	WeatherPolarityMinus
)

var weatherNames = [...]string{
	"void", "sun2", "overcast", "rainy", "sandstorm", "snowy", "acidic",
	"solar_eclipse", "glitter", "blooddrain", "peanuts", "birds", "feedback",
	"reverb", "black_hole", "coffee", "coffee2", "coffee3", "flooding",
	"salmon", "polarity_plus", "polarity_minus",
}

func (w Weather) String() string {
	if w < 0 || int(w) >= len(weatherNames) {
		return fmt.Sprintf("weather(%d)", int(w))
	}
	return weatherNames[w]
}

// Valid reports whether w is a known weather.
func (w Weather) Valid() bool {
	return w >= 0 && int(w) < len(weatherNames)
}

// IsCoffee reports whether w is one of the three coffee weathers.
func (w Weather) IsCoffee() bool {
	switch w {
	case WeatherCoffee, WeatherCoffee2, WeatherCoffee3:
		return true
	default:
		return false
	}
}

// ParseWeather accepts a weather name or its numeric value.
func ParseWeather(s string) (Weather, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for i, name := range weatherNames {
		if name == key {
			return Weather(i), nil
		}
	}
	var n int
	if _, err := fmt.Sscanf(key, "%d", &n); err == nil && Weather(n).Valid() {
		return Weather(n), nil
	}
	return WeatherVoid, fmt.Errorf("unknown weather %q", s)
}

func (w Weather) MarshalText() ([]byte, error) { return []byte(w.String()), nil }

func (w *Weather) UnmarshalText(b []byte) error {
	v, err := ParseWeather(string(b))
	if err != nil {
		return err
	}
	*w = v
	return nil
}
