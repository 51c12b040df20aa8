package weather

import (
	"fmt"
	"math"
)

// Temperature display units.
const (
	UnitCelsius    = "celsius"
	UnitFahrenheit = "fahrenheit"
)

const iconURLTemplate = "https://openweathermap.org/img/wn/%s@2x.png"

func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

func FahrenheitToCelsius(f float64) float64 {
	return (f - 32) * 5 / 9
}

// Display converts a Celsius value into unit. Stored data is never converted.
func Display(tempC float64, unit string) float64 {
	if unit == UnitFahrenheit {
		return CelsiusToFahrenheit(tempC)
	}
	return tempC
}

// FormatTemperature renders a Celsius value rounded in the requested unit, e.g. "26°C".
func FormatTemperature(tempC float64, unit string) string {
	symbol := "°C"
	if unit == UnitFahrenheit {
		symbol = "°F"
	}
	return fmt.Sprintf("%d%s", int(math.Round(Display(tempC, unit))), symbol)
}

// IconURL returns the image URL for a normalized icon code such as "01d".
func IconURL(code string) string {
	return fmt.Sprintf(iconURLTemplate, code)
}
