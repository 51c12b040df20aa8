package weather

import "time"

// DemoCoords is used whenever no real position is available.
var DemoCoords = Coords{Latitude: 12.9716, Longitude: 77.5946}

// Demo returns the fixed snapshot served when live data is unavailable and
// no API key is configured. Forecast days start at now.
func Demo(now time.Time) WeatherData {
	base := now.Unix()
	day := int64(24 * time.Hour / time.Second)

	cloudy := []Condition{{Main: "Clouds", Description: "partly cloudy", Icon: "02d"}}
	lightRain := []Condition{{Main: "Rain", Description: "light rain", Icon: "10d"}}

	return WeatherData{
		Location: Location{
			Name:    "Bangalore",
			Country: "IN",
			Lat:     DemoCoords.Latitude,
			Lon:     DemoCoords.Longitude,
		},
		Current: Current{
			Temp:      26,
			FeelsLike: 28,
			TempMin:   22,
			TempMax:   30,
			Pressure:  1010,
			Humidity:  72,
			Weather:   cloudy,
			Wind:      Wind{Speed: 2.8, Deg: 180},
		},
		Forecast: Forecast{
			demoDay(base, DayTemps{Day: 26, Min: 22, Max: 30, Night: 24, Eve: 28, Morn: 23},
				FeelsLike{Day: 28, Night: 26, Eve: 30, Morn: 25}, 1010, 72, cloudy, 2.8, 180, 40, 0.2),
			demoDay(base+day, DayTemps{Day: 28, Min: 23, Max: 31, Night: 25, Eve: 29, Morn: 24},
				FeelsLike{Day: 30, Night: 27, Eve: 31, Morn: 26}, 1008, 68, lightRain, 4.0, 220, 20, 0.2),
			demoDay(base+2*day, DayTemps{Day: 20, Min: 16, Max: 24, Night: 18, Eve: 22, Morn: 17},
				FeelsLike{Day: 22, Night: 20, Eve: 24, Morn: 19}, 1010, 70, lightRain, 5.5, 180, 75, 0.8),
			demoDay(base+3*day, DayTemps{Day: 15, Min: 12, Max: 18, Night: 14, Eve: 16, Morn: 13},
				FeelsLike{Day: 17, Night: 16, Eve: 18, Morn: 15}, 1008, 80,
				[]Condition{{Main: "Rain", Description: "moderate rain", Icon: "10d"}}, 6.0, 160, 90, 0.9),
			demoDay(base+4*day, DayTemps{Day: 28, Min: 24, Max: 32, Night: 26, Eve: 30, Morn: 25},
				FeelsLike{Day: 30, Night: 28, Eve: 32, Morn: 27}, 1018, 55,
				[]Condition{{Main: "Clear", Description: "clear sky", Icon: "01d"}}, 2.5, 240, 5, 0),
		},
	}
}

func demoDay(dt int64, temp DayTemps, feels FeelsLike, pressure, humidity float64, conds []Condition, speed, deg, clouds, pop float64) ForecastDay {
	return ForecastDay{
		Dt:        dt,
		Temp:      temp,
		FeelsLike: feels,
		Pressure:  pressure,
		Humidity:  humidity,
		Weather:   conds,
		Speed:     speed,
		Deg:       deg,
		Clouds:    clouds,
		Pop:       pop,
	}
}
