package weather

import (
	"math"
	"time"
)

// Sample is one sub-daily forecast reading (e.g. a 3-hourly step).
// Temp and FeelsLike are pointers because providers may omit them.
type Sample struct {
	Dt        int64
	Temp      *float64
	FeelsLike *float64
	Pressure  float64
	Humidity  float64
	Weather   []Condition
	Speed     float64
	Deg       float64
	Gust      float64
	Clouds    float64
	Pop       float64
}

// AggregateSamples buckets samples by calendar date in tz (encounter order),
// keeps the first maxDays dates and folds each bucket into a ForecastDay.
// Input order is significant: reordering samples changes the result.
func AggregateSamples(samples []Sample, tz *time.Location, maxDays int) Forecast {
	if tz == nil {
		tz = time.Local
	}

	var order []string
	buckets := make(map[string][]Sample)
	for _, s := range samples {
		key := time.Unix(s.Dt, 0).In(tz).Format(time.DateOnly)
		if _, ok := buckets[key]; !ok {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], s)
	}

	if maxDays > 0 && len(order) > maxDays {
		order = order[:maxDays]
	}

	out := make(Forecast, 0, len(order))
	for _, key := range order {
		out = append(out, AggregateDay(buckets[key]))
	}
	return out
}

// AggregateDay folds one date's samples into a ForecastDay. Scalar fields
// other than temperatures and pop come from the first sample.
func AggregateDay(day []Sample) ForecastDay {
	if len(day) == 0 {
		return ForecastDay{}
	}

	first := day[0]
	temps := profile(day, func(s Sample) *float64 { return s.Temp })
	feels := profile(day, func(s Sample) *float64 { return s.FeelsLike })

	pop := 0.0
	for _, s := range day {
		pop = math.Max(pop, s.Pop)
	}

	return ForecastDay{
		Dt: first.Dt,
		Temp: DayTemps{
			Day:   temps.mean,
			Min:   temps.min,
			Max:   temps.max,
			Night: temps.night,
			Eve:   temps.eve,
			Morn:  temps.morn,
		},
		FeelsLike: FeelsLike{
			Day:   feels.mean,
			Night: feels.night,
			Eve:   feels.eve,
			Morn:  feels.morn,
		},
		Pressure: first.Pressure,
		Humidity: first.Humidity,
		Weather:  first.Weather,
		Speed:    first.Speed,
		Deg:      first.Deg,
		Gust:     first.Gust,
		Clouds:   first.Clouds,
		Pop:      pop,
	}
}

type tempProfile struct {
	mean, min, max   float64
	night, eve, morn float64
}

// profile computes the per-day statistics for one temperature series.
// night is the last sample (falling back to the last present value), eve the
// sample at the 75th-percentile index (falling back to the first present
// value) and morn the first sample.
func profile(day []Sample, pick func(Sample) *float64) tempProfile {
	var values []float64
	for _, s := range day {
		if v := pick(s); v != nil {
			values = append(values, *v)
		}
	}
	if len(values) == 0 {
		return tempProfile{}
	}

	p := tempProfile{min: values[0], max: values[0]}
	var sum float64
	for _, v := range values {
		sum += v
		p.min = math.Min(p.min, v)
		p.max = math.Max(p.max, v)
	}
	p.mean = sum / float64(len(values))

	p.night = values[len(values)-1]
	if v := pick(day[len(day)-1]); v != nil {
		p.night = *v
	}

	p.eve = values[0]
	if v := pick(day[len(day)*3/4]); v != nil {
		p.eve = *v
	}

	p.morn = values[0]
	if v := pick(day[0]); v != nil {
		p.morn = *v
	}
	return p
}
