package model

// WindUnitKmh is the only wind unit returned by the API
const WindUnitKmh = "km/h"

// ForecastDays is the number of daily entries returned (today + 5)
const ForecastDays = 6

// CurrentConditions holds the provider's current block in Celsius and km/h
type CurrentConditions struct {
	Time                string  `json:"time"`
	Temperature         float64 `json:"temperature_2m"`
	RelativeHumidity    float64 `json:"relative_humidity_2m"`
	ApparentTemperature float64 `json:"apparent_temperature"`
	WeatherCode         int     `json:"weather_code"`
	WindSpeed           float64 `json:"wind_speed_10m"`
}

// DailySeries holds the provider's daily block as parallel arrays
type DailySeries struct {
	Time           []string  `json:"time"`
	WeatherCode    []int     `json:"weather_code"`
	TemperatureMax []float64 `json:"temperature_2m_max"`
	TemperatureMin []float64 `json:"temperature_2m_min"`
}

// ForecastPayload is the decoded forecast provider response
type ForecastPayload struct {
	Latitude  float64           `json:"latitude"`
	Longitude float64           `json:"longitude"`
	Timezone  string            `json:"timezone"`
	Current   CurrentConditions `json:"current"`
	Daily     DailySeries       `json:"daily"`
}

// DailyForecast is one day of the forecast response
type DailyForecast struct {
	Date        string  `json:"date"`
	WeatherCode int     `json:"weatherCode"`
	TempMax     float64 `json:"tempMax"`
	TempMin     float64 `json:"tempMin"`
	Condition   string  `json:"condition"`
}

// ForecastResponse is the payload of both forecast endpoints
type ForecastResponse struct {
	City                string          `json:"city"`
	Country             string          `json:"country"`
	Latitude            float64         `json:"latitude"`
	Longitude           float64         `json:"longitude"`
	Timezone            string          `json:"timezone,omitempty"`
	Temperature         float64         `json:"temperature"`
	ApparentTemperature float64         `json:"apparentTemperature"`
	Humidity            float64         `json:"humidity"`
	WindSpeed           float64         `json:"windSpeed"`
	WindUnit            string          `json:"windUnit"`
	WeatherCode         int             `json:"weatherCode"`
	Condition           string          `json:"condition"`
	DailyForecast       []DailyForecast `json:"dailyForecast"`
}
