package advisory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/2beens/fitnesstracker/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// example API call
// http://api.openweathermap.org/data/2.5/weather?id=2964574&units=metric&appid=<api key>

const (
	oneHour            = 60 * 60
	weatherCacheExpire = oneHour * 1
	weatherCacheSize   = 1024 * 1024
)

type weatherDescription struct {
	ID   int    `json:"id"`
	Main string `json:"main"`
}

type weatherMain struct {
	Temp float64 `json:"temp"`
}

type currentWeatherResponse struct {
	Weather []weatherDescription `json:"weather"`
	Main    weatherMain          `json:"main"`
	Name    string               `json:"name"`
}

// OpenWeather reads the current weather of one city from the OpenWeather API
// and maps it to a backup plan via Static.
type OpenWeather struct {
	cache      *freecache.Cache
	apiURL     string // http://api.openweathermap.org/data/2.5
	apiKey     string
	cityID     int
	httpClient *http.Client
	static     *Static
}

func NewOpenWeather(apiURL, apiKey string, cityID int, httpClient *http.Client) *OpenWeather {
	return &OpenWeather{
		cache:      freecache.NewCache(weatherCacheSize),
		apiURL:     apiURL,
		apiKey:     apiKey,
		cityID:     cityID,
		httpClient: httpClient,
		static:     NewStatic(),
	}
}

// SuggestBackupPlan uses the given condition when the caller already knows
// it, and the current weather of the configured city otherwise.
func (o *OpenWeather) SuggestBackupPlan(ctx context.Context, conditions Conditions) (string, error) {
	if conditions.Condition == "" {
		current, err := o.CurrentConditions(ctx)
		if err != nil {
			return "", err
		}
		current.Time = conditions.Time
		conditions = current
	}
	return o.static.SuggestBackupPlan(ctx, conditions)
}

func (o *OpenWeather) CurrentConditions(ctx context.Context) (_ Conditions, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "advisory.openWeather.currentConditions")
	span.SetAttributes(attribute.Int("city.id", o.cityID))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	respBytes, err := o.currentWeather(ctx)
	if err != nil {
		return Conditions{}, err
	}

	resp := &currentWeatherResponse{}
	if err := json.Unmarshal(respBytes, resp); err != nil {
		return Conditions{}, fmt.Errorf("unmarshal weather api response: %w", err)
	}

	temp := resp.Main.Temp
	conditions := Conditions{
		Condition:    ConditionClear,
		TemperatureC: &temp,
	}
	if len(resp.Weather) > 0 {
		conditions.Condition = conditionFromWeatherID(resp.Weather[0].ID, temp)
	}
	log.Tracef("current weather in %s: %s, %.1fC", resp.Name, conditions.Condition, temp)
	return conditions, nil
}

func (o *OpenWeather) currentWeather(ctx context.Context) ([]byte, error) {
	cacheKey := []byte(fmt.Sprintf("current::%d", o.cityID))
	if cached, err := o.cache.Get(cacheKey); err == nil {
		log.Tracef("found current weather for city %d in cache", o.cityID)
		return cached, nil
	}

	weatherApiUrl := fmt.Sprintf("%s/weather?id=%d&units=metric&appid=%s", o.apiURL, o.cityID, o.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, weatherApiUrl, nil)
	if err != nil {
		return nil, err
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read weather api response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather api responded with status %d", resp.StatusCode)
	}

	if err := o.cache.Set(cacheKey, respBytes, weatherCacheExpire); err != nil {
		log.Errorf("failed to write current weather cache for city %d: %s", o.cityID, err)
	}
	return respBytes, nil
}

// conditionFromWeatherID maps OpenWeather condition codes
// (https://openweathermap.org/weather-conditions) to a Condition.
func conditionFromWeatherID(id int, tempC float64) Condition {
	switch {
	case id >= 200 && id < 300:
		return ConditionStorm
	case id >= 300 && id < 600:
		if tempC < coldThresholdC {
			return ConditionCold
		}
		return ConditionRain
	case id >= 600 && id < 700:
		return ConditionCold
	case id == 701 || id == 741:
		return ConditionFog
	case id == 781:
		return ConditionStorm
	default:
		return ConditionClear
	}
}
