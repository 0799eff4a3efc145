// Package weather reports current conditions for the paper's home town via Open-Meteo.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	MsgAPIError = "🌡️ Не удалось получить данные о погоде"
	MsgFailure  = "🌡️ Ошибка при получении погоды"
)

type Config struct {
	City     string
	Lat      float64
	Lon      float64
	Timezone string
	URL      string // forecast endpoint
	Timeout  time.Duration
}

type Client struct {
	cfg  Config
	http *http.Client
}

func New(cfg Config) *Client {
	if cfg.URL == "" {
		cfg.URL = "https://api.open-meteo.com/v1/forecast"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}
}

type forecast struct {
	Error   bool   `json:"error"`
	Reason  string `json:"reason"`
	Current *struct {
		Temperature *float64 `json:"temperature_2m"`
		WeatherCode int      `json:"weather_code"`
	} `json:"current"`
	Daily *struct {
		Time    []string   `json:"time"`
		TempMax []*float64 `json:"temperature_2m_max"`
		TempMin []*float64 `json:"temperature_2m_min"`
	} `json:"daily"`
}

// Current returns a ready-to-send report. It never fails: errors turn into one
// of the two fixed messages and are logged.
func (c *Client) Current(ctx context.Context) string {
	fc, err := c.fetch(ctx)
	if err != nil {
		slog.Error("weather request failed", "error", err)
		return MsgFailure
	}
	if fc.Error {
		slog.Warn("open-meteo error", "reason", fc.Reason)
		return MsgAPIError
	}
	if fc.Current == nil || fc.Current.Temperature == nil {
		slog.Error("weather response without current temperature")
		return MsgFailure
	}

	lines := []string{fmt.Sprintf("🌡️ %s: %s°C, %s", c.cfg.City, signed(*fc.Current.Temperature), Describe(fc.Current.WeatherCode))}
	if d := fc.Daily; d != nil && len(d.Time) > 0 && len(d.TempMax) > 0 && len(d.TempMin) > 0 &&
		d.TempMax[0] != nil && d.TempMin[0] != nil {
		lines = append(lines, fmt.Sprintf("Днём: %s°C, ночью: %s°C", signed(*d.TempMax[0]), signed(*d.TempMin[0])))
	}
	return strings.Join(lines, "\n")
}

func (c *Client) fetch(ctx context.Context) (*forecast, error) {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(c.cfg.Lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(c.cfg.Lon, 'f', -1, 64))
	params.Set("current", "temperature_2m,weather_code")
	params.Set("daily", "weather_code,temperature_2m_max,temperature_2m_min")
	params.Set("timezone", c.cfg.Timezone)
	params.Set("forecast_days", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	// Open-Meteo reports bad parameters as a JSON body with "error": true and a 400 status.
	var fc forecast
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		return nil, fmt.Errorf("decode forecast (status %d): %w", resp.StatusCode, err)
	}
	return &fc, nil
}

// signed formats a temperature in whole degrees with an explicit sign.
func signed(t float64) string {
	return fmt.Sprintf("%+.0f", t)
}
