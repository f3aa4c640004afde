package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/Madhav-Gupta-28/storefront-backend-go/models"
	"github.com/labstack/echo/v4"
)

const (
	dateLayout       = "2006-01-02"
	defaultDailyDays = 7
	maxDailyDays     = 366
)

func (h *Handler) GetStats(c echo.Context) error {
	stats, err := h.Analytics.Stats(c.Request().Context())
	if err != nil {
		log.Printf("analytics stats: %v", err)
		return jsonError(c, http.StatusInternalServerError, "Failed to load analytics")
	}
	return c.JSON(http.StatusOK, stats)
}

// GetDailySales reports sales per UTC day for the inclusive start..end range,
// with a zero entry for days without sales.
func (h *Handler) GetDailySales(c echo.Context) error {
	start, end, err := dailyRange(c.QueryParam("start"), c.QueryParam("end"), time.Now().UTC())
	if err != nil {
		return jsonError(c, http.StatusBadRequest, err.Error())
	}

	days, err := h.Analytics.DailySales(c.Request().Context(), start, end.AddDate(0, 0, 1))
	if err != nil {
		log.Printf("analytics daily sales: %v", err)
		return jsonError(c, http.StatusInternalServerError, "Failed to load analytics")
	}
	return c.JSON(http.StatusOK, fillDays(start, end, days))
}

// dailyRange parses the query dates. A missing range means the last seven
// days, today included.
func dailyRange(rawStart, rawEnd string, now time.Time) (time.Time, time.Time, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := today
	if rawEnd != "" {
		t, err := time.Parse(dateLayout, rawEnd)
		if err != nil {
			return time.Time{}, time.Time{}, errBadDate("end")
		}
		end = t
	}
	start := end.AddDate(0, 0, -(defaultDailyDays - 1))
	if rawStart != "" {
		t, err := time.Parse(dateLayout, rawStart)
		if err != nil {
			return time.Time{}, time.Time{}, errBadDate("start")
		}
		start = t
	}

	if end.Before(start) {
		return time.Time{}, time.Time{}, errRange("end must not be before start")
	}
	if end.Sub(start) >= maxDailyDays*24*time.Hour {
		return time.Time{}, time.Time{}, errRange("range is limited to 366 days")
	}
	return start, end, nil
}

type rangeError string

func (e rangeError) Error() string { return string(e) }

func errBadDate(field string) error {
	return rangeError(field + " must be a date in YYYY-MM-DD format")
}

func errRange(msg string) error { return rangeError(msg) }

func fillDays(start, end time.Time, days []models.DailySales) []models.DailySales {
	byDate := make(map[string]models.DailySales, len(days))
	for _, d := range days {
		byDate[d.Date] = d
	}

	out := make([]models.DailySales, 0, int(end.Sub(start).Hours()/24)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := d.Format(dateLayout)
		if entry, ok := byDate[key]; ok {
			out = append(out, entry)
			continue
		}
		out = append(out, models.DailySales{Date: key})
	}
	return out
}
