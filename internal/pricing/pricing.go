package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// Duration returns the billed hours and days for a rental span. A partial
// hour is billed as a full hour and days are derived from billed hours.
func Duration(start, end time.Time) (hours, days int) {
	span := end.Sub(start)
	if span <= 0 {
		return 0, 0
	}
	hours = int(span / time.Hour)
	if span%time.Hour != 0 {
		hours++
	}
	days = (hours + 23) / 24
	return hours, days
}

// Calculate returns the rental cost for the span, charging the cheaper of
// the hourly and the daily scheme. The result is rounded to cents.
func Calculate(start, end time.Time, pricePerHour, pricePerDay float64) float64 {
	hours, days := Duration(start, end)
	if hours == 0 {
		return 0
	}
	hourly := decimal.NewFromFloat(pricePerHour).Mul(decimal.NewFromInt(int64(hours)))
	daily := decimal.NewFromFloat(pricePerDay).Mul(decimal.NewFromInt(int64(days)))
	return decimal.Min(hourly, daily).Round(2).InexactFloat64()
}
