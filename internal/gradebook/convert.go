package gradebook

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the text form of dates and instants stored on course works.
const DateLayout = "2006-01-02 15:04:05"

// serialEpoch is day zero of spreadsheet serial dates.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// FromSerial converts a spreadsheet serial date (days since 1899-12-30,
// fraction is time of day) to a time in UTC.
func FromSerial(serial float64) time.Time {
	days := math.Trunc(serial)
	frac := math.Abs(serial - days)
	ms := math.Round(frac * 24 * 60 * 60 * 1000)
	return serialEpoch.AddDate(0, 0, int(days)).Add(time.Duration(ms) * time.Millisecond)
}

// SerialText converts serial date text to DateLayout. Unparseable text yields "".
func SerialText(text string) string {
	serial, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return ""
	}
	return FromSerial(serial).Format(DateLayout)
}

// ParseFloat parses numeric cell text, falling back to 0.
func ParseFloat(text string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// ParseInt parses integer cell text, falling back to 0. Whole floats such as
// "2.0" are accepted since unformatted numbers may carry a fraction.
func ParseInt(text string) int {
	text = strings.TrimSpace(text)
	if i, err := strconv.Atoi(text); err == nil {
		return i
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0
	}
	return int(f)
}

// ParseYes reports whether text is "YES" in any case.
func ParseYes(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), "YES")
}

// Round rounds x to decimals places, halves to even.
func Round(x float64, decimals int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	decimals = clampDecimals(decimals)
	p := math.Pow(10, float64(decimals))
	return math.RoundToEven(x*p) / p
}

// RoundMode rounds x to decimals places using the gradebook rounding setting:
// text containing "up" rounds towards +Inf, "down" towards -Inf, anything else
// rounds half to even.
func RoundMode(mode string, decimals int, x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	decimals = clampDecimals(decimals)
	p := math.Pow(10, float64(decimals))
	m := strings.ToLower(mode)
	switch {
	case strings.Contains(m, "up"):
		return math.Ceil(roundNoise(x*p)) / p
	case strings.Contains(m, "down"):
		return math.Floor(roundNoise(x*p)) / p
	default:
		return math.RoundToEven(x*p) / p
	}
}

// roundNoise drops binary representation noise so 0.29*100 floors to 29, not 28.
func roundNoise(x float64) float64 {
	r := math.Round(x)
	if math.Abs(x-r) < 1e-9 {
		return r
	}
	return x
}

func clampDecimals(d int) int {
	if d < 0 {
		return 0
	}
	if d > 15 {
		return 15
	}
	return d
}
