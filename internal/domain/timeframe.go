package domain

import (
	"strconv"
	"strings"
	"time"
)

// TimeframeDuration parses provider interval names such as "5min", "1h" and "1day".
func TimeframeDuration(timeframe string) (time.Duration, bool) {
	tf := strings.ToLower(strings.TrimSpace(timeframe))
	units := []struct {
		suffix string
		unit   time.Duration
	}{
		{"min", time.Minute},
		{"h", time.Hour},
		{"day", 24 * time.Hour},
		{"week", 7 * 24 * time.Hour},
	}
	for _, u := range units {
		if !strings.HasSuffix(tf, u.suffix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(tf, u.suffix))
		if err != nil || n <= 0 {
			return 0, false
		}
		return time.Duration(n) * u.unit, true
	}
	return 0, false
}
