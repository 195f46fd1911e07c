package cache

import (
	"time"
)

// TimeUntilNextUTCMidnight は now から次の UTC 0時までの期間を返します。
// 日足はこの時刻に新しい足が始まります。
func TimeUntilNextUTCMidnight(now time.Time) time.Duration {
	u := now.UTC()
	next := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
	return next.Sub(u)
}
