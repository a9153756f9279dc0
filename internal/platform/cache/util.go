package cache

import (
	"time"
)

// TimeUntilNext returns the duration from now until the next hour:00 in loc.
// A nil loc means UTC. The result is always in (0, 24h].
func TimeUntilNext(now time.Time, hour int, loc *time.Location) time.Duration {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, loc)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

// TimeUntilNextRefresh は次回の日次取り込み（午前8時・日本時間）までの期間を返します。
// キャッシュのTTLに使い、取り込み後に古いローソク足が残らないようにします。
func TimeUntilNextRefresh() time.Duration {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		loc = time.FixedZone("JST", 9*60*60)
	}
	return TimeUntilNext(time.Now(), 8, loc)
}
