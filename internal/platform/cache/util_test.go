package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeUntilNext(t *testing.T) {
	t.Parallel()

	jst := time.FixedZone("JST", 9*60*60)
	tests := []struct {
		name string
		now  time.Time
		hour int
		loc  *time.Location
		want time.Duration
	}{
		{"before the hour", time.Date(2024, 1, 1, 6, 30, 0, 0, jst), 8, jst, 90 * time.Minute},
		{"after the hour rolls to tomorrow", time.Date(2024, 1, 1, 9, 0, 0, 0, jst), 8, jst, 23 * time.Hour},
		{"exactly on the hour is a full day", time.Date(2024, 1, 1, 8, 0, 0, 0, jst), 8, jst, 24 * time.Hour},
		{"now in another zone", time.Date(2024, 1, 1, 22, 0, 0, 0, time.UTC), 8, jst, time.Hour},
		{"nil location is UTC", time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC), 0, nil, time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, TimeUntilNext(tt.now, tt.hour, tt.loc))
		})
	}
}

func TestTimeUntilNextRefresh(t *testing.T) {
	t.Parallel()

	d := TimeUntilNextRefresh()
	assert.Positive(t, d)
	assert.LessOrEqual(t, d, 24*time.Hour)
}
