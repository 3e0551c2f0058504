package calculator

import (
	"testing"
	"time"

	"github.com/Veraticus/kitty/internal/model"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextDueDate(t *testing.T) {
	tests := []struct {
		now  time.Time
		want time.Time
		name string
		freq model.Frequency
	}{
		{name: "weekly", freq: model.FrequencyWeekly, now: date(2024, 1, 1), want: date(2024, 1, 8)},
		{name: "weekly crosses month", freq: model.FrequencyWeekly, now: date(2024, 2, 26), want: date(2024, 3, 4)},
		{name: "weekly crosses year", freq: model.FrequencyWeekly, now: date(2023, 12, 29), want: date(2024, 1, 5)},
		{name: "monthly", freq: model.FrequencyMonthly, now: date(2024, 3, 15), want: date(2024, 4, 15)},
		{name: "monthly clamps leap february", freq: model.FrequencyMonthly, now: date(2024, 1, 31), want: date(2024, 2, 29)},
		{name: "monthly clamps february", freq: model.FrequencyMonthly, now: date(2023, 1, 31), want: date(2023, 2, 28)},
		{name: "monthly clamps 30 day month", freq: model.FrequencyMonthly, now: date(2024, 3, 31), want: date(2024, 4, 30)},
		{name: "monthly crosses year", freq: model.FrequencyMonthly, now: date(2024, 12, 31), want: date(2025, 1, 31)},
		{name: "unknown treated as monthly", freq: model.Frequency("daily"), now: date(2024, 5, 10), want: date(2024, 6, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextDueDate(tt.freq, tt.now)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestNextDueDate_AlwaysAfterNow(t *testing.T) {
	start := date(2024, 1, 1)
	for i := 0; i < 366; i++ {
		now := start.AddDate(0, 0, i)
		for _, freq := range []model.Frequency{model.FrequencyWeekly, model.FrequencyMonthly} {
			assert.True(t, NextDueDate(freq, now).After(now), "%s from %s", freq, now)
		}
	}
}

func TestAddMonths(t *testing.T) {
	loc := time.FixedZone("EAT", 3*60*60)
	now := time.Date(2024, 8, 31, 14, 30, 5, 7, loc)

	got := AddMonths(now, 6)

	assert.Equal(t, time.Date(2025, 2, 28, 14, 30, 5, 7, loc), got)
	assert.Equal(t, loc, got.Location())
	assert.Equal(t, date(2023, 12, 31), AddMonths(date(2024, 1, 31), -1))
	assert.Equal(t, date(2024, 1, 31), AddMonths(date(2024, 1, 31), 0))
	assert.Equal(t, date(2029, 3, 15), AddMonths(date(2024, 3, 15), 60))
}
