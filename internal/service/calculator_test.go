package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCompletionRate(t *testing.T) {
	tests := []struct {
		name      string
		completed int64
		total     int64
		want      float64
	}{
		{"zero total", 3, 0, 0},
		{"negative total", 1, -5, 0},
		{"zero completed", 0, 10, 0},
		{"all completed", 10, 10, 100},
		{"simple ratio", 4, 10, 40},
		{"two decimal rounding", 1, 3, 33.33},
		{"rounds up", 2, 3, 66.67},
		{"completed exceeds total", 12, 10, 120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompletionRate(tt.completed, tt.total))
		})
	}
}

func TestLearningStreak(t *testing.T) {
	loc := time.UTC
	now := time.Date(2025, 6, 15, 14, 30, 0, 0, loc)
	day := func(daysAgo int, hour int) time.Time {
		return time.Date(2025, 6, 15-daysAgo, hour, 0, 0, 0, loc)
	}

	tests := []struct {
		name        string
		completions []time.Time
		want        int
	}{
		{"no completions", nil, 0},
		{"single completion today", []time.Time{day(0, 9)}, 1},
		{"single completion yesterday", []time.Time{day(1, 23)}, 1},
		{"last completion two days ago", []time.Time{day(2, 10)}, 0},
		{"three consecutive days", []time.Time{day(0, 9), day(1, 12), day(2, 8)}, 3},
		{"streak broken by gap", []time.Time{day(0, 9), day(1, 12), day(3, 8), day(4, 8)}, 2},
		{"starts yesterday and continues", []time.Time{day(1, 9), day(2, 12), day(3, 8)}, 3},
		{"same day counted once", []time.Time{day(0, 20), day(0, 9), day(1, 12)}, 2},
		{"duplicates across streak", []time.Time{day(0, 20), day(0, 9), day(1, 18), day(1, 6), day(2, 8)}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LearningStreak(now, tt.completions))
		})
	}
}

// 纯函数：同样的输入重复调用结果一致
func TestLearningStreakRepeatable(t *testing.T) {
	now := time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)
	completions := []time.Time{
		time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 14, 9, 0, 0, 0, time.UTC),
	}

	first := LearningStreak(now, completions)
	second := LearningStreak(now, completions)
	assert.Equal(t, first, second)
	assert.Equal(t, 2, first)
}
