package service

import (
	"math"
	"time"
)

// CompletionRate 完成率，0-100 保留两位小数。
// 分母（总分配数）为 0 时按约定返回 0，永不除零。
func CompletionRate(completed, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(completed)/float64(total)*10000) / 100
}

// LearningStreak 连续学习天数。输入为按时间倒序排列的完成时间，
// 游标从当前时间所在的日期开始向前走：单条记录与游标相差不超过一天
// 即计入连胜并把游标移到该天，出现大于一天的断档立即停止。
// 纯函数，只依赖入参和传入的当前时间，可重复调用。
func LearningStreak(now time.Time, completions []time.Time) int {
	if len(completions) == 0 {
		return 0
	}

	loc := now.Location()
	cursor := truncateToDay(now, loc)

	streak := 0
	var counted time.Time
	for _, ts := range completions {
		day := truncateToDay(ts, loc)

		// 同一天内的多次完成只算一次
		if streak > 0 && day.Equal(counted) {
			continue
		}

		gapDays := int(math.Round(cursor.Sub(day).Hours() / 24))
		if gapDays > 1 {
			break
		}

		streak++
		cursor = day
		counted = day
	}

	return streak
}

func truncateToDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
