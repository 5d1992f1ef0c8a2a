package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/yuqie6/planly/internal/pkg/dateutil"
	"github.com/yuqie6/planly/internal/schema"
)

// weekdayAbbrev periodValue 里的星期缩写，SUN=0 起
var weekdayAbbrev = map[string]time.Weekday{
	"SUN": time.Sunday,
	"MON": time.Monday,
	"TUE": time.Tuesday,
	"WED": time.Wednesday,
	"THU": time.Thursday,
	"FRI": time.Friday,
	"SAT": time.Saturday,
}

// IsDueOn 判断习惯在指定日历日是否到期。
// 结束日期之后一律不到期；周期类型未知或周期值为空时按"永不到期"处理。
func IsDueOn(habit *schema.Habit, date string) bool {
	if habit == nil || date == "" {
		return false
	}
	if habit.EndDate != "" && date > habit.EndDate {
		return false
	}
	day, err := dateutil.Parse(date)
	if err != nil {
		return false
	}
	switch habit.PeriodType {
	case schema.PeriodEveryDay:
		return true
	case schema.PeriodDaysOfWeek:
		days := parseWeekdays(habit.PeriodValue)
		_, ok := days[day.Weekday()]
		return ok
	case schema.PeriodDaysOfMonth:
		days := parseMonthDays(habit.PeriodValue)
		_, ok := days[day.Day()]
		return ok
	default:
		return false
	}
}

// ScheduledDates 枚举 [start_date, through] 内全部到期日，升序返回。
// through 早于开始日期时返回空。
func ScheduledDates(habit *schema.Habit, through string) ([]string, error) {
	if habit == nil || habit.StartDate == "" {
		return nil, nil
	}
	all, err := dateutil.Range(habit.StartDate, through)
	if err != nil {
		return nil, err
	}
	var dates []string
	for _, d := range all {
		if IsDueOn(habit, d) {
			dates = append(dates, d)
		}
	}
	return dates, nil
}

// PreviousScheduledDate 返回 date 之前（不含当天）最近一个到期日，没有则返回空串。
func PreviousScheduledDate(habit *schema.Habit, date string) (string, error) {
	dates, err := ScheduledDates(habit, date)
	if err != nil {
		return "", err
	}
	prev := ""
	for _, d := range dates {
		if d >= date {
			break
		}
		prev = d
	}
	return prev, nil
}

func parseWeekdays(value string) map[time.Weekday]struct{} {
	days := make(map[time.Weekday]struct{})
	for _, part := range strings.Split(value, ",") {
		if wd, ok := weekdayAbbrev[strings.ToUpper(strings.TrimSpace(part))]; ok {
			days[wd] = struct{}{}
		}
	}
	return days
}

func parseMonthDays(value string) map[int]struct{} {
	days := make(map[int]struct{})
	for _, part := range strings.Split(value, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 1 || n > 31 {
			continue
		}
		days[n] = struct{}{}
	}
	return days
}
