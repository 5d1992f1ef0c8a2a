package dateutil

import (
	"fmt"
	"time"
)

// Layout 全仓统一的日历日期格式
const Layout = "2006-01-02"

// Parse 解析 YYYY-MM-DD，时区固定 UTC（日历日比较只依赖字典序，不依赖时刻）。
func Parse(date string) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, date, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("解析日期失败: %w", err)
	}
	return t, nil
}

// IsValid 校验 date 是否为合法的 YYYY-MM-DD
func IsValid(date string) bool {
	_, err := Parse(date)
	return err == nil
}

// AddDays 对 YYYY-MM-DD 加减天数
func AddDays(date string, delta int) (string, error) {
	t, err := Parse(date)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, delta).Format(Layout), nil
}

// Range 返回 [from, to]（含两端）的所有日历日，from > to 时返回空
func Range(from, to string) ([]string, error) {
	start, err := Parse(from)
	if err != nil {
		return nil, err
	}
	end, err := Parse(to)
	if err != nil {
		return nil, err
	}
	var dates []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(Layout))
	}
	return dates, nil
}

// MonthBounds 返回 YYYY-MM 月份的首日、末日与天数
func MonthBounds(month string) (first, last string, days int, err error) {
	t, err := time.ParseInLocation("2006-01", month, time.UTC)
	if err != nil {
		return "", "", 0, fmt.Errorf("解析月份失败: %w", err)
	}
	firstDay := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	lastDay := firstDay.AddDate(0, 1, -1)
	return firstDay.Format(Layout), lastDay.Format(Layout), lastDay.Day(), nil
}

// Today 按策略时区取“今天”的日历日
func Today(loc *time.Location, now func() time.Time) string {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return now().In(loc).Format(Layout)
}
