package service

import (
	"testing"

	"github.com/yuqie6/planly/internal/schema"
)

func monthDaysHabit(periodValue, start, end string) *schema.Habit {
	return &schema.Habit{
		ID:          "h1",
		UserID:      "u1",
		PeriodType:  schema.PeriodDaysOfMonth,
		PeriodValue: periodValue,
		StartDate:   start,
		EndDate:     end,
		Active:      true,
	}
}

func TestScheduledDatesSkipsMonthsWithoutDay31(t *testing.T) {
	habit := monthDaysHabit("31", "2025-01-01", "")
	dates, err := ScheduledDates(habit, "2025-04-30")
	if err != nil {
		t.Fatalf("ScheduledDates error: %v", err)
	}
	want := []string{"2025-01-31", "2025-03-31"}
	if len(dates) != len(want) {
		t.Fatalf("dates = %v, want %v", dates, want)
	}
	for i := range want {
		if dates[i] != want[i] {
			t.Fatalf("dates[%d] = %s, want %s", i, dates[i], want[i])
		}
	}
}

func TestIsDueOnWeekdays(t *testing.T) {
	habit := &schema.Habit{
		PeriodType:  schema.PeriodDaysOfWeek,
		PeriodValue: "MON,WED,FRI",
		StartDate:   "2025-03-01",
	}
	cases := []struct {
		date string
		want bool
	}{
		{"2025-03-03", true},  // 周一
		{"2025-03-04", false}, // 周二
		{"2025-03-05", true},  // 周三
		{"2025-03-07", true},  // 周五
		{"2025-03-09", false}, // 周日
	}
	for _, c := range cases {
		if got := IsDueOn(habit, c.date); got != c.want {
			t.Fatalf("IsDueOn(%s) = %v, want %v", c.date, got, c.want)
		}
	}
}

func TestIsDueOnRespectsEndDate(t *testing.T) {
	habit := &schema.Habit{
		PeriodType: schema.PeriodEveryDay,
		StartDate:  "2025-01-01",
		EndDate:    "2025-01-10",
	}
	if !IsDueOn(habit, "2025-01-10") {
		t.Fatalf("结束日期当天应仍然到期")
	}
	if IsDueOn(habit, "2025-01-11") {
		t.Fatalf("结束日期之后不应到期")
	}
}

func TestIsDueOnUnknownPeriodTypeNeverDue(t *testing.T) {
	habit := &schema.Habit{PeriodType: "lunar_phase", StartDate: "2025-01-01"}
	if IsDueOn(habit, "2025-01-05") {
		t.Fatalf("未知周期类型应视为永不到期")
	}
	empty := &schema.Habit{PeriodType: schema.PeriodDaysOfWeek, PeriodValue: "", StartDate: "2025-01-01"}
	if IsDueOn(empty, "2025-01-06") {
		t.Fatalf("空周期值应视为永不到期")
	}
}

func TestScheduledDatesBeforeStartIsEmpty(t *testing.T) {
	habit := &schema.Habit{PeriodType: schema.PeriodEveryDay, StartDate: "2025-06-01"}
	dates, err := ScheduledDates(habit, "2025-05-20")
	if err != nil {
		t.Fatalf("ScheduledDates error: %v", err)
	}
	if len(dates) != 0 {
		t.Fatalf("dates = %v, want empty", dates)
	}
}

func TestPreviousScheduledDate(t *testing.T) {
	habit := &schema.Habit{
		PeriodType:  schema.PeriodDaysOfWeek,
		PeriodValue: "MON,WED,FRI",
		StartDate:   "2025-03-03",
	}
	prev, err := PreviousScheduledDate(habit, "2025-03-07")
	if err != nil {
		t.Fatalf("PreviousScheduledDate error: %v", err)
	}
	if prev != "2025-03-05" {
		t.Fatalf("prev = %s, want 2025-03-05", prev)
	}

	prev, err = PreviousScheduledDate(habit, "2025-03-03")
	if err != nil {
		t.Fatalf("PreviousScheduledDate error: %v", err)
	}
	if prev != "" {
		t.Fatalf("首个到期日之前应没有上一个到期日, got %s", prev)
	}
}
