package service

// StreakResult 一次连击计算的结果
type StreakResult struct {
	CurrentStreak     int
	LongestStreak     int
	LastCompletedDate string
}

// ComputeFullStreak 在升序到期日序列上计算连击。
// 宽限规则：today 是最后一个到期日且尚未完成、而 today 之前的连击没有断档时，
// 当前连击不清零，沿用断档前的长度；今天一旦错过（today 翻篇）连击才真正归零。
func ComputeFullStreak(scheduledAsc []string, completed map[string]struct{}, today string) StreakResult {
	var (
		run           int
		longest       int
		runBeforeGap  int
		lastCompleted string
	)
	for _, date := range scheduledAsc {
		if _, ok := completed[date]; ok {
			run++
			if run > longest {
				longest = run
			}
			lastCompleted = date
			continue
		}
		if run > 0 {
			runBeforeGap = run
		}
		run = 0
	}

	current := run
	if today != "" && len(scheduledAsc) > 0 {
		last := scheduledAsc[len(scheduledAsc)-1]
		_, doneToday := completed[today]
		pendingToday := last == today && !doneToday
		if pendingToday && len(scheduledAsc) >= 2 && lastCompleted == scheduledAsc[len(scheduledAsc)-2] {
			current = runBeforeGap
		}
	}
	return StreakResult{
		CurrentStreak:     current,
		LongestStreak:     longest,
		LastCompletedDate: lastCompleted,
	}
}

// ComputeStreakUpTo 只看 cutoff（含）之前的到期日计算连击，不应用宽限规则。
// 用于撤销完成后把连击回退到上一个到期日的状态。
func ComputeStreakUpTo(scheduledAsc []string, completed map[string]struct{}, cutoff string) (int, string) {
	var upTo []string
	for _, date := range scheduledAsc {
		if date > cutoff {
			break
		}
		upTo = append(upTo, date)
	}
	result := ComputeFullStreak(upTo, completed, "")
	return result.CurrentStreak, result.LastCompletedDate
}
