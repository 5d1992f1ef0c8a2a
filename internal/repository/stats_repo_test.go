package repository

import (
	"context"
	"testing"

	"github.com/yuqie6/planly/internal/schema"
	"github.com/yuqie6/planly/internal/testutil"
)

func TestStatsRepositoryPutIfAbsentIsIdempotent(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewStatsRepository(db)
	ctx := context.Background()

	first := &schema.Stats{UserID: "u1", Scope: schema.ScopeCategory, ScopeID: "cat-1", CurrentStreak: 0}
	created, err := repo.PutIfAbsent(ctx, first)
	if err != nil {
		t.Fatalf("PutIfAbsent error: %v", err)
	}
	if !created {
		t.Fatalf("first PutIfAbsent created = false, want true")
	}

	// 先累计一些状态，再次 PutIfAbsent 不应清掉
	if err := repo.UpdateStreakFields(ctx, "u1", schema.ScopeCategory, "cat-1", StreakFields{
		CurrentStreak: 3, LongestStreak: 5, LastCompletedDate: "2025-01-15", TotalCompletions: 9,
	}); err != nil {
		t.Fatalf("UpdateStreakFields error: %v", err)
	}

	again := &schema.Stats{UserID: "u1", Scope: schema.ScopeCategory, ScopeID: "cat-1"}
	created, err = repo.PutIfAbsent(ctx, again)
	if err != nil {
		t.Fatalf("second PutIfAbsent error: %v", err)
	}
	if created {
		t.Fatalf("second PutIfAbsent created = true, want false")
	}

	got, err := repo.Get(ctx, "u1", schema.ScopeCategory, "cat-1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got == nil || got.CurrentStreak != 3 || got.LongestStreak != 5 || got.TotalCompletions != 9 {
		t.Fatalf("stats reset by PutIfAbsent: %+v", got)
	}
}

func TestStatsRepositoryPutResetsExistingRow(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewStatsRepository(db)
	ctx := context.Background()

	if err := repo.Put(ctx, &schema.Stats{UserID: "u1", Scope: schema.ScopeHabit, ScopeID: "h1", CurrentStreak: 7, LongestStreak: 7}); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	// 重建习惯时 HABIT 行归零
	if err := repo.Put(ctx, &schema.Stats{UserID: "u1", Scope: schema.ScopeHabit, ScopeID: "h1"}); err != nil {
		t.Fatalf("second Put error: %v", err)
	}

	got, err := repo.Get(ctx, "u1", schema.ScopeHabit, "h1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got == nil || got.CurrentStreak != 0 || got.LongestStreak != 0 {
		t.Fatalf("got=%+v, want zeroed row", got)
	}
}

func TestStatsRepositoryUpdateStreakFieldsMissingRow(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewStatsRepository(db)
	ctx := context.Background()

	err := repo.UpdateStreakFields(ctx, "u1", schema.ScopeUser, "", StreakFields{CurrentStreak: 1})
	if err == nil {
		t.Fatalf("UpdateStreakFields on missing row: want error")
	}
}

func TestStatsRepositoryGetMissingReturnsNil(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewStatsRepository(db)

	got, err := repo.Get(context.Background(), "u1", schema.ScopeHabit, "nope")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got != nil {
		t.Fatalf("got=%+v, want nil", got)
	}
}
