package repository

import (
	"context"
	"testing"

	"github.com/yuqie6/planly/internal/schema"
	"github.com/yuqie6/planly/internal/testutil"
)

func TestHabitRepositoryListByUserAndDate(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewHabitRepository(db)
	ctx := context.Background()

	habits := []*schema.Habit{
		{ID: "h1", UserID: "u1", StartDate: "2025-01-01", PeriodType: schema.PeriodEveryDay, Active: true},
		{ID: "h2", UserID: "u1", StartDate: "2025-02-01", PeriodType: schema.PeriodEveryDay, Active: true},
		{ID: "h3", UserID: "u2", StartDate: "2025-01-01", PeriodType: schema.PeriodEveryDay, Active: true},
	}
	for _, h := range habits {
		if err := repo.Create(ctx, h); err != nil {
			t.Fatalf("Create error: %v", err)
		}
	}

	got, err := repo.ListByUserAndDate(ctx, "u1", "2025-01-15")
	if err != nil {
		t.Fatalf("ListByUserAndDate error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "h1" {
		t.Fatalf("got=%+v, want only h1", got)
	}
}

func TestHabitRepositoryGetMissingReturnsNil(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewHabitRepository(db)

	got, err := repo.GetByID(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got != nil {
		t.Fatalf("got=%+v, want nil", got)
	}
}
