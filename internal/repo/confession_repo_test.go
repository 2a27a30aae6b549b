package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/campus-hub/internal/domain"
)

func TestCreateConfession_Error_NoTable(t *testing.T) {
	db := newBareDB(t)
	err := CreateConfession(context.Background(), db, &domain.Confession{ID: "x", Text: "t", AnonID: "a", Status: domain.StatusApproved})
	if err == nil {
		t.Fatalf("expected error when confessions table is missing")
	}
}

func TestGetConfession_WithRepliesInInsertionOrder(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)
	c := seedConfession(t, db, 0, base)

	r2 := seedReply(t, db, c.ID, base.Add(2*time.Minute))
	r1 := seedReply(t, db, c.ID, base.Add(time.Minute))

	got, err := GetConfession(ctx, db, c.ID, true)
	if err != nil {
		t.Fatalf("GetConfession: %v", err)
	}
	if len(got.Replies) != 2 || got.Replies[0].ID != r1.ID || got.Replies[1].ID != r2.ID {
		t.Fatalf("replies not in insertion order: %+v", got.Replies)
	}

	noReplies, err := GetConfession(ctx, db, c.ID, false)
	if err != nil || len(noReplies.Replies) != 0 {
		t.Fatalf("expected no preloaded replies, got %v / %+v", err, noReplies)
	}

	if _, err := GetConfession(ctx, db, "missing", false); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	quiet := seedConfession(t, db, 0, base)
	got, err = GetConfession(ctx, db, quiet.ID, true)
	if err != nil || got.Replies == nil || len(got.Replies) != 0 {
		t.Fatalf("expected empty reply list, got %v / %#v", err, got)
	}
}

func TestListConfessions_SortOrdersAndReplyCount(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)

	a := seedConfession(t, db, 5, base)
	b := seedConfession(t, db, 1, base.Add(time.Hour))
	c := seedConfession(t, db, 9, base.Add(2*time.Hour))
	d := seedConfession(t, db, 5, base.Add(3*time.Hour))
	seedReply(t, db, a.ID, base.Add(4*time.Hour))
	seedReply(t, db, a.ID, base.Add(5*time.Hour))

	hidden := seedConfession(t, db, 100, base.Add(6*time.Hour))
	if err := SetConfessionStatus(ctx, db, hidden.ID, domain.StatusFlagged); err != nil {
		t.Fatalf("flag hidden: %v", err)
	}

	ids := func(items []domain.ConfessionSummary) []string {
		out := make([]string, len(items))
		for i, it := range items {
			out[i] = it.ID
		}
		return out
	}
	eq := func(got, want []string) bool {
		if len(got) != len(want) {
			return false
		}
		for i := range got {
			if got[i] != want[i] {
				return false
			}
		}
		return true
	}

	latest, err := ListConfessions(ctx, db, ListQuery{Status: domain.StatusApproved, Sort: SortLatest})
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if want := []string{d.ID, c.ID, b.ID, a.ID}; !eq(ids(latest), want) {
		t.Fatalf("latest order = %v; want %v", ids(latest), want)
	}

	trending, err := ListConfessions(ctx, db, ListQuery{Status: domain.StatusApproved, Sort: SortTrending})
	if err != nil {
		t.Fatalf("trending: %v", err)
	}
	// likes desc, ties broken by newest first
	if want := []string{c.ID, d.ID, a.ID, b.ID}; !eq(ids(trending), want) {
		t.Fatalf("trending order = %v; want %v", ids(trending), want)
	}

	popular, err := ListConfessions(ctx, db, ListQuery{Status: domain.StatusApproved, Sort: SortPopular, Limit: 2})
	if err != nil {
		t.Fatalf("popular: %v", err)
	}
	if len(popular) != 2 || popular[0].ID != c.ID || popular[1].Likes != 5 {
		t.Fatalf("popular unexpected: %+v", popular)
	}

	for _, it := range latest {
		want := int64(0)
		if it.ID == a.ID {
			want = 2
		}
		if it.ReplyCount != want {
			t.Fatalf("reply_count for %s = %d; want %d", it.ID, it.ReplyCount, want)
		}
	}

	all, err := ListConfessions(ctx, db, ListQuery{Sort: "bogus"})
	if err != nil {
		t.Fatalf("all statuses: %v", err)
	}
	if len(all) != 5 || all[0].ID != hidden.ID {
		t.Fatalf("expected all statuses newest first, got %v", ids(all))
	}
}

func TestSortOrder_Valid(t *testing.T) {
	for _, s := range []SortOrder{SortLatest, SortPopular, SortTrending} {
		if !s.Valid() {
			t.Fatalf("%q should be valid", s)
		}
	}
	if SortOrder("oldest").Valid() || SortOrder("").Valid() {
		t.Fatalf("unknown sorts must be invalid")
	}
}

func TestTopConfessionOfWeek(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)

	if _, err := TopConfessionOfWeek(ctx, db, 2025, 10); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty week, got %v", err)
	}

	seedConfession(t, db, 3, base)
	newer := seedConfession(t, db, 7, base.Add(time.Hour))
	seedConfession(t, db, 7, base.Add(-time.Hour))

	top, err := TopConfessionOfWeek(ctx, db, 2025, 10)
	if err != nil {
		t.Fatalf("TopConfessionOfWeek: %v", err)
	}
	if top.ID != newer.ID {
		t.Fatalf("expected newest of the tied leaders, got %+v", top)
	}

	if _, err := TopConfessionOfWeek(ctx, db, 2025, 11); !errors.Is(err, ErrNotFound) {
		t.Fatalf("other week should be empty, got %v", err)
	}
}

func TestLikeCounters_IncrementAndClampedDecrement(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	c := seedConfession(t, db, 0, time.Now().UTC())

	if err := IncrementLikes(ctx, db, c.ID); err != nil {
		t.Fatalf("IncrementLikes: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := DecrementLikes(ctx, db, c.ID); err != nil {
			t.Fatalf("DecrementLikes: %v", err)
		}
	}
	got, _ := GetConfession(ctx, db, c.ID, false)
	if got.Likes != 0 {
		t.Fatalf("likes must never go below zero, got %d", got.Likes)
	}
	if err := IncrementLikes(ctx, db, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown id, got %v", err)
	}
}

func TestFlagConfession_ThresholdTransition(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	c := seedConfession(t, db, 0, time.Now().UTC())

	for i := 1; i <= 4; i++ {
		got, err := FlagConfession(ctx, db, c.ID, 5)
		if err != nil {
			t.Fatalf("flag %d: %v", i, err)
		}
		if got.FlagCount != i || got.Status != domain.StatusApproved {
			t.Fatalf("after %d flags: %+v", i, got)
		}
	}
	got, err := FlagConfession(ctx, db, c.ID, 5)
	if err != nil {
		t.Fatalf("fifth flag: %v", err)
	}
	if got.FlagCount != 5 || got.Status != domain.StatusFlagged {
		t.Fatalf("fifth flag must transition to flagged: %+v", got)
	}

	// A rejected confession keeps its status however often it is flagged.
	r := seedConfession(t, db, 0, time.Now().UTC())
	_ = SetConfessionStatus(ctx, db, r.ID, domain.StatusRejected)
	for i := 0; i < 6; i++ {
		got, _ = FlagConfession(ctx, db, r.ID, 5)
	}
	if got.Status != domain.StatusRejected {
		t.Fatalf("rejected status must not change, got %q", got.Status)
	}

	if _, err := FlagConfession(ctx, db, "missing", 5); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateText_Status_Top(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	c := seedConfession(t, db, 4, time.Now().UTC().Add(-time.Hour))

	if err := UpdateConfessionText(ctx, db, c.ID, "a completely new text"); err != nil {
		t.Fatalf("UpdateConfessionText: %v", err)
	}
	if err := SetTopConfession(ctx, db, c.ID, true); err != nil {
		t.Fatalf("SetTopConfession: %v", err)
	}
	got, _ := GetConfession(ctx, db, c.ID, false)
	if got.Text != "a completely new text" || !got.IsTopConfession {
		t.Fatalf("unexpected row: %+v", got)
	}
	if got.Likes != 4 || got.AnonID != c.AnonID || !got.CreatedAt.Equal(c.CreatedAt) {
		t.Fatalf("edit must not touch likes/anon id/created_at: %+v", got)
	}

	for _, err := range []error{
		UpdateConfessionText(ctx, db, "missing", "x"),
		SetConfessionStatus(ctx, db, "missing", domain.StatusPending),
		SetTopConfession(ctx, db, "missing", true),
	} {
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	}
}

func TestDeleteConfession_RemovesChildren(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	c := seedConfession(t, db, 0, time.Now().UTC())
	seedReply(t, db, c.ID, time.Now().UTC())
	if err := InsertLike(ctx, db, c.ID, "sess_a"); err != nil {
		t.Fatalf("InsertLike: %v", err)
	}

	if err := DeleteConfession(ctx, db, c.ID); err != nil {
		t.Fatalf("DeleteConfession: %v", err)
	}
	var n int64
	db.Model(&domain.Reply{}).Where("confession_id = ?", c.ID).Count(&n)
	if n != 0 {
		t.Fatalf("replies should be deleted, found %d", n)
	}
	db.Model(&domain.ConfessionLike{}).Where("confession_id = ?", c.ID).Count(&n)
	if n != 0 {
		t.Fatalf("ledger rows should be deleted, found %d", n)
	}
	if err := DeleteConfession(ctx, db, c.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete should be ErrNotFound, got %v", err)
	}
}
