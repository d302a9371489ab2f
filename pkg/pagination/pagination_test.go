package pagination

import (
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestCursorRoundTrip(t *testing.T) {
	want := Cursor{CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 500, time.UTC), ID: uuid.New()}
	got, err := ParseCursor(EncodeCursor(want))
	if err != nil {
		t.Fatalf("ParseCursor error: %v", err)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) || got.ID != want.ID {
		t.Fatalf("cursor mismatch: got %+v want %+v", got, want)
	}
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	if c, err := ParseCursor(""); err != nil || c != nil {
		t.Fatalf("empty cursor should be nil, got %v %v", c, err)
	}
	if _, err := ParseCursor("!!!"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestNormalizeLimit(t *testing.T) {
	cases := map[int]int{0: DefaultLimit, -3: DefaultLimit, 10: 10, 500: MaxLimit}
	for in, want := range cases {
		if got := NormalizeLimit(in); got != want {
			t.Fatalf("NormalizeLimit(%d) = %d want %d", in, got, want)
		}
	}
}

func TestFromQuery(t *testing.T) {
	params, err := FromQuery(url.Values{"limit": {"5"}, "cursor": {"abc"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params.Limit != 5 || params.Cursor != "abc" {
		t.Fatalf("unexpected params %+v", params)
	}
	if _, err := FromQuery(url.Values{"limit": {"ten"}}); err == nil {
		t.Fatal("expected invalid limit error")
	}
}

func TestTrimBuildsNextCursor(t *testing.T) {
	type row struct {
		id uuid.UUID
		at time.Time
	}
	now := time.Now().UTC()
	rows := []row{{uuid.New(), now}, {uuid.New(), now.Add(-time.Minute)}, {uuid.New(), now.Add(-2 * time.Minute)}}
	page := Trim(rows, 2, func(r row) Cursor { return Cursor{CreatedAt: r.at, ID: r.id} })
	if len(page.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(page.Items))
	}
	next, err := ParseCursor(page.NextCursor)
	if err != nil || next.ID != rows[1].id {
		t.Fatalf("expected next cursor at second row, got %+v err=%v", next, err)
	}

	last := Trim(rows[:1], 2, func(r row) Cursor { return Cursor{CreatedAt: r.at, ID: r.id} })
	if last.NextCursor != "" {
		t.Fatalf("expected no next cursor on final page")
	}
}
