package timezone

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDateParseAndWeekday(t *testing.T) {
	d, err := ParseDate("2026-09-07")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.Weekday() != time.Monday {
		t.Fatalf("expected Monday, got %s", d.Weekday())
	}
	if d.String() != "2026-09-07" {
		t.Fatalf("round trip gave %s", d.String())
	}
}

func TestDateAddDaysCrossesMonth(t *testing.T) {
	d := NewDate(2026, time.January, 31)
	next := d.AddDays(1)
	if next.String() != "2026-02-01" {
		t.Fatalf("expected 2026-02-01, got %s", next)
	}
	if !d.Before(next) || !next.After(d) {
		t.Fatal("ordering broken across month boundary")
	}
}

func TestTimeOfDayOrdering(t *testing.T) {
	nine := NewTimeOfDay(9, 0)
	half := NewTimeOfDay(9, 30)
	if !nine.Before(half) {
		t.Fatal("09:00 should sort before 09:30")
	}
	if nine.Before(nine) {
		t.Fatal("a time must not sort before itself")
	}
}

func TestParseTimeOfDayRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "9am", "25:00", "12:61"} {
		if _, err := ParseTimeOfDay(s); err == nil {
			t.Fatalf("expected error for %q", s)
		}
	}
}

func TestWallClockJSONRoundTrip(t *testing.T) {
	type payload struct {
		Date Date      `json:"date"`
		Time TimeOfDay `json:"time"`
	}

	in := payload{Date: NewDate(2026, time.September, 7), Time: NewTimeOfDay(23, 30)}
	raw, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"date":"2026-09-07","time":"23:30"}` {
		t.Fatalf("unexpected encoding: %s", raw)
	}

	var out payload
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !out.Date.Equal(in.Date) || !out.Time.Equal(in.Time) {
		t.Fatalf("round trip gave %s %s", out.Date, out.Time)
	}
}
