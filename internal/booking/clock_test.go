package booking

import "testing"

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		in     string
		out    TimeOfDay
		wantOK bool
	}{
		{"00:00", 0, true},
		{"09:00", 540, true},
		{"21:59", 1319, true},
		{"23:59", 1439, true},
		{"24:00", 0, false},
		{"09:60", 0, false},
		{"9:00", 0, false},
		{"0900", 0, false},
		{"09:00:00", 0, false},
		{"", 0, false},
		{"ab:cd", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseTimeOfDay(tc.in)
		if tc.wantOK != (err == nil) {
			t.Errorf("ParseTimeOfDay(%q): err = %v, wantOK %v", tc.in, err, tc.wantOK)
			continue
		}
		if err == nil && got != tc.out {
			t.Errorf("ParseTimeOfDay(%q) = %d, want %d", tc.in, got, tc.out)
		}
	}
}

func TestTimeOfDayString(t *testing.T) {
	if s := TimeOfDay(540).String(); s != "09:00" {
		t.Errorf("String() = %q, want 09:00", s)
	}
	if s := TimeOfDay(1319).String(); s != "21:59" {
		t.Errorf("String() = %q, want 21:59", s)
	}
	buf, err := TimeOfDay(600).MarshalJSON()
	if err != nil || string(buf) != `"10:00"` {
		t.Errorf("MarshalJSON() = %s, %v", buf, err)
	}
}

func TestParseDate(t *testing.T) {
	if d, err := ParseDate("2025-06-15"); err != nil || d != "2025-06-15" {
		t.Errorf("ParseDate valid: %q, %v", d, err)
	}
	for _, bad := range []string{"2025-13-01", "2025-06-32", "15-06-2025", "2025/06/15", "not-a-date"} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("ParseDate(%q): expected error", bad)
		}
	}
}

func TestWindowContains(t *testing.T) {
	w := NewWindow(9, 22)
	cases := []struct {
		start, end string
		want       bool
	}{
		{"09:00", "10:00", true},  // starts exactly at opening
		{"21:00", "22:00", true},  // ends exactly at closing
		{"09:00", "22:00", true},  // full window
		{"08:59", "10:00", false}, // one minute early
		{"21:30", "22:01", false}, // one minute late
		{"08:00", "09:00", false},
	}
	for _, tc := range cases {
		s, _ := ParseTimeOfDay(tc.start)
		e, _ := ParseTimeOfDay(tc.end)
		if got := w.Contains(s, e); got != tc.want {
			t.Errorf("Contains(%s, %s) = %v, want %v", tc.start, tc.end, got, tc.want)
		}
	}
}

func TestWindowGrid(t *testing.T) {
	w := NewWindow(9, 22)
	if w.Hours() != 13 {
		t.Fatalf("Hours() = %d, want 13", w.Hours())
	}
	slots := w.Grid()
	if len(slots) != 13 {
		t.Fatalf("Grid() length = %d, want 13", len(slots))
	}
	for i, s := range slots {
		if !s.IsAvailable {
			t.Errorf("slot %d: fresh grid must be available", i)
		}
		if s.End-s.Start != 60 {
			t.Errorf("slot %d: width %d minutes, want 60", i, s.End-s.Start)
		}
		if i > 0 && slots[i-1].End != s.Start {
			t.Errorf("slot %d: gap after previous slot", i)
		}
	}
	if slots[0].Start.String() != "09:00" || slots[12].End.String() != "22:00" {
		t.Errorf("grid bounds = %s..%s, want 09:00..22:00", slots[0].Start, slots[12].End)
	}
}

func TestOverlaps(t *testing.T) {
	at := func(s string) TimeOfDay {
		v, err := ParseTimeOfDay(s)
		if err != nil {
			t.Fatalf("bad fixture %q: %v", s, err)
		}
		return v
	}
	cases := []struct {
		s1, e1, s2, e2 string
		want           bool
	}{
		{"10:00", "12:00", "11:00", "13:00", true},  // partial overlap
		{"10:00", "12:00", "10:00", "12:00", true},  // identical
		{"10:00", "12:00", "10:30", "11:30", true},  // contained
		{"10:00", "12:00", "12:00", "13:00", false}, // touching end->start
		{"12:00", "13:00", "10:00", "12:00", false}, // touching other way
		{"09:00", "10:00", "11:00", "12:00", false}, // disjoint
	}
	for _, tc := range cases {
		if got := Overlaps(at(tc.s1), at(tc.e1), at(tc.s2), at(tc.e2)); got != tc.want {
			t.Errorf("Overlaps(%s-%s, %s-%s) = %v, want %v", tc.s1, tc.e1, tc.s2, tc.e2, got, tc.want)
		}
	}
}
