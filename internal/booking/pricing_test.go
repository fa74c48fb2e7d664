package booking

import "testing"

func TestComputePrice(t *testing.T) {
	at := func(s string) TimeOfDay {
		v, err := ParseTimeOfDay(s)
		if err != nil {
			t.Fatalf("bad fixture %q: %v", s, err)
		}
		return v
	}
	cases := []struct {
		name       string
		rate       string
		start, end string
		want       string
	}{
		{"two whole hours", "100000.00", "10:00", "12:00", "200000.00"},
		{"single hour", "1500.00", "09:00", "10:00", "1500.00"},
		{"ninety minutes", "1.00", "10:00", "11:30", "1.50"},
		{"half hour rounds half-up", "0.01", "10:00", "10:30", "0.01"},
		{"one minute of one cent per hour", "0.01", "10:00", "10:01", "0.00"},
		{"full window", "12.34", "09:00", "22:00", "160.42"},
		{"empty interval", "1000.00", "10:00", "10:00", "0.00"},
	}
	for _, tc := range cases {
		rate, err := ParseCents(tc.rate)
		if err != nil {
			t.Fatalf("%s: bad rate %q: %v", tc.name, tc.rate, err)
		}
		got := ComputePrice(rate, at(tc.start), at(tc.end))
		if got.String() != tc.want {
			t.Errorf("%s: ComputePrice = %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestComputePriceDeterministic(t *testing.T) {
	rate := Cents(10000000) // 100000.00 per hour
	first := ComputePrice(rate, 600, 720)
	for i := 0; i < 1000; i++ {
		if got := ComputePrice(rate, 600, 720); got != first {
			t.Fatalf("run %d: ComputePrice drifted from %d to %d", i, first, got)
		}
	}
	if first != Cents(20000000) {
		t.Fatalf("ComputePrice = %d cents, want 20000000", first)
	}
}

func TestParseCents(t *testing.T) {
	cases := []struct {
		in     string
		out    Cents
		wantOK bool
	}{
		{"1500", 150000, true},
		{"1500.5", 150050, true},
		{"1500.50", 150050, true},
		{"0.01", 1, true},
		{".50", 50, true},
		{"-12.34", -1234, true},
		{"100000.00", 10000000, true},
		{"1.234", 0, false},
		{"", 0, false},
		{".", 0, false},
		{"abc", 0, false},
		{"1,50", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseCents(tc.in)
		if tc.wantOK != (err == nil) {
			t.Errorf("ParseCents(%q): err = %v, wantOK %v", tc.in, err, tc.wantOK)
			continue
		}
		if err == nil && got != tc.out {
			t.Errorf("ParseCents(%q) = %d, want %d", tc.in, got, tc.out)
		}
	}
}

func TestCentsString(t *testing.T) {
	cases := []struct {
		in   Cents
		want string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{150050, "1500.50"},
		{-1234, "-12.34"},
		{20000000, "200000.00"},
	}
	for _, tc := range cases {
		if got := tc.in.String(); got != tc.want {
			t.Errorf("Cents(%d).String() = %q, want %q", tc.in, got, tc.want)
		}
	}
	buf, err := Cents(150050).MarshalJSON()
	if err != nil || string(buf) != `"1500.50"` {
		t.Errorf("MarshalJSON() = %s, %v", buf, err)
	}
}
