package money

import "testing"

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want Money
	}{
		{"0", 0},
		{"10", 1000},
		{"10.5", 1050},
		{"1234.56", 123456},
		{"0.01", 1},
		{".5", 50},
		{"-3.10", -310},
		{"+7", 700},
	}
	for _, tc := range cases {
		got, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("Parse(%q): unexpected error %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("Parse(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", " ", "abc", "1.234", "1,50", "--1", "."} {
		if _, err := Parse(in); err == nil {
			t.Fatalf("Parse(%q): expected error", in)
		}
	}
}

func TestFormatRoundTrip(t *testing.T) {
	for _, m := range []Money{0, 1, 99, 100, 123456, -310} {
		parsed, err := Parse(Format(m))
		if err != nil {
			t.Fatalf("round trip %d: %v", m, err)
		}
		if parsed != m {
			t.Fatalf("round trip %d: got %d", m, parsed)
		}
	}
}

func TestDivRoundHalfAwayFromZero(t *testing.T) {
	cases := []struct {
		n, d, want int64
	}{
		{10000, 3, 3333},
		{10001, 2, 5001},
		{5, 2, 3},
		{-5, 2, -3},
		{15, 10, 2},
		{14, 10, 1},
		{-15, 10, -2},
	}
	for _, tc := range cases {
		if got := DivRound(tc.n, tc.d); got != tc.want {
			t.Fatalf("DivRound(%d, %d) = %d, want %d", tc.n, tc.d, got, tc.want)
		}
	}
}

func TestApplyBps(t *testing.T) {
	// 6% of 150.00 is 9.00.
	if got := ApplyBps(15000, 600); got != 900 {
		t.Fatalf("ApplyBps = %d, want 900", got)
	}
	// 2.5% of 0.10 rounds 0.25 centavos half away from zero.
	if got := ApplyBps(10, 250); got != 0 {
		t.Fatalf("ApplyBps small = %d, want 0", got)
	}
	if got := ApplyBps(100, 250); got != 3 {
		t.Fatalf("ApplyBps(100, 250) = %d, want 3", got)
	}
}
