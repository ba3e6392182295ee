package strconvx

import (
	"math"
	"strconv"
	"testing"
)

func TestAppendInt_MatchesStrconv(t *testing.T) {
	for _, v := range []int64{0, 7, -7, 255, -255, 1 << 40, math.MaxInt64, math.MinInt64} {
		for _, base := range []int{2, 10, 16, 36} {
			want := strconv.FormatInt(v, base)
			if got := string(appendInt(nil, v, base)); got != want {
				t.Errorf("appendInt(%d, %d) = %q, want %q", v, base, got, want)
			}
		}
	}
}

func TestAppendUint_BadBase(t *testing.T) {
	if got := string(appendUint(nil, 42, 1)); got != "42" {
		t.Fatalf("base 1 = %q, want decimal", got)
	}
	if got := string(appendUint([]byte("x="), math.MaxUint64, 16)); got != "x=ffffffffffffffff" {
		t.Fatalf("max = %q", got)
	}
}

func TestAppendFixed_MatchesStrconv(t *testing.T) {
	cases := []struct {
		f    float64
		prec int
	}{
		{0, 0}, {0, 1}, {50, 0}, {23.5, 1}, {-3.75, 2}, {1200, 0},
		{99.96, 1}, {0.125, 3}, {12345.678, 2}, {-0.3, 1},
	}
	for _, c := range cases {
		want := strconv.FormatFloat(c.f, 'f', c.prec, 64)
		if got := string(appendFixed(nil, c.f, c.prec)); got != want {
			t.Errorf("appendFixed(%v, %d) = %q, want %q", c.f, c.prec, got, want)
		}
	}
}

func TestAppendFixed_Special(t *testing.T) {
	cases := []struct {
		f    float64
		prec int
		want string
	}{
		{math.NaN(), 1, "NaN"},
		{math.Inf(1), 1, "+Inf"},
		{math.Inf(-1), 0, "-Inf"},
		{1.5, -1, "1.500000"},
		{0.1, 12, "0.100000000"},
	}
	for _, c := range cases {
		if got := string(appendFixed(nil, c.f, c.prec)); got != c.want {
			t.Errorf("appendFixed(%v, %d) = %q, want %q", c.f, c.prec, got, c.want)
		}
	}
}
