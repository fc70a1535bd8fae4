package entry

import "testing"

func TestClockTick(t *testing.T) {
	c := NewClock("a", 0)
	next := c.Tick()

	if next.Time != 1 {
		t.Fatalf("expected time 1, got %d", next.Time)
	}
	if next.ID != "a" {
		t.Fatalf("expected id unchanged, got %s", next.ID)
	}
	if c.Time != 0 {
		t.Fatalf("Tick must not mutate the receiver")
	}
}

func TestClockMerge(t *testing.T) {
	a := NewClock("a", 3)
	b := NewClock("a", 7)

	if merged := a.Merge(b); merged.Time != 7 {
		t.Fatalf("expected merged time 7, got %d", merged.Time)
	}
	if merged := b.Merge(a); merged.Time != 7 {
		t.Fatalf("expected merged time 7 regardless of order, got %d", merged.Time)
	}
}

func TestCompareClocks(t *testing.T) {
	cases := []struct {
		name string
		a, b *Clock
		want int
	}{
		{"time breaks tie", NewClock("z", 1), NewClock("a", 2), -1},
		{"id breaks time tie", NewClock("a", 1), NewClock("b", 1), -1},
		{"equal", NewClock("a", 1), NewClock("a", 1), 0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := CompareClocks(c.a, c.b)
			if (got < 0) != (c.want < 0) || (got == 0) != (c.want == 0) || (got > 0) != (c.want > 0) {
				t.Fatalf("CompareClocks(%v, %v) = %d, want sign of %d", c.a, c.b, got, c.want)
			}
		})
	}
}
