package stats

import "testing"

func TestToRangeBuckets(t *testing.T) {
	cases := []struct {
		frac float64
		want string
	}{
		{0.0, "0 - 5"},
		{0.42, "40 - 45"},
		{0.99, "95 - 100"},
		{1.0, "100 - 100"},
	}
	for _, c := range cases {
		got := ToRange(c.frac, 5)
		if got != c.want {
			t.Errorf("ToRange(%v, 5) = %q, want %q", c.frac, got, c.want)
		}
	}
}

func TestCounterAddAndTotal(t *testing.T) {
	c := NewCounter[int]()
	c.Add(3)
	c.Add(3)
	c.Add(5)
	if c.Total() != 3 {
		t.Fatalf("Total = %d, want 3", c.Total())
	}
	if c[3] != 2 {
		t.Fatalf("c[3] = %d, want 2", c[3])
	}
}

func TestFromIntCounter(t *testing.T) {
	c := NewCounter[int]()
	c.Add(2)
	c.Add(2)
	c.Add(4)
	ns, err := FromIntCounter(c)
	if err != nil {
		t.Fatalf("FromIntCounter: %v", err)
	}
	if ns.Distribution["2"] != 2 || ns.Distribution["4"] != 1 {
		t.Fatalf("unexpected distribution: %+v", ns.Distribution)
	}
	if ns.Max != 4 || ns.Min != 2 {
		t.Fatalf("max/min = %v/%v, want 4/2", ns.Max, ns.Min)
	}
	wantAvg := (2.0 + 2.0 + 4.0) / 3.0
	if ns.Average != wantAvg {
		t.Fatalf("average = %v, want %v", ns.Average, wantAvg)
	}
}

func TestFromIntCounterEmpty(t *testing.T) {
	ns, err := FromIntCounter(NewCounter[int]())
	if err != nil {
		t.Fatalf("FromIntCounter: %v", err)
	}
	if len(ns.Distribution) != 0 || ns.Average != 0 {
		t.Fatalf("expected zero-value NumericStats, got %+v", ns)
	}
}

func TestFromStringCounter(t *testing.T) {
	c := NewCounter[string]()
	c.Add("40 - 45")
	c.Add("40 - 45")
	dist := FromStringCounter(c)
	if dist["40 - 45"] != 2 {
		t.Fatalf("dist[\"40 - 45\"] = %d, want 2", dist["40 - 45"])
	}
}

func TestFromFloat64Slice(t *testing.T) {
	avg, max, min, err := FromFloat64Slice([]float64{1, 2, 3})
	if err != nil {
		t.Fatalf("FromFloat64Slice: %v", err)
	}
	if avg != 2 || max != 3 || min != 1 {
		t.Fatalf("avg/max/min = %v/%v/%v, want 2/3/1", avg, max, min)
	}
}

func TestFromFloat64SliceMeanStdSingleton(t *testing.T) {
	mean, std, err := FromFloat64SliceMeanStd([]float64{1.0})
	if err != nil {
		t.Fatalf("FromFloat64SliceMeanStd: %v", err)
	}
	if mean != 1.0 || std != 0 {
		t.Fatalf("mean/std = %v/%v, want 1/0", mean, std)
	}
}

func TestFromFloat64SliceEmpty(t *testing.T) {
	avg, max, min, err := FromFloat64Slice(nil)
	if err != nil {
		t.Fatalf("FromFloat64Slice: %v", err)
	}
	if avg != 0 || max != 0 || min != 0 {
		t.Fatalf("expected zeros for empty input, got %v/%v/%v", avg, max, min)
	}
}
