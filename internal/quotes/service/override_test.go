package service

import "testing"

func TestOverrideApply(t *testing.T) {
	cases := []struct {
		name      string
		override  Override
		basePrice int64
		want      int64
	}{
		{"none keeps base", NoOverride(), 2300, 2300},
		{"direct replaces base", DirectOverride(1500), 2300, 1500},
		{"direct zero", DirectOverride(0), 2300, 0},
		{"percent surcharge", PercentOverride(10), 2000, 2200},
		{"percent discount", PercentOverride(-10), 2000, 1800},
		{"percent rounds", PercentOverride(9), 50, 55},
		{"percent zero", PercentOverride(0), 2300, 2300},
		{"full discount", PercentOverride(-100), 2300, 0},
		{"doubles", PercentOverride(100), 2300, 4600},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.override.Apply(tc.basePrice)
			if got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestOverrideFromWire(t *testing.T) {
	val := int64(1500)
	neg := int64(-5)

	t.Run("empty type is no override", func(t *testing.T) {
		ov, err := OverrideFromWire("", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ov.IsSet() {
			t.Fatal("expected unset override")
		}
	})

	t.Run("direct", func(t *testing.T) {
		ov, err := OverrideFromWire("direct", &val)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := ov.Apply(999); got != 1500 {
			t.Fatalf("expected 1500, got %d", got)
		}
	})

	t.Run("direct without value fails", func(t *testing.T) {
		if _, err := OverrideFromWire("direct", nil); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("direct negative fails", func(t *testing.T) {
		if _, err := OverrideFromWire("direct", &neg); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("percent without value fails", func(t *testing.T) {
		if _, err := OverrideFromWire("percent", nil); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("unknown type fails", func(t *testing.T) {
		if _, err := OverrideFromWire("relative", &val); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestOverrideWireRoundTrip(t *testing.T) {
	for _, ov := range []Override{NoOverride(), DirectOverride(1200), PercentOverride(15)} {
		typ, val := ov.Wire()
		back, err := OverrideFromWire(typ, val)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if back.Apply(1000) != ov.Apply(1000) {
			t.Fatalf("round trip changed behavior for type %q", typ)
		}
	}
}
