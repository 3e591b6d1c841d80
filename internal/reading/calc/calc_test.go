package calc

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", s, err)
	}
	return d
}

func TestDeltaFirstReading(t *testing.T) {
	got, err := Delta(dec(t, "120.5"), nil)
	if err != nil {
		t.Fatalf("delta: %v", err)
	}
	if !got.Equal(dec(t, "120.5")) {
		t.Fatalf("expected 120.5, got %s", got)
	}
}

func TestDeltaNegative(t *testing.T) {
	prev := dec(t, "200")
	_, err := Delta(dec(t, "150"), &prev)
	if !errors.Is(err, ErrNegativeConsumption) {
		t.Fatalf("expected ErrNegativeConsumption, got %v", err)
	}
}

func TestDeltaZero(t *testing.T) {
	prev := dec(t, "150")
	got, err := Delta(dec(t, "150"), &prev)
	if err != nil {
		t.Fatalf("delta: %v", err)
	}
	if !got.IsZero() {
		t.Fatalf("expected zero, got %s", got)
	}
}

func TestParseMethod(t *testing.T) {
	for _, s := range []string{"direct", "area_based", "mixed"} {
		m, err := ParseMethod(s)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		if string(m) != s {
			t.Fatalf("parse %q: got %q", s, m)
		}
	}
	if _, err := ParseMethod("estimated"); !errors.Is(err, ErrUnknownMethod) {
		t.Fatalf("expected ErrUnknownMethod, got %v", err)
	}
}

func TestComputeDirect(t *testing.T) {
	prev := dec(t, "1450.2")
	delta, err := Delta(dec(t, "1500.5"), &prev)
	if err != nil {
		t.Fatalf("delta: %v", err)
	}
	res, err := Compute(MethodDirect, delta, dec(t, "1"), decimal.Zero, decimal.Zero, dec(t, "100"))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !res.Total().Equal(dec(t, "50.3")) {
		t.Fatalf("expected consumption 50.3, got %s", res.Total())
	}
	cost := Cost(res.Total(), dec(t, "2.5"))
	if !cost.Equal(dec(t, "125.75")) {
		t.Fatalf("expected cost 125.75, got %s", cost)
	}
}

func TestComputeDirectWithCoefficient(t *testing.T) {
	res, err := Compute(MethodDirect, dec(t, "100"), dec(t, "1.5"), decimal.Zero, decimal.Zero, dec(t, "50"))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !res.Direct.Equal(dec(t, "75")) {
		t.Fatalf("expected 75, got %s", res.Direct)
	}
	if !res.AreaBased.IsZero() {
		t.Fatalf("direct must leave area part zero, got %s", res.AreaBased)
	}
}

func TestComputeAreaBased(t *testing.T) {
	res, err := Compute(MethodAreaBased, decimal.Zero, dec(t, "1"), dec(t, "852.00"), dec(t, "0.0131"), dec(t, "100"))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !res.Total().Equal(dec(t, "11.1612")) {
		t.Fatalf("expected 11.1612, got %s", res.Total())
	}
	if !res.Direct.IsZero() {
		t.Fatalf("area_based must leave direct part zero, got %s", res.Direct)
	}
}

func TestComputeMixed(t *testing.T) {
	res, err := Compute(MethodMixed, dec(t, "40"), dec(t, "1"), dec(t, "100"), dec(t, "0.2"), dec(t, "100"))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !res.Direct.Equal(dec(t, "40")) {
		t.Fatalf("expected direct 40, got %s", res.Direct)
	}
	if !res.AreaBased.Equal(dec(t, "20")) {
		t.Fatalf("expected area part 20, got %s", res.AreaBased)
	}
	if !res.Total().Equal(dec(t, "60")) {
		t.Fatalf("expected total 60, got %s", res.Total())
	}
}

func TestComputeUnknownMethod(t *testing.T) {
	_, err := Compute(Method("weird"), decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero, dec(t, "100"))
	if !errors.Is(err, ErrUnknownMethod) {
		t.Fatalf("expected ErrUnknownMethod, got %v", err)
	}
}
