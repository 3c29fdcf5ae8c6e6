package money

import (
	"math/rand"
	"testing"

	pkgerrors "github.com/gourmetpress/gourmetpress-backend/pkg/errors"
)

func TestParseRoundsHalfAwayFromZero(t *testing.T) {
	cases := map[string]int64{
		"12.345":  1235,
		"12.344":  1234,
		"0.005":   1,
		"-0.005":  -1,
		"10":      1000,
		"0.1":     10,
		"2.675":   268,
		"1999.99": 199999,
	}
	for input, want := range cases {
		amount, err := Parse(input)
		if err != nil {
			t.Fatalf("parse %q: %v", input, err)
		}
		if amount.Cents() != want {
			t.Fatalf("parse %q: expected %d cents, got %d", input, want, amount.Cents())
		}
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse("12.3.4")
	if err == nil {
		t.Fatal("expected error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSubRejectsNegativeResult(t *testing.T) {
	_, err := FromCents(100).Sub(FromCents(150))
	if err == nil {
		t.Fatal("expected negative result to be rejected")
	}
	got, err := FromCents(150).Sub(FromCents(150))
	if err != nil {
		t.Fatalf("sub: %v", err)
	}
	if got.Cents() != 0 {
		t.Fatalf("expected 0, got %d", got.Cents())
	}
}

func TestFormat(t *testing.T) {
	if got := FromCents(123456).Format("USD"); got != "$1234.56" {
		t.Fatalf("unexpected USD format %q", got)
	}
	if got := FromCents(500).Format("JPY"); got != "5.00 JPY" {
		t.Fatalf("unexpected fallback format %q", got)
	}
}

// The order total invariant: total == subtotal + tax + deliveryFee + tip - discount,
// exact in minor units, across randomized inputs.
func TestTotalInvariantRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		subtotal := FromCents(rng.Int63n(1_000_000))
		tax := FromCents(rng.Int63n(100_000))
		fee := FromCents(rng.Int63n(10_000))
		tip := FromCents(rng.Int63n(20_000))
		gross := subtotal.Add(tax).Add(fee).Add(tip)
		discount := FromCents(rng.Int63n(gross.Cents() + 1))

		total, err := gross.Sub(discount)
		if err != nil {
			t.Fatalf("iteration %d: %v", i, err)
		}
		want := subtotal.Cents() + tax.Cents() + fee.Cents() + tip.Cents() - discount.Cents()
		if total.Cents() != want {
			t.Fatalf("iteration %d: expected %d, got %d", i, want, total.Cents())
		}
		if total.IsNegative() {
			t.Fatalf("iteration %d: negative total", i)
		}
	}
}

func TestMulQtyMatchesLineTotals(t *testing.T) {
	unit, err := Parse("9.99")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := unit.MulQty(3).Cents(); got != 2997 {
		t.Fatalf("expected 2997, got %d", got)
	}
}

func TestMulRateBpsRoundsHalfAwayFromZero(t *testing.T) {
	cases := []struct {
		cents int64
		bps   int64
		want  int64
	}{
		{10000, 875, 875},  // $100.00 at 8.75% = $8.75
		{999, 875, 87},     // 87.41 rounds down
		{1000, 825, 83},    // 82.5 rounds up, away from zero
		{-1000, 825, -83},  // negative rounds away from zero
		{2599, 0, 0},
	}
	for _, tc := range cases {
		if got := FromCents(tc.cents).MulRateBps(tc.bps).Cents(); got != tc.want {
			t.Fatalf("MulRateBps(%d, %d) = %d, want %d", tc.cents, tc.bps, got, tc.want)
		}
	}
}

func TestCmp(t *testing.T) {
	if FromCents(1).Cmp(FromCents(2)) != -1 {
		t.Fatal("expected -1")
	}
	if FromCents(2).Cmp(FromCents(1)) != 1 {
		t.Fatal("expected 1")
	}
	if FromCents(2).Cmp(FromCents(2)) != 0 {
		t.Fatal("expected 0")
	}
}
