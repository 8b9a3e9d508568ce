package cli

import (
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Property: P&L formatting always carries an explicit sign for gains,
// exactly two decimal places, and parses back to the original value.
func TestProperty_PnLFormatting(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("FormatPnL round-trips with explicit sign", prop.ForAll(
		func(cents int) bool {
			amount := float64(cents) / 100
			formatted := FormatPnL(amount)

			if amount > 0 && !strings.HasPrefix(formatted, "+") {
				t.Logf("no + prefix for %v: %s", amount, formatted)
				return false
			}
			if amount < 0 && !strings.HasPrefix(formatted, "-") {
				t.Logf("no - prefix for %v: %s", amount, formatted)
				return false
			}

			parts := strings.Split(formatted, ".")
			if len(parts) != 2 || len(parts[1]) != 2 {
				t.Logf("not two decimal places for %v: %s", amount, formatted)
				return false
			}

			parsed, err := strconv.ParseFloat(strings.TrimPrefix(formatted, "+"), 64)
			if err != nil {
				t.Logf("unparseable: %s", formatted)
				return false
			}
			return parsed == amount
		},
		gen.IntRange(-10_000_000, 10_000_000),
	))

	properties.TestingRun(t)
}

// Property: truncation never exceeds the limit and preserves short
// strings untouched.
func TestProperty_TruncateString(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("TruncateString respects the limit", prop.ForAll(
		func(s string, maxLen int) bool {
			out := TruncateString(s, maxLen)
			if len(out) > maxLen {
				t.Logf("len(%q) = %d > %d", out, len(out), maxLen)
				return false
			}
			if len(s) <= maxLen && out != s {
				t.Logf("short string altered: %q -> %q", s, out)
				return false
			}
			return true
		},
		gen.AlphaString(),
		gen.IntRange(1, 40),
	))

	properties.TestingRun(t)
}
