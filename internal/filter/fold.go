package filter

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// FoldFunc is the SQL function name the store registers for Fold.
const FoldFunc = "casefold"

// Fold normalizes s to NFC and applies Unicode case folding.
// A Caser is stateful, so one is built per call.
func Fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}
