// =============================================================================
// eBay Order Export - SKU Transformer
// =============================================================================
//
// The transformer rewrites each normalized order record according to the
// merchant's SKU rule table, producing one or two output rows per input.
//
// RULE PRECEDENCE (strict, mutually exclusive):
//   1. Empty SKU            -> pass through unchanged
//   2. Matching suffix      -> SplitFixed (e.g. "ABC30NF" -> "ABC30" + "DWR30")
//   3. Composite code shape -> DecomposePair, if the letter prefix is in the
//                              rule table; otherwise pass through
//   4. Anything else        -> pass through unchanged
//
// A SKU is evaluated against exactly one rule. Malformed SKUs never raise;
// they fall through to passthrough. The transformer has no failure mode of
// its own.
//
// DIGIT-PAIR NORMALIZATION:
//   The pairs "10", "11" and "12" are ordinal short forms and expand to their
//   3-character codes by appending "0" ("10" -> "100"). The expansion only
//   ever looks at the two raw characters sliced from the SKU, so it cannot
//   re-trigger on an already expanded pair.
//
// OUTPUT ROWS:
//   Split rows are built as fresh values from the input record, never by
//   mutating it in place, so the emitted rows share no state.
//
// =============================================================================

package sku

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/ebaytools/order-export/internal/order"
)

// pairWidth is the width of one digit pair in a composite code.
const pairWidth = 2

// =============================================================================
// TRANSFORMER
// =============================================================================

// Transformer applies a RuleSet to order records.
type Transformer struct {
	rules RuleSet
}

// NewTransformer creates a Transformer with the given rule table.
func NewTransformer(rules RuleSet) *Transformer {
	return &Transformer{rules: rules}
}

// Apply transforms every record in the list, preserving input order.
// Each input yields one or two output rows.
func (t *Transformer) Apply(orders []order.Order) []order.Order {
	out := make([]order.Order, 0, len(orders))
	for _, o := range orders {
		out = append(out, t.Transform(o)...)
	}
	return out
}

// Transform rewrites a single record according to the first matching rule.
func (t *Transformer) Transform(o order.Order) []order.Order {
	if o.SKU == "" {
		return []order.Order{o}
	}

	// Suffix rules take precedence over the composite shape.
	for suffix, rule := range t.rules.Suffixes {
		if rule.Kind == SplitFixed && strings.HasSuffix(o.SKU, suffix) {
			return splitFixed(o, suffix, rule.Code)
		}
	}

	// Composite shape: <letters><2 digits><2 digits>.
	letters, firstPair, lastPair, ok := decompose(o.SKU)
	if !ok {
		return []order.Order{o}
	}
	rule, known := t.rules.Prefixes[letters]
	if !known || rule.Kind != DecomposePair {
		// A well-shaped code of an unrecognized family stays as it is.
		return []order.Order{o}
	}

	return decomposePair(o, letters, normalizePair(firstPair), normalizePair(lastPair))
}

// =============================================================================
// RULE IMPLEMENTATIONS
// =============================================================================

// splitFixed emits the base article plus the fixed reconciliation article.
// Row A keeps quantity and price; row B carries the substitute code at
// price 0 with the same quantity.
func splitFixed(o order.Order, suffix, code string) []order.Order {
	rowA := o
	rowA.SKU = strings.TrimSuffix(o.SKU, suffix)

	rowB := o
	rowB.SKU = code
	rowB.Price = decimal.Zero

	return []order.Order{rowA, rowB}
}

// decomposePair emits the concrete article(s) of a composite code.
// Identical pairs collapse into one row with doubled quantity; different
// pairs become two rows, the second priced 0.
func decomposePair(o order.Order, letters, firstPair, lastPair string) []order.Order {
	if firstPair == lastPair {
		row := o
		row.SKU = letters + firstPair
		row.Quantity = 2 * o.Quantity
		return []order.Order{row}
	}

	rowA := o
	rowA.SKU = letters + firstPair

	rowB := o
	rowB.SKU = letters + lastPair
	rowB.Price = decimal.Zero

	return []order.Order{rowA, rowB}
}

// =============================================================================
// CODE DECOMPOSITION
// =============================================================================

// decompose splits a SKU into letter prefix and the two trailing digit
// pairs. ok is false when the SKU does not have the composite shape: too
// short to slice, a non-alphabetic prefix, or non-numeric trailing pairs.
func decompose(sku string) (letters, firstPair, lastPair string, ok bool) {
	runes := []rune(sku)
	if len(runes) <= 2*pairWidth {
		return "", "", "", false
	}

	letters = string(runes[:len(runes)-2*pairWidth])
	firstPair = string(runes[len(runes)-2*pairWidth : len(runes)-pairWidth])
	lastPair = string(runes[len(runes)-pairWidth:])

	if !isAlpha(letters) || !isDigits(firstPair) || !isDigits(lastPair) {
		return "", "", "", false
	}

	return letters, firstPair, lastPair, true
}

// normalizePair expands the ordinal short forms "10", "11" and "12" to their
// 3-character codes. All other pairs are returned unchanged.
func normalizePair(pair string) string {
	switch pair {
	case "10", "11", "12":
		return pair + "0"
	}
	return pair
}

// isAlpha reports whether s is non-empty and consists of letters only.
func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// isDigits reports whether s is non-empty and consists of ASCII digits only.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
