// =============================================================================
// eBay Order Export - SKU Rule Table
// =============================================================================
//
// The merchant encodes product composition in the SKU itself:
//
//   - An "NF" suffix marks an item that ships together with a fixed
//     reconciliation article. The row is split in two: the base article and
//     the reconciliation code at price 0.
//   - A composite code <letters><2 digits><2 digits> (e.g. "HLMR0102")
//     represents a grouped variant of a recognized product family. It is
//     decomposed into one or two concrete articles.
//
// The rule table below is merchant-specific data, not control flow: the
// transformer looks a SKU up here and dispatches on the matched rule kind.
// Adding a product family or another suffix split is a table edit.
//
// =============================================================================

package sku

// RuleKind tags what the transformer does with a matched SKU.
type RuleKind int

const (
	// PassThrough leaves the record unchanged.
	PassThrough RuleKind = iota

	// SplitFixed strips the matched suffix and emits a second row carrying a
	// fixed substitute code at price 0.
	SplitFixed

	// DecomposePair splits a composite code into its two digit pairs:
	// identical pairs collapse into one row with doubled quantity, different
	// pairs become two rows with the second priced 0.
	DecomposePair
)

// Rule is one entry of the rule table.
type Rule struct {
	// Kind selects the transformation.
	Kind RuleKind

	// Code is the substitute SKU for SplitFixed rules.
	Code string
}

// RuleSet is the immutable lookup table the transformer dispatches on.
type RuleSet struct {
	// Suffixes maps SKU suffixes to their rule. Checked first.
	Suffixes map[string]Rule

	// Prefixes maps the letter prefix of a composite code to its rule.
	// Only checked when the SKU has the composite shape.
	Prefixes map[string]Rule
}

// DefaultRuleSet returns the merchant's current rule table:
//   - "...NF"  -> split off the "DWR30" reconciliation article
//   - HLMR, DR, CL, DBL -> composite codes to decompose
func DefaultRuleSet() RuleSet {
	return RuleSet{
		Suffixes: map[string]Rule{
			"NF": {Kind: SplitFixed, Code: "DWR30"},
		},
		Prefixes: map[string]Rule{
			"HLMR": {Kind: DecomposePair},
			"DR":   {Kind: DecomposePair},
			"CL":   {Kind: DecomposePair},
			"DBL":  {Kind: DecomposePair},
		},
	}
}
