// Package translator turns short natural-language arithmetic phrases into
// symbolic expressions.
//
// A phrase is normalized, then offered to an ordered list of rules. The
// first rule whose detector matches builds the result; captured
// sub-phrases are resolved by the multiplicative and simple-term parsers:
//
//	res, ok := translator.Translate("3 less than twice a number")
//	// res.Expression == "2x - 3", res.PatternID == "less_than"
//
// Rule order decides overlapping wording. "no more than" is an inequality,
// not a reversed addition, because the reversal rules skip connectives
// preceded by "no"; everything else follows registry order.
//
// Every non-empty phrase produces a Result. Unmatched text falls back to a
// single term with PatternID "fallback"; text that cannot be read as a
// number or variable becomes an opaque symbol. Only input that normalizes
// to nothing reports ok == false.
//
// Results carry a Generator that produces another phrase of the same
// category for practice. Translators are safe for concurrent use.
package translator
