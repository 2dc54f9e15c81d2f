package probe

import "regexp"

// numberRe is the lexical grammar of a numeric value: optional sign,
// digits with an optional fraction (or a bare fraction), optional exponent.
var numberRe = regexp.MustCompile(`^[+-]?([0-9]+\.?[0-9]*|\.[0-9]+)([eE][+-]?[0-9]+)?$`)

// IsNumeric reports whether s matches the numeric grammar.
func IsNumeric(s string) bool {
	return numberRe.MatchString(s)
}

// Classify returns FieldNumeric iff every distinct value's text is numeric.
// The test is lexical: the JSON string "42" is numeric, JSON true is not.
func Classify(set FieldValueSet) FieldType {
	for _, v := range set.Values {
		if !IsNumeric(v.String()) {
			return FieldString
		}
	}
	return FieldNumeric
}
