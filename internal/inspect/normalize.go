package inspect

import "github.com/aretw0/portscope/pkg/domain"

// Normalize turns a raw host value into a domain.Value.
// Types the host wraps in a one-element container are unwrapped first;
// sequences become tuples and anything else a scalar. Outside string
// ports, non-finite tags from a JSON transport become floats again.
func Normalize(raw any, plugType string) domain.Value {
	pt := domain.ParsePlugType(plugType)
	value := raw
	if pt.Category() != domain.CategoryString {
		value = domain.DecodeNonFinite(value)
	}
	if pt.Wrapped() {
		if seq, ok := value.([]any); ok && len(seq) > 0 {
			value = seq[0]
		}
	}
	return domain.FromRaw(value)
}
