package heuristic

import "strings"

// Producer yields one candidate value for a fallback chain.
// An empty string means the producer has no candidate to offer.
type Producer func() (string, error)

// FirstNonEmpty evaluates producers in order and returns the first
// non-empty result, together with the errors of every producer that
// failed before it. This expresses a fallback chain as data instead of
// nested error handling, so each stage can be tested on its own.
func FirstNonEmpty(producers ...Producer) (string, []error) {
	var errs []error
	for _, produce := range producers {
		value, err := produce()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if strings.TrimSpace(value) != "" {
			return value, errs
		}
	}
	return "", errs
}

// Static wraps a fixed value as a Producer, typically used as the final
// link of a chain.
func Static(value string) Producer {
	return func() (string, error) { return value, nil }
}
