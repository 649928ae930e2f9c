// Package mock provides test doubles for the ai package interfaces.
//
// The mocks default to deterministic behavior (hash-derived embedding
// vectors, input-derived text) so tests are reproducible without any
// remote service. Custom behavior is injected through function fields,
// and per-method call counters support assertions about how often the
// remote boundary was exercised.
package mock
