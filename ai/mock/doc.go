// Package mock provides deterministic test doubles for the ai package
// interfaces. The mock embedder derives vectors from an FNV hash of the
// input so identical texts always embed identically; both mocks accept
// injected behavior for failure-path testing.
package mock
