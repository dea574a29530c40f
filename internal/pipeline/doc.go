// Package pipeline runs one collection pass: the directory lookup with its
// per-local detail fetches, and the UnionFacts membership scrape, side by side.
// The two branches share a context so a fatal error in one cancels the other.
// Their results are joined with union.Merge once both have finished.
package pipeline
