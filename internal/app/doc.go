// Package app is the application layer - the only component that references
// multiple engines. It orchestrates every use case: cached backend reads,
// clustering, actor classification, series building, summaries, and the
// write path with its cache invalidation.
package app
