// Package archive renders batches of web pages into PDF files stored under a
// knowledge-base directory tree. It defines the core types and interfaces for
// the archiving pipeline: filename derivation, language normalization, the
// response-time prober, the Chrome-backed PDF renderer, and the batch
// orchestrator that fans jobs out over a fixed worker pool.
package archive
