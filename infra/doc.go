// Package infra contains technical adapters such as the delimited text
// reader, the proposal file writer, the run journal and metrics exporters.
// These packages should depend only on the interfaces defined in the core
// packages.
package infra
