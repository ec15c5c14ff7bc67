// Package infra contains technical adapters such as log writers, metrics
// exporters and the external solver runner. These packages should depend
// only on the interfaces defined in the core packages.
package infra
