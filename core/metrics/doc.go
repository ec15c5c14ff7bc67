package metrics

// Package metrics defines interfaces and implementations for collecting
// scheduling metrics. Sinks like PromSink and InfluxSink record events such
// as resource unit grants, packet drops or solver runs and can be combined
// with NewMultiSink. The factory helpers return a MultiSink automatically
// when multiple sinks are configured.
