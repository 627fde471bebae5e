// Package metrics exposes Prometheus counters for lock acquisition.
//
// dirlock is a short-lived CLI, so metrics are not served over HTTP. With
// --metrics-file the collected values are written once, at the end of the
// invocation, in the text exposition format understood by the node_exporter
// textfile collector.
package metrics
