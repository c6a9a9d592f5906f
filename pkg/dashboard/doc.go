// Package dashboard turns benchmark result files into a static dashboard.
//
// Result files are JSON documents with a "benchmarks" array whose entries
// carry a name, an optional mean {point_estimate, unit} and an optional
// throughput in operations per second. internal/bench writes files in this
// shape. Generate collects them from the configured directories and writes:
//
//	<out>/index.html            Chart.js page that loads data/benchmarks.json
//	<out>/README.md             how the dashboard is produced and served
//	<out>/data/benchmarks.json  every processed result set
//	<out>/data/<stem>.json      a copy of each raw result file
//
// A file that cannot be read or decoded is logged and skipped; the rest of
// the dashboard is still produced.
package dashboard
