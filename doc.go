// Package logging configures a process logger over rs/zerolog with a console
// sink, a rotating file sink, and asynchronous pooled delivery.
//
// Key features
//   - One-call setup: Setup(logfile, poolSize, model) wires both sinks and
//     returns a ready Service
//   - Console sink always receives every record; the file sink can be gated
//     by a RecordValidator so only conforming structured records persist
//   - Pooled delivery: records are handed off to poolSize workers and Close
//     flushes in-flight records within a bounded timeout
//   - File rotation via lumberjack and configurable console formatting
//   - Structured-first API: typed fields via InfoWith/ErrorWith and scoped
//     loggers via With()
//
// Typical usage
//
//	svc, err := logging.Setup("metrics.log", 1, Metric{})
//	if err != nil { panic(err) }
//	defer svc.Close()
//
//	svc.Info("appears in console only; not a valid Metric")
//	svc.Info(`{"name":"latency_ms","value":12}`) // console and file
package logging
