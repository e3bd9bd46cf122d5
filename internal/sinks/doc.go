// Package sinks provides dispatcher observers that forward endpoint event
// records to logs, MQTT, the SQLite history and InfluxDB.
//
// Handlers run on the driver's event goroutine, so every sink that does
// I/O is wrapped in Async: a bounded queue drained by one worker. A full
// queue drops the record and logs a warning.
//
//	logSink := sinks.NewLogSink(logger)
//	hist := sinks.NewAsync("history", sinks.NewHistorySink(repo, logger), 256, logger)
//	defer hist.Close()
//	dispatcher.OnEvent(logSink.Handle)
//	dispatcher.OnEvent(hist.Handle)
package sinks
