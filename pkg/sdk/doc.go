// Package logdex provides an in-process Go client for the logdex normalization
// pipeline: it reads log entries from a relational record store, turns them into
// search documents and writes them to Valkey or Redis with the JSON and search modules.
//
//	client, _ := logdex.New(ctx,
//	    logdex.WithValkey("localhost:6379", ""),
//	    logdex.WithSQLite("./data/logs.db"),
//	)
//	defer client.Close()
//
//	n, _ := client.Index(ctx, "log-42")           // one record
//	res, _ := client.IndexKeys(ctx, keys)          // per-key results
//	sum, _ := client.IndexAll(ctx)                 // whole record store
//	ops, _ := client.Normalize(logdex.Entry{...})  // dry run, no I/O
package logdex
