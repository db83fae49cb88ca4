// Package processes reads the OS process table.
//
// Matcher finds the processes whose name contains a query and identifies each one by
// pid and create time. Sampler reads the resident memory, CPU time and disk I/O
// counters of one identity and turns two consecutive readings into a Sample.
//
// A read that fails because the identity no longer resolves to a live process is a
// Gone failure; anything else is Transient and may succeed on the next tick.
package processes
