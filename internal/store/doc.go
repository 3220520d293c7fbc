// Package store provides a SQLite-backed cache of compiled functions.
//
// The store keeps three tables:
//   - functions: content-addressed function listings (id = ir.FunctionID)
//   - builds: one row per compile run, ordered by a seq logical clock
//   - build_functions: which functions each build produced, in module order
//
// Functions are shared across builds: writing an unchanged function is a
// no-op, so a rebuild only adds rows for functions whose code changed.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
