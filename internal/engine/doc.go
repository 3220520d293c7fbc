// Package engine is a reference interpreter for generated functions.
//
// It executes an ir.Function instruction by instruction against
// call-scoped memory cells, so the lowering of every builtin can be
// checked numerically without a native backend.
//
// Memory model:
//   - Each parameter is a caller-owned Cell (num, sparse array or varargs).
//   - Allocas create fresh zeroed cells; they die with the call.
//   - Globals are materialised per call from the Transport argument, so
//     generated code never observes state from a previous call.
//   - Cells can be poisoned. The vector of an inactive array slot is
//     poisoned, and loading it is a POISON_READ fault. A passing call is
//     therefore proof that no inactive slot's vector was read.
//
// Arithmetic follows the lane type: f32 lanes are rounded to single
// precision after every operation, i32 lanes wrap at 32 bits.
//
// Execution is bounded by a per-call step quota (WithMaxSteps) and stops
// when the context is cancelled.
package engine
