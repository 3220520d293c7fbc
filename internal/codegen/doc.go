// Package codegen lowers typed numeric values and the builtin signal
// primitives into two-lane vector IR.
//
// The compiler looks up, per operation node, the generator registered for
// the (operation, source form) pair and invokes it with pointers to the
// operand cells and a pre-allocated result cell. Generators emit into the
// current function body through a FunctionContext and return; they never
// allocate a result location of their own.
//
// # Lane contracts
//
// Every numeric value is a two-lane vector. For most operations the lanes
// are the left and right channel and are processed independently. Two
// operations deliberately treat the lanes differently:
//
//   - Pan reads the pan operand as one scalar broadcast to both lanes and
//     reinterprets lane 0 as "pan for left" and lane 1 as "pan for right";
//     its output lanes are genuine left/right gains applied to x.
//   - Sequence computes one selector per lane; lane 0 of the result comes
//     from the item chosen by lane 0 of the index, lane 1 from the item
//     chosen by lane 1. Combine is the constant-selector case of the same
//     lane select.
//
// # Precision
//
// Frequency conversion runs on v2f32 vectors; every other generator works
// on v2f64. EmitConvert narrows and widens at the boundary.
//
// # Transport
//
// Tempo and sample rate are never cached: the Transport in the
// FunctionContext emits a fresh load of the transport globals at every
// point of use, so generated code sees values changed between invocations.
package codegen
