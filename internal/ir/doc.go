// Package ir provides the two-lane vector intermediate representation that
// the code generators in internal/codegen emit into.
//
// This package contains types, the builder and the listing printer only.
// All other internal packages import ir; ir imports nothing internal. This
// keeps IR the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Every numeric value is a two-lane vector (v2f64 for signal values,
//     v2f32 inside frequency conversion, v2i32 for selector indices)
//   - Memory layouts (num, array, varargs) are fixed here and shared by the
//     generators and the reference interpreter
//   - Listings are deterministic: identical functions print identically and
//     hash to the same content-addressed id
package ir
