package ir

// Version constants for the IR and the code generator.
const (
	// IRVersion is the listing/layout schema version.
	IRVersion = "1"

	// CompilerVersion is the synthgen code generator version.
	CompilerVersion = "0.1.0"
)
