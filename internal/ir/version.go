package ir

// Version constants for the IR record schema and tooling.
const (
	// IRVersion is the record schema version.
	IRVersion = "1"

	// ToolVersion is the cfgset tool version.
	ToolVersion = "0.1.0"
)
