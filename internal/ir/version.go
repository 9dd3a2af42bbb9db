package ir

// Version constants for the IR schema and engine.
const (
	// IRVersion is the expression schema version written into content hashes.
	IRVersion = "1"

	// EngineVersion is the runebound engine version.
	EngineVersion = "0.1.0"
)
