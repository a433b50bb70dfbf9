package featureflag

type Flag string

const (
	// Rejects spot insertions made through the HTTP API. Spots are then only
	// loaded from the data file at startup.
	FlagDisableWriteAPI Flag = "DISABLE_WRITE_API"

	// Refuses WebSocket viewport stream connections.
	FlagDisableViewportStream Flag = "DISABLE_VIEWPORT_STREAM"
)
