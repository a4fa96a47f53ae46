package types

// AssetStatus describes the model asset on local storage.
type AssetStatus struct {
	// Absolute path the asset resolves to.
	// example: /home/user/.tutord/models/gemma-3n-E2B-it-int4.task
	Path string `json:"path" example:"/home/user/.tutord/models/gemma-3n-E2B-it-int4.task"`
	// Whether a regular file exists at Path.
	Exists bool `json:"exists" example:"true"`
	// Size on disk; 0 when missing.
	// example: 3136226711
	SizeBytes int64 `json:"size_bytes" example:"3136226711"`
	// Threshold a file must reach to be accepted by initialization.
	// example: 900000000
	MinSizeBytes int64 `json:"min_size_bytes" example:"900000000"`
	// Exists and SizeBytes >= MinSizeBytes.
	Valid bool `json:"valid" example:"true"`
}

// SessionStatus summarizes the active model session.
type SessionStatus struct {
	ID        string `json:"id"`
	AssetPath string `json:"asset_path"`
	// example: mock
	Backend               string `json:"backend" example:"mock"`
	UseAcceleratedBackend bool   `json:"use_accelerated_backend"`
	MaxSequenceTokens     int    `json:"max_sequence_tokens"`
	BackendThreadHint     int    `json:"backend_thread_hint"`
	// Unix seconds when the session became ready.
	// example: 1700000000
	ReadySinceUnix int64 `json:"ready_since_unix" example:"1700000000"`
}
