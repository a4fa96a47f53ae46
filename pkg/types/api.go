package types

// DownloadRequest triggers a model asset download.
// All fields are optional; empty fields fall back to server configuration.
type DownloadRequest struct {
	// Remote URL of the model asset.
	// example: https://huggingface.co/google/gemma-3n-E2B-it-litert-preview/resolve/main/gemma-3n-E2B-it-int4.task
	SourceURL string `json:"source_url,omitempty" example:"https://huggingface.co/google/gemma-3n-E2B-it-litert-preview/resolve/main/gemma-3n-E2B-it-int4.task"`
	// Absolute destination path on local storage.
	// example: /home/user/.tutord/models/gemma-3n-E2B-it-int4.task
	DestinationPath string `json:"destination_path,omitempty" example:"/home/user/.tutord/models/gemma-3n-E2B-it-int4.task"`
	// Bearer token sent as the Authorization header.
	AuthToken string `json:"auth_token,omitempty"`
}

// DownloadResponse is returned by POST /download.
type DownloadResponse struct {
	Success bool `json:"success" example:"true"`
	// Final path of the written asset.
	DestinationPath string `json:"destination_path,omitempty"`
	// Number of bytes written to disk.
	// example: 3136226711
	BytesWritten int64 `json:"bytes_written,omitempty" example:"3136226711"`
	// Set when the download was started in the background (?async=1).
	Started bool `json:"started,omitempty"`
	// Human-readable failure message.
	ErrorMessage string `json:"error_message,omitempty"`
}

// ProgressResponse is returned by GET /download/progress.
type ProgressResponse struct {
	IsDownloading bool `json:"is_downloading" example:"true"`
	// Fraction in [0,1]; stays 0 when the content length is unknown.
	// example: 0.42
	FractionComplete float64 `json:"fraction_complete" example:"0.42"`
	BytesTransferred int64   `json:"bytes_transferred" example:"1317215219"`
	// -1 when the server did not send a content length.
	TotalBytes int64 `json:"total_bytes" example:"3136226711"`
}

// CancelResponse acknowledges POST /download/cancel.
type CancelResponse struct {
	Acknowledged bool `json:"acknowledged" example:"true"`
}

// InitializeRequest triggers backend initialization.
type InitializeRequest struct {
	// Optional asset path; defaults to the configured asset location.
	AssetPath string `json:"asset_path,omitempty"`
	// Prefer the GPU/accelerated backend when available.
	// example: true
	UseAcceleratedBackend bool `json:"use_accelerated_backend" example:"true"`
	// Maximum number of tokens per sequence (context size).
	// example: 1024
	MaxSequenceTokens int `json:"max_sequence_tokens,omitempty" example:"1024"`
	// Hint for the number of backend worker threads.
	// example: 4
	BackendThreadHint int `json:"backend_thread_hint,omitempty" example:"4"`
}

// InitializeResponse is returned by POST /initialize.
type InitializeResponse struct {
	Success bool `json:"success" example:"true"`
	// example: mock
	BackendName  string `json:"backend_name,omitempty" example:"mock"`
	SessionID    string `json:"session_id,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// GenerateRequest is the payload of POST /generate.
type GenerateRequest struct {
	// Required prompt text.
	// example: Explain photosynthesis to a ten year old.
	Prompt string `json:"prompt" example:"Explain photosynthesis to a ten year old."`
	// example: 0.8
	Temperature float64 `json:"temperature,omitempty" example:"0.8"`
	// example: 40
	TopK int `json:"top_k,omitempty" example:"40"`
	// example: 0.95
	TopP float64 `json:"top_p,omitempty" example:"0.95"`
	// Maximum number of new tokens to generate; 0 lets the backend decide.
	// example: 256
	MaxTokens int `json:"max_tokens,omitempty" example:"256"`
}

// GenerateResponse is returned by POST /generate.
type GenerateResponse struct {
	Text string `json:"text"`
	// example: 1830
	ElapsedMillis int64 `json:"elapsed_millis" example:"1830"`
	// Approximate rate computed from the word count of text.
	// example: 12.5
	TokensPerSecond float64 `json:"tokens_per_second" example:"12.5"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	Success bool `json:"success" example:"false"`
	// Error message.
	// example: model not initialized
	ErrorMessage string `json:"error_message" example:"model not initialized"`
	// HTTP status code.
	// example: 409
	Code int `json:"code" example:"409"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Initialization phase (uninitialized, validating, initializing, ready, rejected, failed, disposing).
	// example: ready
	Phase string `json:"phase" example:"ready"`
	// Active session when ready.
	Session *SessionStatus `json:"session,omitempty"`
	// Last error observed by the manager (if any).
	LastError string `json:"last_error,omitempty"`
	// Current download state.
	Download ProgressResponse `json:"download"`
	// Local asset introspection.
	Asset AssetStatus `json:"asset"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
	// Total number of successful initializations.
	// example: 1
	InitsTotal uint64 `json:"inits_total" example:"1"`
	// Total number of completed generate calls.
	// example: 12
	GenerationsTotal uint64 `json:"generations_total" example:"12"`
}
