package models

// Credentials is the per-session remote authentication record
type Credentials struct {
	Username string `json:"username"`
	Token    string `json:"token"`
}

// LoginRequest stores credentials for the calling session
type LoginRequest struct {
	Username string `json:"username"`
	Token    string `json:"token"`
}

// InitRequest re-initializes the workspace as an empty repository
type InitRequest struct {
	ProjectName string `json:"project_name,omitempty"`
}

// CloneRequest replaces the workspace with a clone of URL
type CloneRequest struct {
	URL string `json:"url"`
}

// FileReadRequest reads one file
type FileReadRequest struct {
	FilePath string `json:"filepath"`
}

// FileWriteRequest creates or overwrites one file
type FileWriteRequest struct {
	FilePath string `json:"filepath"`
	Content  string `json:"content"`
}

// FileDeleteRequest removes a file or directory
type FileDeleteRequest struct {
	FilePath string `json:"filepath"`
}

// FileRenameRequest moves a file or directory
type FileRenameRequest struct {
	OldPath string `json:"old_path"`
	NewPath string `json:"new_path"`
}

// PushRequest commits everything and pushes to origin
type PushRequest struct {
	CommitMessage string `json:"commit_message"`
}

// CommandRequest runs one non-interactive command in the workspace
type CommandRequest struct {
	Command string `json:"command"`
}

// StatusResponse is the generic success/failure envelope
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// FilesResponse lists workspace files
type FilesResponse struct {
	Files []string `json:"files"`
}

// ContentResponse carries file content
type ContentResponse struct {
	Content string `json:"content"`
}

// CommandResponse is the result of a one-shot command
type CommandResponse struct {
	Output     string `json:"output"`
	Error      string `json:"error"`
	ReturnCode int    `json:"returncode"`
}

// KillResponse reports how many terminal processes were killed
type KillResponse struct {
	Status string `json:"status"`
	Killed int    `json:"killed"`
}

// TerminalsResponse lists tracked terminal processes for a session
type TerminalsResponse struct {
	PIDs []int `json:"pids"`
}

// ErrorResponse is the body of every 4xx/5xx response
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// ResizeMessage is the client->server terminal resize directive
type ResizeMessage struct {
	Type string `json:"type"`
	Rows int    `json:"rows"`
	Cols int    `json:"cols"`
}
