package types

type AccessLogEntry struct {
	User       string  `json:"user"`
	Method     string  `json:"method"`
	Success    bool    `json:"success"`
	Confidence float64 `json:"confidence"`
	Timestamp  string  `json:"timestamp"`
}

type StatusResponse struct {
	SystemStatus    string           `json:"system_status"`
	TotalUsers      int              `json:"total_users"`
	PendingCommands int              `json:"pending_commands"`
	RecentAccess    []AccessLogEntry `json:"recent_access"`
	Timestamp       string           `json:"timestamp"`
}

type UserInfo struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Age       int    `json:"age"`
	CreatedAt string `json:"created_at"`
	IsActive  bool   `json:"is_active"`
}

type MutationResponse struct {
	Status  string `json:"status"` // "success" | "not_found"
	Message string `json:"message"`
}

type PurgeResponse struct {
	Status  string `json:"status"`
	Removed int64  `json:"removed"`
}
