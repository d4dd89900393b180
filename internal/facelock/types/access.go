package types

// Method names for access attempts.  These are stable wire/database values;
// the recognition agent and the coordinator must agree on them.
const (
	MethodFace       = "facial_recognition"
	MethodPIN        = "pin_access"
	MethodPINLockout = "pin_failed_attempts"
)

// UnknownUser is the identity recorded for failed attempts that could not be
// attributed to anyone (e.g. PIN lockout).
const UnknownUser = "UNKNOWN"

// NotifyRequest is a decision notification from the recognition agent.
type NotifyRequest struct {
	UserName   string  `json:"user_name"`
	Method     string  `json:"method"`
	Success    bool    `json:"success"`
	Confidence float64 `json:"confidence"`
}

type NotifyResponse struct {
	Status        string `json:"status"` // "success" | "denied"
	Message       string `json:"message"`
	CommandQueued string `json:"command_queued,omitempty"`
}

// ConfirmRequest is the actuator's report that it applied (or failed to
// apply) a previously polled command.
type ConfirmRequest struct {
	Command string `json:"command"`
	Status  string `json:"status"`
}

type ConfirmResponse struct {
	Status    string `json:"status"` // always "confirmed"
	Timestamp string `json:"timestamp"`
}
