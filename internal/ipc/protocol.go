// Package ipc carries JSON-line commands between CLI invocations and the owner session.
package ipc

// Commands understood by the owner session.
const (
	CommandStatus = "status"
	CommandToggle = "toggle"
	CommandStop   = "stop"
	CommandCancel = "cancel"
)

// Request is one client command.
type Request struct {
	Command string `json:"command"`
}

// Response is the owner's reply to one Request.
type Response struct {
	OK      bool   `json:"ok"`
	State   string `json:"state,omitempty"`
	Elapsed string `json:"elapsed,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
