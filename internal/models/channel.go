package models

// MethodCallRequest is the POST /channels/:platform/:channel payload, the
// same shape the framework's JSON method codec produces.
// args is left untyped; handlers coerce individual values.
type MethodCallRequest struct {
	Method string `json:"method"`
	Args   any    `json:"args,omitempty"`
}
