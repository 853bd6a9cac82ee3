package api

// ScriptTokenHeader carries the optional shared secret between the proxy and
// the downstream script.
const ScriptTokenHeader = "X-Script-Token"

// UpdateRequest is the body accepted by the update proxy. RowIndex and Data are
// pointers/slices so that absent fields can be told apart from zero values.
type UpdateRequest struct {
	ScriptURL string   `json:"scriptUrl"`
	RowIndex  *int     `json:"rowIndex"`
	Data      []string `json:"data"`
}

// UpdateResult is returned by both the proxy and the downstream script.
type UpdateResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ScriptRequest is the write payload forwarded downstream.
type ScriptRequest struct {
	RowIndex int      `json:"rowIndex"`
	Data     []string `json:"data"`
}

// Identity is an authenticated caller.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type statusResponse struct {
	Status string `json:"status"`
}
