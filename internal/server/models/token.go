package models

// Token carries an opaque bearer token. An empty Data means "no token".
type Token struct {
	Data string `json:"data"`
}

// Empty reports whether t is the no-token sentinel.
func (t *Token) Empty() bool {
	return t == nil || t.Data == ""
}

// Register is the outcome of a registration attempt. Validation and
// conflict failures are reported here with Success=false; infrastructure
// failures are returned as errors instead.
type Register struct {
	Success      bool   `json:"success"`
	TokenData    string `json:"tokenData"`
	ErrorMessage string `json:"errorMessage"`
}
