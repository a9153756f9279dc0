// Package dto defines data transfer objects for the symbollist HTTP API.
package dto

// SymbolItem represents a symbol in the API response.
// It contains only the public-facing fields needed by clients.
type SymbolItem struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Market string `json:"market,omitempty"`
}

// RegisterRequest is the body of POST /symbols.
type RegisterRequest struct {
	Codes []string `json:"codes" binding:"required,min=1"`
}

// RegisterResponse reports how many of the requested codes were new.
type RegisterResponse struct {
	Requested int `json:"requested"`
	Created   int `json:"created"`
}
