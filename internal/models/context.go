package models

// ContextRequest scopes a knowledge snapshot to a profile and the plan inputs.
type ContextRequest struct {
	Profile        string   `json:"profile"`
	IncludeSources []string `json:"includeSources"`
	IncludeDocs    []string `json:"includeDocs"`
}

// ContextSnapshot is the knowledge bundle handed to generation providers.
type ContextSnapshot struct {
	Modules []string `json:"modules"`
	ADR     []string `json:"adr"`
	Domains []string `json:"domains"`
	Notes   []string `json:"notes"`
}
