package types

// ErrorResponse is the uniform error body: Error carries the HTTP status
// text, Message the human-readable cause.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// UpdateTranslationsRequest is the body of PUT .../branches/{branch}/translations.
// Translations maps label name → language code → new term.
type UpdateTranslationsRequest struct {
	File         string                       `json:"file"`
	Translations map[string]map[string]string `json:"translations"`
}

// SuggestRequest asks for a machine-suggested translation of one term.
type SuggestRequest struct {
	Label          string `json:"label"`
	SourceLanguage string `json:"sourceLanguage"`
	SourceTerm     string `json:"sourceTerm"`
	TargetLanguage string `json:"targetLanguage"`
}

type SuggestResponse struct {
	Suggestion string `json:"suggestion"`
	Model      string `json:"model"`
}
