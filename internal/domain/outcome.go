package domain

// Outcome is the result of one adapter invocation, always attributed to the
// service that produced it. Exactly one of Text or Reason is meaningful,
// selected by OK.
type Outcome struct {
	Service string `json:"service"`
	Text    string `json:"text,omitempty"`
	Reason  string `json:"reason,omitempty"`
	OK      bool   `json:"ok"`
}

// AggregateResult holds one Outcome per configured service, in configuration
// order. No entry is ever dropped regardless of individual failures.
type AggregateResult []Outcome

// Success builds a successful outcome for the named service.
func Success(service, text string) Outcome {
	return Outcome{Service: service, Text: text, OK: true}
}

// Failure builds a failed outcome with a short diagnostic reason.
func Failure(service, reason string) Outcome {
	return Outcome{Service: service, Reason: reason}
}
