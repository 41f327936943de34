package domain

// Answer wire format. These literals are shared by the prompt builder and the
// grounding validator and must never diverge.
const (
	// MarkerAnswer prefixes the answer line.
	MarkerAnswer = "Réponse :"

	// MarkerEvidence prefixes the verbatim quotation line.
	MarkerEvidence = "Preuve (extrait) :"

	// MarkerSource prefixes the line naming the document and chunk.
	MarkerSource = "Source :"

	// FallbackAnswer is returned whenever grounding cannot be established.
	// It is byte-identical for empty retrieval and rejected model output.
	FallbackAnswer = "Je ne sais pas d’après les documents fournis."
)

// RequiredMarkers returns the three line prefixes in output order.
func RequiredMarkers() []string {
	return []string{MarkerAnswer, MarkerEvidence, MarkerSource}
}

// AnswerState is the terminal state of the answering state machine.
type AnswerState int

const (
	// AnswerUnknown means the fallback sentence was returned.
	AnswerUnknown AnswerState = iota

	// AnswerAnswered means a validated three-line answer was returned.
	AnswerAnswered
)

// String returns the state name.
func (s AnswerState) String() string {
	switch s {
	case AnswerAnswered:
		return "answered"
	case AnswerUnknown:
		return "unknown"
	default:
		return unknownDescription
	}
}

// UnknownReason records why an answer fell back.
type UnknownReason string

// Fallback reasons.
const (
	ReasonNone            UnknownReason = ""
	ReasonEmptyRetrieval  UnknownReason = "empty_retrieval"
	ReasonMissingMarker   UnknownReason = "missing_marker"
	ReasonUngroundedQuote UnknownReason = "ungrounded_quote"
	ReasonUnknownSource   UnknownReason = "unknown_source"
)

// AnswerRecord is the final answer plus the debug bundle used for inspection.
// It is rebuilt for every question and never persisted.
type AnswerRecord struct {
	// Text is the validated three-line answer or FallbackAnswer.
	Text string

	// State is the terminal state.
	State AnswerState

	// Reason explains an Unknown state.
	Reason UnknownReason

	// Evidence lists the retrieved chunks with their distances, best first.
	Evidence []Match
}

// IsFallback reports whether the record carries the fallback sentence.
func (a *AnswerRecord) IsFallback() bool {
	return a.State == AnswerUnknown
}
