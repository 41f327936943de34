package services

import (
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// quotePairs are the quotation marks stripped from the evidence line.
var quotePairs = [][2]string{
	{`"`, `"`},
	{"“", "”"},
	{"«", "»"},
	{"'", "'"},
	{"‘", "’"},
}

// GroundingValidator decides whether a model reply may be shown.
// Every rejected reply is replaced wholesale by domain.FallbackAnswer.
type GroundingValidator struct {
	verifyEvidence bool
}

// NewGroundingValidator creates a validator. With verifyEvidence set, the
// quoted evidence must also appear in one of the retrieved chunks and the
// source line must cite, as "file | chunk N", a retrieved chunk holding it.
func NewGroundingValidator(verifyEvidence bool) *GroundingValidator {
	return &GroundingValidator{verifyEvidence: verifyEvidence}
}

// Validate returns the text to display and the reason for a fallback.
// The reason is domain.ReasonNone when the reply is accepted.
func (v *GroundingValidator) Validate(reply string, result domain.QueryResult) (string, domain.UnknownReason) {
	lines := markerLines(reply)
	for _, marker := range domain.RequiredMarkers() {
		if _, ok := lines[marker]; !ok {
			return domain.FallbackAnswer, domain.ReasonMissingMarker
		}
	}

	if v.verifyEvidence {
		quote := collapseSpace(stripQuotes(lines[domain.MarkerEvidence]))
		if quote == "" || !quotedInAny(quote, result) {
			return domain.FallbackAnswer, domain.ReasonUngroundedQuote
		}
		if !citesQuotedChunk(lines[domain.MarkerSource], quote, result) {
			return domain.FallbackAnswer, domain.ReasonUnknownSource
		}
	}

	return strings.TrimSpace(reply), domain.ReasonNone
}

// markerLines maps each marker to the remainder of the first line it starts.
func markerLines(reply string) map[string]string {
	found := make(map[string]string, 3)
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		for _, marker := range domain.RequiredMarkers() {
			if _, seen := found[marker]; seen {
				continue
			}
			if rest, ok := strings.CutPrefix(line, marker); ok {
				found[marker] = strings.TrimSpace(rest)
			}
		}
	}
	return found
}

func stripQuotes(s string) string {
	s = strings.TrimSpace(s)
	for _, q := range quotePairs {
		if len(s) >= len(q[0])+len(q[1]) && strings.HasPrefix(s, q[0]) && strings.HasSuffix(s, q[1]) {
			return strings.TrimSpace(s[len(q[0]) : len(s)-len(q[1])])
		}
	}
	return s
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func quotedInAny(quote string, result domain.QueryResult) bool {
	for _, m := range result.Matches {
		if strings.Contains(collapseSpace(m.Text), quote) {
			return true
		}
	}
	return false
}

// citesQuotedChunk reports whether line names a retrieved chunk, by exact
// source and chunk number, whose text contains quote.
func citesQuotedChunk(line, quote string, result domain.QueryResult) bool {
	cited, err := domain.ParseLabel(line)
	if err != nil {
		return false
	}
	for _, m := range result.Matches {
		if m.Metadata == cited && strings.Contains(collapseSpace(m.Text), quote) {
			return true
		}
	}
	return false
}
