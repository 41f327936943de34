package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestGroundingValidator_Validate(t *testing.T) {
	result := sampleResult()

	tests := []struct {
		name       string
		verify     bool
		reply      string
		wantReason domain.UnknownReason
	}{
		{
			name:       "grounded reply",
			verify:     true,
			reply:      groundedReply("Trois mois.", "Le préavis est de trois mois.", "bail.txt | chunk 3"),
			wantReason: domain.ReasonNone,
		},
		{
			name:   "french quotes and extra whitespace",
			verify: true,
			reply: domain.MarkerAnswer + " Trois mois.\n" +
				domain.MarkerEvidence + " « Le préavis   est de\ttrois mois. »\n" +
				domain.MarkerSource + " bail.txt | chunk 3",
			wantReason: domain.ReasonNone,
		},
		{
			name:       "missing evidence line",
			verify:     false,
			reply:      domain.MarkerAnswer + " Trois mois.\n" + domain.MarkerSource + " bail.txt | chunk 3",
			wantReason: domain.ReasonMissingMarker,
		},
		{
			name:       "marker not at line start",
			verify:     false,
			reply:      "Voici: " + groundedReply("Trois mois.", "Le préavis", "bail.txt"),
			wantReason: domain.ReasonMissingMarker,
		},
		{
			name:       "fallback sentence from the model",
			verify:     true,
			reply:      domain.FallbackAnswer,
			wantReason: domain.ReasonMissingMarker,
		},
		{
			name:       "invented quote",
			verify:     true,
			reply:      groundedReply("Six mois.", "Le préavis est de six mois.", "bail.txt | chunk 3"),
			wantReason: domain.ReasonUngroundedQuote,
		},
		{
			name:       "empty quote",
			verify:     true,
			reply:      groundedReply("Trois mois.", "", "bail.txt | chunk 3"),
			wantReason: domain.ReasonUngroundedQuote,
		},
		{
			name:       "unknown source",
			verify:     true,
			reply:      groundedReply("Trois mois.", "trois mois", "autre.txt | chunk 1"),
			wantReason: domain.ReasonUnknownSource,
		},
		{
			name:       "source name only contains a retrieved one",
			verify:     true,
			reply:      groundedReply("Trois mois.", "trois mois", "vieux-bail.txt | chunk 3"),
			wantReason: domain.ReasonUnknownSource,
		},
		{
			name:       "wrong chunk number",
			verify:     true,
			reply:      groundedReply("Trois mois.", "trois mois", "bail.txt | chunk 7"),
			wantReason: domain.ReasonUnknownSource,
		},
		{
			name:       "cites a retrieved chunk that lacks the quote",
			verify:     true,
			reply:      groundedReply("Trois mois.", "trois mois", "annexe.html | chunk 0"),
			wantReason: domain.ReasonUnknownSource,
		},
		{
			name:       "source without chunk number",
			verify:     true,
			reply:      groundedReply("Trois mois.", "trois mois", "bail.txt"),
			wantReason: domain.ReasonUnknownSource,
		},
		{
			name:       "trailing period on source line",
			verify:     true,
			reply:      groundedReply("Trois mois.", "trois mois", "bail.txt | chunk 3."),
			wantReason: domain.ReasonNone,
		},
		{
			name:       "invented quote accepted without verification",
			verify:     false,
			reply:      groundedReply("Six mois.", "Le préavis est de six mois.", "bail.txt | chunk 3"),
			wantReason: domain.ReasonNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewGroundingValidator(tt.verify)

			text, reason := v.Validate(tt.reply, result)

			assert.Equal(t, tt.wantReason, reason)
			if tt.wantReason == domain.ReasonNone {
				assert.Equal(t, tt.reply, text)
			} else {
				assert.Equal(t, domain.FallbackAnswer, text)
			}
		})
	}
}

func TestGroundingValidator_TrimsAcceptedReply(t *testing.T) {
	reply := "\n  " + groundedReply("Trois mois.", "trois mois", "bail.txt | chunk 3") + "\n\n"

	text, reason := NewGroundingValidator(true).Validate(reply, sampleResult())

	assert.Equal(t, domain.ReasonNone, reason)
	assert.Equal(t, groundedReply("Trois mois.", "trois mois", "bail.txt | chunk 3"), text)
}
