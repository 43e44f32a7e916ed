package framework

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateDocumentShortTextUntouched(t *testing.T) {
	text, cut := TruncateDocument("short body", 100)
	assert.Equal(t, "short body", text)
	assert.False(t, cut)
}

func TestTruncateDocumentCutsAndMarks(t *testing.T) {
	body := strings.Repeat("x", 150)
	text, cut := TruncateDocument(body, 100)
	assert.True(t, cut)
	assert.Equal(t, body[:100]+TruncationMarker, text)
}

func TestTruncateDocumentZeroMaxUsesDefault(t *testing.T) {
	body := strings.Repeat("y", DefaultMaxContentLength+1)
	text, cut := TruncateDocument(body, 0)
	assert.True(t, cut)
	assert.Len(t, text, DefaultMaxContentLength+len(TruncationMarker))
}

func TestTruncateDocumentKeepsRunesWhole(t *testing.T) {
	// "é" is two bytes; a cap of 2 lands mid-rune and must back off.
	text, cut := TruncateDocument("aéé", 2)
	assert.True(t, cut)
	assert.True(t, utf8.ValidString(text))
	assert.Equal(t, "a"+TruncationMarker, text)

	assert.Equal(t, "aé...", Clip("aééé", 3))
}

func TestClip(t *testing.T) {
	assert.Equal(t, "abc", Clip("abc", 10))
	assert.Equal(t, "ab...", Clip("abcdef", 2))
	assert.Equal(t, "abcdef", Clip("abcdef", 0))
}

func TestParseAgentType(t *testing.T) {
	got, ok := ParseAgentType("document_comparison")
	assert.True(t, ok)
	assert.Equal(t, AgentDocumentComparison, got)

	got, ok = ParseAgentType("nonsense")
	assert.False(t, ok)
	assert.Equal(t, AgentGeneralKnowledge, got)
}
