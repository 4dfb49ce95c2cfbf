package pearlink

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lvrach/chatmark/internal/annotate"
)

func TestScan(t *testing.T) {
	s := NewScanner("")

	text, got := s.Scan("join pear://keet/abc123 now", 5, annotate.ScanContext{})

	assert.Equal(t, "join pear://keet/abc123 now", text)
	assert.Equal(t, []annotate.Annotation{
		{Kind: annotate.PearLink, Start: 10, Length: 18, Content: "pear://keet/abc123"},
	}, got)
}

func TestScan_Multiple(t *testing.T) {
	s := NewScanner("pear")

	_, got := s.Scan("😎 pear://a\npear://b", 0, annotate.ScanContext{})

	assert.Equal(t, []annotate.Annotation{
		{Kind: annotate.PearLink, Start: 3, Length: 8, Content: "pear://a"},
		{Kind: annotate.PearLink, Start: 12, Length: 8, Content: "pear://b"},
	}, got)
}

func TestScan_SkipsLinks(t *testing.T) {
	_, got := NewScanner("").Scan("pear://keet/abc", 0, annotate.ScanContext{InLink: true})
	assert.Empty(t, got)
}

func TestScan_WordBoundary(t *testing.T) {
	s := NewScanner("pear")
	assert.Empty(t, s.Find("apear://x"))
	assert.Equal(t, []string{"pear://x"}, s.Find("(pear://x"))
}

func TestScan_CustomScheme(t *testing.T) {
	s := NewScanner("keet")
	assert.Equal(t, "keet", s.Scheme())
	assert.Equal(t, []string{"keet://room/1"}, s.Find("open keet://room/1 or pear://x"))
}
