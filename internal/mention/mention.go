// Package mention parses member mentions written as markdown links, e.g.
// "[@Nick](mention://user/<memberId>)".
package mention

import (
	"regexp"
	"strings"
)

// Scheme is the URI scheme of member mentions.
const Scheme = "mention"

// TypeUser is the only mention type that resolves to a member.
const TypeUser = "user"

// escapePlaceholder stands in for a literal backslash that must survive
// Unescape.
const escapePlaceholder = "\uFFFD"

var pattern = regexp.MustCompile(`^\[@(.+?)?\]\(` + Scheme + `://(.+?)/(.+?)(?:/(.*?))?\)`)

// Mention is a parsed mention link.
type Mention struct {
	Label    string
	Type     string
	MemberID string
	Role     string
}

// Parse reads a mention from the raw source of a markdown link. It returns
// false when raw is not a user mention; callers then treat the link as an
// ordinary one.
func Parse(raw string) (Mention, bool) {
	m := pattern.FindStringSubmatch(raw)
	if m == nil {
		return Mention{}, false
	}
	if m[2] != TypeUser {
		return Mention{}, false
	}
	return Mention{
		Label:    m[1],
		Type:     m[2],
		MemberID: m[3],
		Role:     m[4],
	}, true
}

// Display returns the text a mention renders as: "@" plus the unescaped label.
func (m Mention) Display() string {
	return "@" + Unescape(m.Label)
}

// URI returns the mention URI for a member, optionally with a role.
func URI(memberID, role string) string {
	u := Scheme + "://" + TypeUser + "/" + memberID
	if role != "" {
		u += "/" + role
	}
	return u
}

// Format writes a mention as a markdown link, escaping formatting
// characters in the label so they are not parsed as emphasis.
func Format(label, memberID, role string) string {
	return "[@" + Escape(label) + "](" + URI(memberID, role) + ")"
}

// Unescape drops markdown escape backslashes from a label. The escape
// placeholder is turned back into a literal backslash.
func Unescape(s string) string {
	s = strings.ReplaceAll(s, `\`, "")
	return strings.ReplaceAll(s, escapePlaceholder, `\`)
}

var escaper = strings.NewReplacer(
	`\`, escapePlaceholder,
	"*", `\*`,
	"_", `\_`,
	"~", `\~`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
)

// Escape is the inverse of Unescape.
func Escape(s string) string {
	return escaper.Replace(s)
}
