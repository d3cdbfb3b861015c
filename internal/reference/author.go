package reference

import "strings"

// Author is a structured author name as found in bibliography exports.
// The graph works on display names; use DisplayName to convert.
type Author struct {
	First string `json:"first"`           // First/given name(s)
	Last  string `json:"last"`            // Last/family name
	ORCID string `json:"orcid,omitempty"` // ORCID identifier (without URL prefix)
}

// DisplayName returns "First Last", or just the last name when no first name is known.
func (a Author) DisplayName() string {
	first := strings.TrimSpace(a.First)
	last := strings.TrimSpace(a.Last)
	if first == "" {
		return last
	}
	if last == "" {
		return first
	}
	return first + " " + last
}

// FormatAuthors joins up to max display names, appending "et al." when truncated.
// A max of zero or less lists everyone.
func FormatAuthors(authors []string, max int) string {
	if len(authors) == 0 {
		return ""
	}
	if max <= 0 || len(authors) <= max {
		return strings.Join(authors, ", ")
	}
	return strings.Join(authors[:max], ", ") + " et al."
}
