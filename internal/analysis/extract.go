package analysis

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/matsen/papergraph/internal/reference"
)

// Extraction limits.
const (
	maxKeywords  = 10
	maxTopics    = 5
	maxCitations = 10
	maxSentences = 3

	// Only the head of the document feeds the summary.
	summaryWindow   = 1024
	maxSummaryChars = 400
)

var (
	nonWordRe     = regexp.MustCompile(`[^\w\s]`)
	sentenceSplit = regexp.MustCompile(`[.!?]+`)
	emailRe       = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	urlRe         = regexp.MustCompile(`https?://[^\s]+`)
	properNounRe  = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\b`)

	// (Smith, 2020), [Smith et al. 2020], [12], (3)
	citationForms = []*regexp.Regexp{
		regexp.MustCompile(`\([A-Za-z]+(?:\s+et\s+al\.?)?,?\s+\d{4}\)`),
		regexp.MustCompile(`\[[A-Za-z]+(?:\s+et\s+al\.?)?,?\s+\d{4}\]`),
		regexp.MustCompile(`\[\d+\]`),
		regexp.MustCompile(`\(\d+\)`),
	}
)

// Keywords returns the most frequent words longer than three characters,
// excluding stop words, highest count first. Ties keep first-seen order.
func Keywords(text string) []string {
	words := strings.Fields(nonWordRe.ReplaceAllString(strings.ToLower(text), " "))

	counts := make(map[string]int)
	var order []string
	for _, w := range words {
		if len(w) <= 3 || stopWords[w] {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > maxKeywords {
		order = order[:maxKeywords]
	}
	return order
}

// Topics returns up to five vocabulary topics mentioned in text, in
// vocabulary order.
func Topics(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, topic := range topicVocabulary {
		if strings.Contains(lower, topic) {
			found = append(found, topic)
			if len(found) == maxTopics {
				break
			}
		}
	}
	return found
}

// Citations returns distinct in-text citation markers, author-year forms
// first, then numeric forms.
func Citations(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, re := range citationForms {
		for _, m := range re.FindAllString(text, -1) {
			if seen[m] {
				continue
			}
			seen[m] = true
			out = append(out, m)
		}
	}
	if len(out) > maxCitations {
		out = out[:maxCitations]
	}
	return out
}

// Methodology returns up to three sentences that describe methods.
func Methodology(text string) []string {
	return sentencesMentioning(text, methodTerms)
}

// Findings returns up to three sentences that report results.
func Findings(text string) []string {
	return sentencesMentioning(text, findingTerms)
}

func sentencesMentioning(text string, terms []string) []string {
	var out []string
	for _, s := range sentenceSplit.Split(text, -1) {
		lower := strings.ToLower(s)
		for _, term := range terms {
			if strings.Contains(lower, term) {
				out = append(out, strings.TrimSpace(s))
				break
			}
		}
		if len(out) == maxSentences {
			break
		}
	}
	return out
}

// Entities finds e-mail addresses, URLs, and capitalized phrases. Offsets
// are byte positions in text.
func Entities(text string) []reference.Entity {
	var out []reference.Entity
	collect := func(re *regexp.Regexp, typ string, score float64, minLen int) {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			if loc[1]-loc[0] < minLen {
				continue
			}
			out = append(out, reference.Entity{
				Text:  text[loc[0]:loc[1]],
				Type:  typ,
				Score: score,
				Start: loc[0],
				End:   loc[1],
			})
		}
	}
	collect(emailRe, "EMAIL", 0.9, 0)
	collect(urlRe, "URL", 0.9, 0)
	collect(properNounRe, "PERSON_OR_ORG", 0.7, 3)
	return out
}

// Summarize returns the leading sentences of text, up to a fixed length.
func Summarize(text string) string {
	head := strings.Join(strings.Fields(truncate(text, summaryWindow)), " ")

	summary := ""
	for _, end := range sentenceEnds(head) {
		if summary != "" && end > maxSummaryChars {
			break
		}
		summary = head[:end]
	}
	if summary == "" {
		summary = truncate(head, maxSummaryChars)
	}
	return summary
}

// sentenceEnds returns the byte offsets just past each sentence terminator run.
func sentenceEnds(s string) []int {
	var ends []int
	for _, loc := range sentenceSplit.FindAllStringIndex(s, -1) {
		ends = append(ends, loc[1])
	}
	return ends
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
