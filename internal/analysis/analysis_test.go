package analysis

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

const sampleAbstract = `We study deep learning for computer vision (Smith, 2020).
Our method builds on transformer models [1]. The evaluation uses three benchmarks.
Results showed significant improvement over baselines [Jones et al. 2019].
Code is at https://example.org/code and questions go to jane@example.org.`

func TestHeuristic_Analyze(t *testing.T) {
	h := NewHeuristic(nil)

	rec, err := h.Analyze(context.Background(), sampleAbstract)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if want := []string{"deep learning", "computer vision", "transformer"}; !reflect.DeepEqual(rec.Topics, want) {
		t.Errorf("Topics = %v, want %v", rec.Topics, want)
	}
	if want := []string{"(Smith, 2020)", "[Jones et al. 2019]", "[1]"}; !reflect.DeepEqual(rec.Citations, want) {
		t.Errorf("Citations = %v, want %v", rec.Citations, want)
	}
	if len(rec.Keywords) == 0 || len(rec.Keywords) > 10 {
		t.Errorf("Keywords = %v", rec.Keywords)
	}
	if rec.Sentiment == nil || rec.Sentiment.Label != "NEUTRAL" || rec.Sentiment.Score != 0.5 {
		t.Errorf("Sentiment = %+v", rec.Sentiment)
	}
	if !strings.HasPrefix(rec.Summary, "We study deep learning") {
		t.Errorf("Summary = %q", rec.Summary)
	}
	if len(rec.Methodology) != 2 {
		t.Errorf("Methodology = %q", rec.Methodology)
	}
	if len(rec.Findings) != 1 || !strings.HasPrefix(rec.Findings[0], "Results showed") {
		t.Errorf("Findings = %q", rec.Findings)
	}
	if len(rec.Entities) == 0 {
		t.Error("Entities is empty")
	}
}

func TestHeuristic_AnalyzeEmpty(t *testing.T) {
	_, err := NewHeuristic(nil).Analyze(context.Background(), " \n\t")
	if !errors.Is(err, ErrEmptyText) {
		t.Errorf("Analyze() error = %v, want ErrEmptyText", err)
	}
}

func TestHeuristic_AnalyzeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHeuristic(nil).Analyze(ctx, sampleAbstract)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Analyze() error = %v, want context.Canceled", err)
	}
}

func TestKeywords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "ranked by frequency",
			text: "Transformers, transformers! Attention attention ATTENTION. Models.",
			want: []string{"attention", "transformers", "models"},
		},
		{
			name: "ties keep first-seen order",
			text: "graph node edge graph node edge",
			want: []string{"graph", "node", "edge"},
		},
		{
			name: "short and stop words dropped",
			text: "the cat sat with results from this study",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Keywords(tt.text)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Keywords() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKeywords_Limit(t *testing.T) {
	text := "alpha bravo charlie delta echoes foxtrot golf hotel india juliet kilo lima"
	if got := Keywords(text); len(got) != 10 {
		t.Errorf("Keywords() returned %d words, want 10", len(got))
	}
}

func TestTopics(t *testing.T) {
	got := Topics("Machine learning meets Deep Learning, statistics, algorithm design, genetics and CRISPR.")
	want := []string{"machine learning", "deep learning", "genetics", "crispr", "algorithm"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Topics() = %v, want %v", got, want)
	}
	if got := Topics("nothing relevant"); len(got) != 0 {
		t.Errorf("Topics() = %v, want none", got)
	}
}

func TestCitations(t *testing.T) {
	text := "As in (Smith, 2020) and [Jones et al. 2019], see [1], (2) and [1] again."
	want := []string{"(Smith, 2020)", "[Jones et al. 2019]", "[1]", "(2)"}
	if got := Citations(text); !reflect.DeepEqual(got, want) {
		t.Errorf("Citations() = %v, want %v", got, want)
	}

	var many strings.Builder
	for i := 0; i < 15; i++ {
		many.WriteString("[")
		many.WriteString(strings.Repeat("1", i+1))
		many.WriteString("] ")
	}
	if got := Citations(many.String()); len(got) != 10 {
		t.Errorf("Citations() returned %d markers, want 10", len(got))
	}
}

func TestMethodologyAndFindings(t *testing.T) {
	text := "We describe our method. The weather was nice. Evaluation used three datasets! Results improved?"

	if got, want := Methodology(text), []string{"We describe our method", "Evaluation used three datasets"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Methodology() = %q, want %q", got, want)
	}
	if got, want := Findings(text), []string{"Results improved"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Findings() = %q, want %q", got, want)
	}

	capped := strings.Repeat("A new technique. ", 5)
	if got := Methodology(capped); len(got) != 3 {
		t.Errorf("Methodology() returned %d sentences, want 3", len(got))
	}
}

func TestEntities(t *testing.T) {
	text := "Contact jane@example.org or visit https://example.org/x today. Geoffrey Hinton agreed."
	got := Entities(text)

	byType := map[string][]string{}
	for _, e := range got {
		if text[e.Start:e.End] != e.Text {
			t.Errorf("entity %q has offsets [%d:%d] = %q", e.Text, e.Start, e.End, text[e.Start:e.End])
		}
		byType[e.Type] = append(byType[e.Type], e.Text)
	}

	if want := []string{"jane@example.org"}; !reflect.DeepEqual(byType["EMAIL"], want) {
		t.Errorf("EMAIL = %v, want %v", byType["EMAIL"], want)
	}
	if want := []string{"https://example.org/x"}; !reflect.DeepEqual(byType["URL"], want) {
		t.Errorf("URL = %v, want %v", byType["URL"], want)
	}
	if want := []string{"Contact", "Geoffrey Hinton"}; !reflect.DeepEqual(byType["PERSON_OR_ORG"], want) {
		t.Errorf("PERSON_OR_ORG = %v, want %v", byType["PERSON_OR_ORG"], want)
	}
	if got[0].Type != "EMAIL" || got[0].Score != 0.9 {
		t.Errorf("first entity = %+v, want EMAIL with score 0.9", got[0])
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"short text kept whole", "First   sentence.\nSecond one.", "First sentence. Second one."},
		{"long second sentence dropped", strings.Repeat("a", 300) + ". " + strings.Repeat("b", 300) + ".", strings.Repeat("a", 300) + "."},
		{"no terminator", strings.Repeat("x", 500), strings.Repeat("x", 400)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Summarize(tt.text); got != tt.want {
				t.Errorf("Summarize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncate_RuneBoundary(t *testing.T) {
	s := "héllo"
	if got := truncate(s, 2); got != "h" {
		t.Errorf("truncate() = %q, want %q", got, "h")
	}
	if got := truncate(s, 10); got != s {
		t.Errorf("truncate() = %q", got)
	}
}
