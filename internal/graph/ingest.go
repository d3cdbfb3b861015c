package graph

import (
	"strconv"
	"time"

	"github.com/matsen/papergraph/internal/metrics"
	"github.com/matsen/papergraph/internal/reference"
)

// AddPaper ingests one paper record and its analysis, and returns a copy of
// the paper node as inserted. analysis may be nil; absent authors, topics,
// and keywords are treated as empty. AddPaper never fails.
//
// Steps run in a fixed order under the write lock:
//  1. replace any paper node with the same id (old edges are kept)
//  2. author nodes, associations, and authorship edges
//  3. topic nodes and containment edges
//  4. the first five keywords and their containment edges
//  5. collaboration edges over the full author list
//  6. similarity edges from the new paper to every other paper
//  7. metadata counts and timestamp
func (g *Graph) AddPaper(paper reference.PaperRecord, analysis *reference.AnalysisRecord) Node {
	start := time.Now()

	g.mu.Lock()
	defer g.mu.Unlock()

	paperNode := newPaperNode(paper, analysis)
	replaced := g.removeNode(paperNode.ID)
	g.appendNode(paperNode)

	var authorIDs []string
	for _, name := range paper.Authors {
		if isBlank(name) {
			continue
		}
		author := g.upsertEntity(KindAuthor, name)
		recordAssociation(author, paperNode.ID)
		g.linkAuthorship(author.ID, paperNode.ID)
		authorIDs = append(authorIDs, author.ID)
	}

	var topics, keywords []string
	if analysis != nil {
		topics = analysis.Topics
		keywords = analysis.Keywords
	}

	for _, name := range topics {
		if isBlank(name) {
			continue
		}
		topic := g.upsertEntity(KindTopic, name)
		recordAssociation(topic, paperNode.ID)
		g.linkContainment(paperNode.ID, topic.ID, topicWeight)
	}

	if len(keywords) > maxKeywordEdges {
		keywords = keywords[:maxKeywordEdges]
	}
	for _, name := range keywords {
		if isBlank(name) {
			continue
		}
		keyword := g.upsertEntity(KindKeyword, name)
		recordAssociation(keyword, paperNode.ID)
		g.linkContainment(paperNode.ID, keyword.ID, keywordWeight)
	}

	g.linkCollaborations(authorIDs)
	similar := g.linkSimilar(paperNode)

	g.refreshMetadata()
	g.publishGauges()

	metrics.PapersIngested.WithLabelValues(strconv.FormatBool(replaced)).Inc()
	metrics.IngestDuration.Observe(time.Since(start).Seconds())

	g.log.Debug("paper ingested",
		"paper_id", paperNode.ID,
		"replaced", replaced,
		"authors", len(authorIDs),
		"topics", len(topics),
		"keywords", len(keywords),
		"similar", similar,
		"nodes", len(g.nodes),
		"edges", len(g.edges),
	)

	return paperNode.clone()
}
