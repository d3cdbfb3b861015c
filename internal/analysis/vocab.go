package analysis

// stopWords are dropped before keyword counting. Generic academic filler is
// included alongside ordinary English function words.
var stopWords = map[string]bool{
	"the": true, "and": true, "or": true, "but": true, "in": true, "on": true,
	"at": true, "to": true, "for": true, "of": true, "with": true, "by": true,
	"from": true, "up": true, "about": true, "into": true, "through": true,
	"during": true, "before": true, "after": true, "above": true, "below": true,
	"between": true, "among": true, "this": true, "that": true, "these": true,
	"those": true, "what": true, "which": true, "who": true, "when": true,
	"where": true, "why": true, "how": true, "can": true, "could": true,
	"should": true, "would": true, "will": true, "shall": true, "may": true,
	"might": true, "must": true, "have": true, "has": true, "had": true,
	"been": true, "being": true, "are": true, "was": true, "were": true,
	"study": true, "research": true, "paper": true, "analysis": true,
	"method": true, "approach": true, "results": true,
}

// topicVocabulary is the fixed list of research areas recognized in text,
// in priority order.
var topicVocabulary = []string{
	"machine learning", "deep learning", "artificial intelligence", "neural network",
	"natural language processing", "computer vision", "data mining", "big data",
	"blockchain", "cryptocurrency", "quantum computing", "climate change",
	"renewable energy", "biotechnology", "genetics", "crispr", "immunology",
	"psychology", "neuroscience", "cognitive science", "social network",
	"algorithm", "optimization", "statistics", "probability", "regression",
	"classification", "clustering", "reinforcement learning", "transformer",
	"attention mechanism", "computer graphics", "human-computer interaction",
}

var methodTerms = []string{
	"methodology", "method", "approach", "technique", "procedure",
	"experimental design", "data collection", "statistical analysis",
	"survey", "interview", "observation", "case study", "experiment",
	"simulation", "modeling", "evaluation", "validation", "testing",
}

var findingTerms = []string{
	"findings", "results", "conclusion", "discovered", "found that",
	"demonstrated", "showed", "revealed", "indicates", "suggests",
	"evidence", "significant", "correlation", "improvement", "performance",
}
