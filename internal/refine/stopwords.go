package refine

// stopWords is the fixed exclusion list for suggestion mining.
var stopWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"the", "and", "for", "are", "but", "not", "you", "all", "can",
		"had", "her", "was", "one", "our", "out", "day", "get", "has",
		"him", "his", "how", "man", "new", "now", "old", "see", "two",
		"way", "who", "with", "this", "that", "from", "they", "have",
		"more", "will", "about", "what", "when", "make", "like", "time",
		"just", "know", "into", "your", "some", "them", "than", "then",
		"its", "also", "after", "other", "which", "their", "there",
		"been", "were", "would", "could", "should", "does", "doing",
		"over", "under", "between", "here", "where", "while", "these",
		"those", "such", "only", "very", "most", "much", "many", "each",
		"www", "com", "org", "net", "http", "https",
	} {
		stopWords[w] = struct{}{}
	}
}

// isStopWord reports whether a lowercased token is on the exclusion
// list.
func isStopWord(w string) bool {
	_, ok := stopWords[w]
	return ok
}
