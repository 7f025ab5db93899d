package domain

// SearchQuery is the request-scoped boolean query sent to the news index.
// Clauses are explicit types rather than nested maps so query construction
// stays exhaustive at compile time; Body renders the engine's JSON form.
type SearchQuery struct {
	Must   []MustClause
	Filter []NestedFilter
}

// MustClause is a scoring clause of the boolean query.
type MustClause interface {
	clause() map[string]any
}

// TextMatch is a full-text match across the given fields.
type TextMatch struct {
	Query  string
	Fields []string
}

func (m TextMatch) clause() map[string]any {
	return map[string]any{
		"multi_match": map[string]any{
			"query":  m.Query,
			"fields": m.Fields,
		},
	}
}

// VectorRerank scores candidates by cosine similarity between the query
// vector and the stored embedding. The +1.0 offset keeps the script score
// non-negative; it combines additively with the lexical score so full-text
// relevance remains the primary signal.
type VectorRerank struct {
	Field  string
	Vector []float32
}

func (v VectorRerank) clause() map[string]any {
	return map[string]any{
		"script_score": map[string]any{
			"query": map[string]any{"match_all": map[string]any{}},
			"script": map[string]any{
				"source": "cosineSimilarity(params.queryVector, '" + v.Field + "') + 1.0",
				"params": map[string]any{"queryVector": v.Vector},
			},
		},
	}
}

// NestedFilter matches a field inside an array-valued nested object,
// e.g. ticker_sentiment.ticker within one of several sentiment entries.
type NestedFilter struct {
	Path  string
	Field string
	Value string
}

func (f NestedFilter) clause() map[string]any {
	return map[string]any{
		"nested": map[string]any{
			"path": f.Path,
			"query": map[string]any{
				"match": map[string]any{f.Field: f.Value},
			},
		},
	}
}

// Body renders the query as an Elasticsearch bool query.
func (q SearchQuery) Body() map[string]any {
	must := make([]map[string]any, 0, len(q.Must))
	for _, c := range q.Must {
		must = append(must, c.clause())
	}
	filter := make([]map[string]any, 0, len(q.Filter))
	for _, f := range q.Filter {
		filter = append(filter, f.clause())
	}
	return map[string]any{
		"bool": map[string]any{
			"must":   must,
			"filter": filter,
		},
	}
}
