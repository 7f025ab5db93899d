package domain

// SearchFilters narrow a news search. All fields are optional; an empty
// filter set means "top documents in default relevance order".
type SearchFilters struct {
	Ticker string
	Topic  string
	Text   string
}
