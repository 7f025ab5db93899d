package elastic

import (
	_ "embed"
	"strconv"
	"strings"
)

//go:embed news-mappings.json
var newsMappings string

// NewsMapping returns the news index mapping with the embedding dimension
// filled in. Pass dims <= 0 when embeddings are disabled; the dense_vector
// field then keeps the default dimension so previously written vectors stay
// valid.
func NewsMapping(dims int) []byte {
	if dims <= 0 {
		dims = 1536
	}
	return []byte(strings.ReplaceAll(newsMappings, "__EMBEDDING_DIMS__", strconv.Itoa(dims)))
}
