package pipeline

import (
	"github.com/couchcryptid/quake-feed-search/internal/domain"
)

// EntryExtractor implements Extractor using domain.ExtractWith with a fixed
// set of options.
type EntryExtractor struct {
	opts domain.ExtractOptions
}

// NewExtractor creates an EntryExtractor for the given field variants.
func NewExtractor(opts domain.ExtractOptions) *EntryExtractor {
	return &EntryExtractor{opts: opts}
}

func (e *EntryExtractor) Extract(raw domain.RawEntry) (domain.EventRecord, error) {
	return domain.ExtractWith(raw, e.opts)
}
