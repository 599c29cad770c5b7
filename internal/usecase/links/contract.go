package links

import (
	"github.com/kailas-cloud/facetlinks/internal/domain/search/result"
	"github.com/kailas-cloud/facetlinks/internal/linkbuilder"
)

// LinkFactory binds link generation to one result.
type LinkFactory interface {
	For(res *result.Result) *linkbuilder.Links
}

// ItemReader turns hits into the objects returned to clients.
type ItemReader interface {
	FromItems(items []result.Hit) ([]any, error)
}
