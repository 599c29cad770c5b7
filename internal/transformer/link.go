package transformer

import (
	"fmt"

	"github.com/kailas-cloud/facetlinks/internal/domain/search/result"
	"github.com/kailas-cloud/facetlinks/internal/domain/urlparams"
)

// URLGenerator renders a named route.
type URLGenerator interface {
	Placeholders(route string) ([]string, error)
	Generate(route string, args *urlparams.Params, absolute bool) (string, error)
}

// ItemLink is a hit with the URL of its detail page.
type ItemLink struct {
	UUID     ItemUUID           `json:"uuid"`
	URL      string             `json:"url"`
	Score    float64            `json:"score"`
	Tags     map[string]string  `json:"tags,omitempty"`
	Numerics map[string]float64 `json:"numerics,omitempty"`
}

// LinkReader turns hits of one item type into ItemLinks. Route placeholders
// are filled from "id" and the hit's tags; nothing else reaches the URL.
type LinkReader struct {
	routes URLGenerator
	typ    string
	route  string
}

// NewLinkReader creates a reader for hits tagged type=typ. An empty typ
// accepts every hit.
func NewLinkReader(routes URLGenerator, typ, route string) *LinkReader {
	return &LinkReader{routes: routes, typ: typ, route: route}
}

// IsValidItem implements ReadTransformer.
func (r *LinkReader) IsValidItem(item result.Hit) bool {
	return r.typ == "" || item.Tags()[DocumentType] == r.typ
}

// FromItem implements ReadTransformer.
func (r *LinkReader) FromItem(item result.Hit) (any, error) {
	names, err := r.routes.Placeholders(r.route)
	if err != nil {
		return nil, fmt.Errorf("item %s link: %w", item.ID(), err)
	}

	tags := item.Tags()
	args := urlparams.New()
	for _, name := range names {
		if name == DocumentID {
			args.Set(name, urlparams.Scalar(item.ID()))
		} else if v, ok := tags[name]; ok {
			args.Set(name, urlparams.Scalar(v))
		}
	}

	url, err := r.routes.Generate(r.route, args, true)
	if err != nil {
		return nil, fmt.Errorf("item %s link: %w", item.ID(), err)
	}
	return ItemLink{
		UUID:     ItemUUID{ID: item.ID(), Type: tags[DocumentType]},
		URL:      url,
		Score:    item.Score(),
		Tags:     tags,
		Numerics: item.Numerics(),
	}, nil
}
