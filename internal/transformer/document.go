package transformer

import (
	"fmt"

	"github.com/kailas-cloud/facetlinks/internal/domain/search/result"
)

// Reserved document keys.
const (
	DocumentID    = "id"
	DocumentType  = "type"
	DocumentScore = "_score"
)

// DocumentWriter accepts decoded JSON objects (map[string]any) carrying a
// string "id". String fields become tags and numbers become numerics;
// other values are dropped.
type DocumentWriter struct {
	// DefaultType is the item type used when the document has none.
	DefaultType string
}

// IsValidObject implements WriteTransformer.
func (w DocumentWriter) IsValidObject(object any) bool {
	doc, ok := object.(map[string]any)
	if !ok {
		return false
	}
	id, ok := doc[DocumentID].(string)
	return ok && id != ""
}

// ToItem implements WriteTransformer.
func (w DocumentWriter) ToItem(object any) (result.Hit, error) {
	doc, ok := object.(map[string]any)
	if !ok {
		return result.Hit{}, fmt.Errorf("document writer: unexpected object %T", object)
	}
	id, _ := doc[DocumentID].(string)

	var score float64
	tags := make(map[string]string)
	numerics := make(map[string]float64)
	for k, v := range doc {
		switch k {
		case DocumentID:
			continue
		case DocumentScore:
			if f, ok := v.(float64); ok {
				score = f
			}
			continue
		}
		switch tv := v.(type) {
		case string:
			tags[k] = tv
		case float64:
			numerics[k] = tv
		case bool:
			if tv {
				tags[k] = "true"
			} else {
				tags[k] = "false"
			}
		}
	}
	if _, ok := tags[DocumentType]; !ok && w.DefaultType != "" {
		tags[DocumentType] = w.DefaultType
	}
	return result.NewHit(id, score, tags, numerics), nil
}

// ToItemUUID implements WriteTransformer.
func (w DocumentWriter) ToItemUUID(object any) (ItemUUID, error) {
	doc, ok := object.(map[string]any)
	if !ok {
		return ItemUUID{}, fmt.Errorf("document writer: unexpected object %T", object)
	}
	id, _ := doc[DocumentID].(string)
	typ, _ := doc[DocumentType].(string)
	if typ == "" {
		typ = w.DefaultType
	}
	return ItemUUID{ID: id, Type: typ}, nil
}
