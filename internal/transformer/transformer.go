// Package transformer converts between search hits and application objects
// through ordered chains of read and write transformers.
package transformer

import (
	"fmt"
	"sync"

	"github.com/kailas-cloud/facetlinks/internal/domain"
	"github.com/kailas-cloud/facetlinks/internal/domain/search/result"
)

// ItemUUID identifies an item by id and type.
type ItemUUID struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// Composed returns the "id~type" form of the identifier.
func (u ItemUUID) Composed() string { return u.ID + "~" + u.Type }

// ReadTransformer turns hits it accepts into application objects.
type ReadTransformer interface {
	IsValidItem(item result.Hit) bool
	FromItem(item result.Hit) (any, error)
}

// WriteTransformer turns application objects it accepts into hits.
type WriteTransformer interface {
	IsValidObject(object any) bool
	ToItem(object any) (result.Hit, error)
	ToItemUUID(object any) (ItemUUID, error)
}

// ItemTransformed is passed to hooks after a successful write transformation.
type ItemTransformed struct {
	Item   result.Hit
	Object any
}

// NoTransformerError is returned when no write transformer accepts an object.
type NoTransformerError struct {
	Op     string
	Object any
}

func (e *NoTransformerError) Error() string {
	return fmt.Sprintf("%s: %s: %T", e.Op, domain.ErrNoTransformer.Error(), e.Object)
}

func (e *NoTransformerError) Unwrap() error { return domain.ErrNoTransformer }

// Chain tries transformers in registration order; the first one accepting
// a value wins. Safe for concurrent use.
type Chain struct {
	mu     sync.RWMutex
	reads  []ReadTransformer
	writes []WriteTransformer
	hooks  []func(ItemTransformed)
}

// NewChain creates an empty chain.
func NewChain() *Chain {
	return &Chain{}
}

// AddReadTransformer appends a read transformer.
func (c *Chain) AddReadTransformer(t ReadTransformer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reads = append(c.reads, t)
}

// AddWriteTransformer appends a write transformer.
func (c *Chain) AddWriteTransformer(t WriteTransformer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes = append(c.writes, t)
}

// OnItemTransformed registers a hook run after every ToItem.
func (c *Chain) OnItemTransformed(fn func(ItemTransformed)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = append(c.hooks, fn)
}

// FromItem transforms a hit. A hit no transformer accepts is returned as is.
func (c *Chain) FromItem(item result.Hit) (any, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, t := range c.reads {
		if t.IsValidItem(item) {
			return t.FromItem(item)
		}
	}
	return item, nil
}

// FromItems transforms hits in order.
func (c *Chain) FromItems(items []result.Hit) ([]any, error) {
	objects := make([]any, 0, len(items))
	for _, item := range items {
		o, err := c.FromItem(item)
		if err != nil {
			return nil, fmt.Errorf("transform item %s: %w", item.ID(), err)
		}
		objects = append(objects, o)
	}
	return objects, nil
}

// ToItem transforms an object into a hit.
func (c *Chain) ToItem(object any) (result.Hit, error) {
	c.mu.RLock()
	writes, hooks := c.writes, c.hooks
	c.mu.RUnlock()

	for _, t := range writes {
		if !t.IsValidObject(object) {
			continue
		}
		item, err := t.ToItem(object)
		if err != nil {
			return result.Hit{}, err
		}
		evt := ItemTransformed{Item: item, Object: object}
		for _, fn := range hooks {
			fn(evt)
		}
		return item, nil
	}
	return result.Hit{}, &NoTransformerError{Op: "to item", Object: object}
}

// ToItems transforms objects in order.
func (c *Chain) ToItems(objects []any) ([]result.Hit, error) {
	items := make([]result.Hit, 0, len(objects))
	for i, o := range objects {
		item, err := c.ToItem(o)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// ToItemUUID returns the identifier of an object.
func (c *Chain) ToItemUUID(object any) (ItemUUID, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, t := range c.writes {
		if t.IsValidObject(object) {
			return t.ToItemUUID(object)
		}
	}
	return ItemUUID{}, &NoTransformerError{Op: "to item uuid", Object: object}
}

// ToItemUUIDs returns the identifiers of objects in order.
func (c *Chain) ToItemUUIDs(objects []any) ([]ItemUUID, error) {
	uuids := make([]ItemUUID, 0, len(objects))
	for i, o := range objects {
		u, err := c.ToItemUUID(o)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		uuids = append(uuids, u)
	}
	return uuids, nil
}
