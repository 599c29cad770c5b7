package result

// Hit is a single search hit.
type Hit struct {
	id       string
	score    float64
	tags     map[string]string
	numerics map[string]float64
}

// NewHit creates a search hit.
func NewHit(id string, score float64, tags map[string]string, numerics map[string]float64) Hit {
	return Hit{id: id, score: score, tags: tags, numerics: numerics}
}

// ID returns the item identifier.
func (h *Hit) ID() string { return h.id }

// Score returns the relevance score.
func (h *Hit) Score() float64 { return h.score }

// Tags returns the item tag fields.
func (h *Hit) Tags() map[string]string { return h.tags }

// Numerics returns the item numeric fields.
func (h *Hit) Numerics() map[string]float64 { return h.numerics }
