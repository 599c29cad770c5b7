package health

// RouteValidator checks that a site's routes dictionary resolves against
// its route table.
type RouteValidator interface {
	Validate() error
}
