package catalog

// ListOptions provides filtering options for listing activities.
type ListOptions struct {
	Category   *Category
	Difficulty *Difficulty
	ActiveOnly bool
}
