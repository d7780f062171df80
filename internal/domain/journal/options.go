package journal

// DefaultLimit caps history listings when no limit is given.
const DefaultLimit = 50

// ListOptions filters journal listings.
type ListOptions struct {
	Type           *EntryType
	UserActivityID *string
	Limit          int
	Offset         int
}
