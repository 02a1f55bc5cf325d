package digest

// NoTitle is used when upstream data carries no title.
const NoTitle = "(no title)"

// Item is a single digest entry.
type Item struct {
	Title  string
	URL    string
	Source string
}

// Key returns the identity used for deduplication: the URL when present, else the title.
func (it Item) Key() string {
	if it.URL != "" {
		return it.URL
	}
	return it.Title
}

// Batch is what a fetcher hands back. Err is set when the source failed as a whole,
// in which case Items is empty.
type Batch struct {
	Items []Item
	Err   error
}

// Failed wraps err in a Batch with no items.
func Failed(err error) Batch {
	return Batch{Err: err}
}

// OK reports whether the source was fetched successfully.
func (b Batch) OK() bool {
	return b.Err == nil
}
