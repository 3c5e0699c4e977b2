package models

// Resource represents a shared community resource (webinar recording,
// article, document link) returned by the resource service
type Resource struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"` // may contain HTML, flattened before filtering
	Category    string `json:"category"`
	SharedBy    string `json:"sharedBy"`
}

// ResourceScope selects which resource listing to page through
type ResourceScope string

const (
	ScopeCurrent ResourceScope = "current"
	ScopeArchive ResourceScope = "archive"
)
