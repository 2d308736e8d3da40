package api

// CheckResponse is the response for a capability check.
type CheckResponse struct {
	Allowed bool `json:"allowed" description:"Whether the user holds the capability"`
}

// ListResponse wraps a list of items with pagination metadata.
type ListResponse[T any] struct {
	Items  []T   `json:"items" description:"List of items"`
	Total  int64 `json:"total" description:"Total count"`
	Limit  int   `json:"limit" description:"Page size"`
	Offset int   `json:"offset" description:"Page offset"`
}
