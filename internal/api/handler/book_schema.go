package handler

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

type createBookRequest struct {
	Title           string `json:"title"            validate:"required,max=255"`
	Author          string `json:"author"           validate:"required,max=255"`
	PublicationYear int    `json:"publication_year" validate:"required,gt=0"`
	Genre           string `json:"genre"            validate:"omitempty,max=100"`
}

// bulkCreateBookItem deliberately carries no validate tags: item-level schema
// failures belong in the per-item error list, not in a batch-wide 400.
type bulkCreateBookItem struct {
	Title           string `json:"title"`
	Author          string `json:"author"`
	PublicationYear int    `json:"publication_year"`
	Genre           string `json:"genre"`
}

// updateBookRequest is a partial update: absent fields stay unchanged.
type updateBookRequest struct {
	Title           *string `json:"title"            validate:"omitempty,max=255"`
	Author          *string `json:"author"           validate:"omitempty,max=255"`
	PublicationYear *int    `json:"publication_year" validate:"omitempty,gt=0"`
	Genre           *string `json:"genre"            validate:"omitempty,max=100"`
}
