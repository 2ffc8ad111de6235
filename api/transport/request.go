package transport

// RegisterRequest carries new-identity credentials.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest carries login credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TaskCreateRequest carries raw task fields; defaults and bounds are applied
// by the domain layer.
type TaskCreateRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Priority    string  `json:"priority"`
	Status      string  `json:"status"`
	DueDate     *string `json:"due_date"`
}

// TaskUpdateRequest carries a partial update; absent fields stay untouched.
type TaskUpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	Status      *string `json:"status"`
	DueDate     *string `json:"due_date"`
}

// PriorityRequest asks the model for a priority suggestion.
type PriorityRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
}

// SuggestionRequest asks the model for free-text task advice.
type SuggestionRequest struct {
	Prompt string `json:"prompt"`
}
