package handler

// --- Request types ---

type registerRequest struct {
	Email    string `json:"email"    validate:"required,email,max=254"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name"     validate:"max=100"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type createPostRequest struct {
	Title   string `json:"title"   validate:"required,max=200"`
	Content string `json:"content"`
}

type createCommentRequest struct {
	PostID  string `json:"postId"  validate:"required"`
	Content string `json:"content" validate:"required"`
}

// errorResponse documents the error envelope for the swag annotations.
type errorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}
