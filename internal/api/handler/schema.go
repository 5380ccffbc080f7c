package handler

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type createUserRequest struct {
	Username        string `json:"username"        validate:"required,max=255,username"`
	Password        string `json:"password"        validate:"omitempty,min=1"`
	Role            string `json:"role"            validate:"required,role"`
	ExplicitConsent bool   `json:"explicitConsent"`
}

type updateRoleRequest struct {
	Role string `json:"role" validate:"required,role"`
}

// --- Response types ---

type listUsersResponse struct {
	Users []userResponse `json:"users"`
}

type userResponse struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	Role            string `json:"role"`
	ExplicitConsent bool   `json:"explicitConsent"`
	CreatedAt       string `json:"createdAt,omitempty"`
}
