package handler

import (
	"time"

	"github.com/podfetch/authgate/internal/core/domain"
)

func toUserResponse(v domain.IdentityView) userResponse {
	resp := userResponse{
		ID:              v.ID,
		Username:        v.Username,
		Role:            v.Role.String(),
		ExplicitConsent: v.ExplicitConsent,
	}
	if !v.CreatedAt.IsZero() {
		resp.CreatedAt = v.CreatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

func toUserResponses(views []domain.IdentityView) []userResponse {
	out := make([]userResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toUserResponse(v))
	}
	return out
}
