package dto

import (
	"time"

	"github.com/google/uuid"
)

type AddCollaboratorRequest struct {
	WorkspaceId uuid.UUID `json:"workspace_id" validate:"required"`
	UserId      uuid.UUID `json:"user_id" validate:"required"`
	// Email is optional; when present the new collaborator gets an invite.
	Email string `json:"email" validate:"omitempty,email"`
}

type AddCollaboratorResponse struct {
	Id uuid.UUID `json:"id"`
}

type CollaboratorResponse struct {
	Id          uuid.UUID `json:"id"`
	WorkspaceId uuid.UUID `json:"workspace_id"`
	UserId      uuid.UUID `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type RemoveCollaboratorRequest struct {
	WorkspaceId uuid.UUID `json:"workspace_id" validate:"required"`
	UserId      uuid.UUID `json:"user_id" validate:"required"`
}
