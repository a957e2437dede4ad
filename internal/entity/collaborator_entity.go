package entity

import (
	"time"

	"github.com/google/uuid"
)

// Collaborator is a workspace membership record. Changes to membership are
// structural (they decide which workspaces a user can see at all), so the
// reconciler refetches instead of merging them field by field.
type Collaborator struct {
	Id          uuid.UUID
	WorkspaceId uuid.UUID
	UserId      uuid.UUID
	CreatedAt   time.Time
}
