package entity

import (
	"time"

	"github.com/google/uuid"
)

type Workspace struct {
	Id             uuid.UUID
	Title          string
	IconId         string
	Data           string
	InTrash        *string
	Logo           *string
	BannerUrl      *string
	WorkspaceOwner uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
	// LastModifiedBy carries the mutation tag of the session that produced
	// the current field values. Echo suppression only, never authorization.
	LastModifiedBy *uuid.UUID
}

func (w Workspace) EntityID() uuid.UUID { return w.Id }
func (w Workspace) EntityKind() Kind    { return KindWorkspace }

// WorkspacePatch is a partial-field merge. Nil pointers leave the field
// untouched; ClearInTrash restores an entry out of the trash.
type WorkspacePatch struct {
	Title          *string
	IconId         *string
	Data           *string
	InTrash        *string
	ClearInTrash   bool
	Logo           *string
	BannerUrl      *string
	WorkspaceOwner *uuid.UUID
	UpdatedAt      *time.Time
	LastModifiedBy *uuid.UUID
}
