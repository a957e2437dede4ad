package entity

import (
	"time"

	"github.com/google/uuid"
)

type Folder struct {
	Id uuid.UUID
	// WorkspaceId is immutable after creation.
	WorkspaceId    uuid.UUID
	Title          string
	IconId         string
	Data           string
	InTrash        *string
	BannerUrl      *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	LastModifiedBy *uuid.UUID
}

func (f Folder) EntityID() uuid.UUID { return f.Id }
func (f Folder) EntityKind() Kind    { return KindFolder }

type FolderPatch struct {
	Title          *string
	IconId         *string
	Data           *string
	InTrash        *string
	ClearInTrash   bool
	BannerUrl      *string
	UpdatedAt      *time.Time
	LastModifiedBy *uuid.UUID
}
