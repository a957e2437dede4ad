package entity

import (
	"time"

	"github.com/google/uuid"
)

type File struct {
	Id uuid.UUID
	// WorkspaceId and FolderId are immutable after creation. A file's
	// folder must belong to the same workspace.
	WorkspaceId    uuid.UUID
	FolderId       uuid.UUID
	Title          string
	IconId         string
	Data           string
	InTrash        *string
	BannerUrl      *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	LastModifiedBy *uuid.UUID
}

func (f File) EntityID() uuid.UUID { return f.Id }
func (f File) EntityKind() Kind    { return KindFile }

type FilePatch struct {
	Title          *string
	IconId         *string
	Data           *string
	InTrash        *string
	ClearInTrash   bool
	BannerUrl      *string
	UpdatedAt      *time.Time
	LastModifiedBy *uuid.UUID
}
