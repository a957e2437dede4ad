package dto

import (
	"time"

	"github.com/google/uuid"
)

// Write requests carry an optional mutation tag. The tag is written to
// last_modified_by and echoed back on the change feed, which is how a caller
// recognizes (and suppresses) its own mutations.

type CreateWorkspaceRequest struct {
	// Id is optional; offline-first clients mint ids locally so the change
	// feed echo matches their optimistic insert.
	Id             *uuid.UUID `json:"id"`
	Title          string     `json:"title" validate:"required"`
	IconId         string     `json:"icon_id"`
	Data           string     `json:"data"`
	Logo           *string    `json:"logo"`
	BannerUrl      *string    `json:"banner_url"`
	LastModifiedBy *uuid.UUID `json:"last_modified_by"`
}

type CreateWorkspaceResponse struct {
	Id uuid.UUID `json:"id"`
}

type WorkspaceResponse struct {
	Id             uuid.UUID  `json:"id"`
	Title          string     `json:"title"`
	IconId         string     `json:"icon_id"`
	Data           string     `json:"data,omitempty"`
	InTrash        *string    `json:"in_trash"`
	Logo           *string    `json:"logo"`
	BannerUrl      *string    `json:"banner_url"`
	WorkspaceOwner uuid.UUID  `json:"workspace_owner"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	LastModifiedBy *uuid.UUID `json:"last_modified_by"`
}

type UpdateWorkspaceRequest struct {
	Id             uuid.UUID
	Title          *string    `json:"title"`
	IconId         *string    `json:"icon_id"`
	Data           *string    `json:"data"`
	InTrash        *string    `json:"in_trash"`
	RestoreTrash   bool       `json:"restore_trash"`
	Logo           *string    `json:"logo"`
	BannerUrl      *string    `json:"banner_url"`
	LastModifiedBy *uuid.UUID `json:"last_modified_by"`
}

type UpdateWorkspaceResponse struct {
	Id uuid.UUID `json:"id"`
}

type CreateFolderRequest struct {
	Id             *uuid.UUID `json:"id"`
	WorkspaceId    uuid.UUID  `json:"workspace_id" validate:"required"`
	Title          string     `json:"title" validate:"required"`
	IconId         string     `json:"icon_id"`
	Data           string     `json:"data"`
	BannerUrl      *string    `json:"banner_url"`
	LastModifiedBy *uuid.UUID `json:"last_modified_by"`
}

type CreateFolderResponse struct {
	Id uuid.UUID `json:"id"`
}

type FolderResponse struct {
	Id             uuid.UUID  `json:"id"`
	WorkspaceId    uuid.UUID  `json:"workspace_id"`
	Title          string     `json:"title"`
	IconId         string     `json:"icon_id"`
	Data           string     `json:"data,omitempty"`
	InTrash        *string    `json:"in_trash"`
	BannerUrl      *string    `json:"banner_url"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	LastModifiedBy *uuid.UUID `json:"last_modified_by"`
}

type UpdateFolderRequest struct {
	Id             uuid.UUID
	Title          *string    `json:"title"`
	IconId         *string    `json:"icon_id"`
	Data           *string    `json:"data"`
	InTrash        *string    `json:"in_trash"`
	RestoreTrash   bool       `json:"restore_trash"`
	BannerUrl      *string    `json:"banner_url"`
	LastModifiedBy *uuid.UUID `json:"last_modified_by"`
}

type UpdateFolderResponse struct {
	Id uuid.UUID `json:"id"`
}

type CreateFileRequest struct {
	Id             *uuid.UUID `json:"id"`
	WorkspaceId    uuid.UUID  `json:"workspace_id" validate:"required"`
	FolderId       uuid.UUID  `json:"folder_id" validate:"required"`
	Title          string     `json:"title" validate:"required"`
	IconId         string     `json:"icon_id"`
	Data           string     `json:"data"`
	BannerUrl      *string    `json:"banner_url"`
	LastModifiedBy *uuid.UUID `json:"last_modified_by"`
}

type CreateFileResponse struct {
	Id uuid.UUID `json:"id"`
}

type FileResponse struct {
	Id             uuid.UUID  `json:"id"`
	WorkspaceId    uuid.UUID  `json:"workspace_id"`
	FolderId       uuid.UUID  `json:"folder_id"`
	Title          string     `json:"title"`
	IconId         string     `json:"icon_id"`
	Data           string     `json:"data,omitempty"`
	InTrash        *string    `json:"in_trash"`
	BannerUrl      *string    `json:"banner_url"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	LastModifiedBy *uuid.UUID `json:"last_modified_by"`
}

type UpdateFileRequest struct {
	Id             uuid.UUID
	Title          *string    `json:"title"`
	IconId         *string    `json:"icon_id"`
	Data           *string    `json:"data"`
	InTrash        *string    `json:"in_trash"`
	RestoreTrash   bool       `json:"restore_trash"`
	BannerUrl      *string    `json:"banner_url"`
	LastModifiedBy *uuid.UUID `json:"last_modified_by"`
}

type UpdateFileResponse struct {
	Id uuid.UUID `json:"id"`
}
