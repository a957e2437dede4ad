package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByWorkspaceID filters children of a workspace
type ByWorkspaceID struct {
	WorkspaceID uuid.UUID
}

func (s ByWorkspaceID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("workspace_id = ?", s.WorkspaceID)
}

// ByFolderID filters files of a folder
type ByFolderID struct {
	FolderID uuid.UUID
}

func (s ByFolderID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("folder_id = ?", s.FolderID)
}

// ByUserID filters collaborator rows by member
type ByUserID struct {
	UserID uuid.UUID
}

func (s ByUserID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

// ByOwner filters workspaces by owner
type ByOwner struct {
	Owner uuid.UUID
}

func (s ByOwner) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("workspace_owner = ?", s.Owner)
}

// NotInTrash excludes soft-trashed rows. Trash is a display state, not a
// deletion: rows stay queryable unless this is applied.
type NotInTrash struct{}

func (s NotInTrash) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("in_trash IS NULL")
}

// VisibleTo filters workspaces to those a user owns or collaborates on.
type VisibleTo struct {
	UserID uuid.UUID
}

func (s VisibleTo) Apply(db *gorm.DB) *gorm.DB {
	return db.Where(
		"workspace_owner = ? OR id IN (SELECT workspace_id FROM collaborators WHERE user_id = ?)",
		s.UserID, s.UserID,
	)
}
