package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Workspace struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title          string         `gorm:"type:text;not null"`
	IconId         string         `gorm:"type:text;not null"`
	Data           datatypes.JSON `gorm:"type:jsonb"`
	InTrash        *string        `gorm:"type:text"`
	Logo           *string        `gorm:"type:text"`
	BannerUrl      *string        `gorm:"type:text"`
	WorkspaceOwner uuid.UUID      `gorm:"type:uuid;not null;index:workspaces_owner_idx"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime"`
	LastModifiedBy *uuid.UUID     `gorm:"type:uuid"`
}

func (Workspace) TableName() string {
	return "workspaces"
}
