package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Folder struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	WorkspaceId    uuid.UUID      `gorm:"type:uuid;not null;index:folders_workspace_id_idx"`
	Workspace      *Workspace     `gorm:"foreignKey:WorkspaceId;constraint:OnDelete:CASCADE"`
	Title          string         `gorm:"type:text;not null"`
	IconId         string         `gorm:"type:text;not null"`
	Data           datatypes.JSON `gorm:"type:jsonb"`
	InTrash        *string        `gorm:"type:text"`
	BannerUrl      *string        `gorm:"type:text"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime"`
	LastModifiedBy *uuid.UUID     `gorm:"type:uuid"`
}

func (Folder) TableName() string {
	return "folders"
}
