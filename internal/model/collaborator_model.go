package model

import (
	"time"

	"github.com/google/uuid"
)

type Collaborator struct {
	Id          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	WorkspaceId uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:collaborators_workspace_user_key"`
	Workspace   *Workspace `gorm:"foreignKey:WorkspaceId;constraint:OnDelete:CASCADE"`
	UserId      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:collaborators_workspace_user_key;index:collaborators_user_id_idx"`
	CreatedAt   time.Time  `gorm:"autoCreateTime"`
}

func (Collaborator) TableName() string {
	return "collaborators"
}
