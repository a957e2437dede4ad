package mapper

import (
	"collab-workspace-be/internal/entity"
	"collab-workspace-be/internal/model"

	"gorm.io/datatypes"
)

type WorkspaceMapper struct{}

func NewWorkspaceMapper() *WorkspaceMapper {
	return &WorkspaceMapper{}
}

func (m *WorkspaceMapper) ToEntity(w *model.Workspace) *entity.Workspace {
	if w == nil {
		return nil
	}

	return &entity.Workspace{
		Id:             w.Id,
		Title:          w.Title,
		IconId:         w.IconId,
		Data:           string(w.Data),
		InTrash:        w.InTrash,
		Logo:           w.Logo,
		BannerUrl:      w.BannerUrl,
		WorkspaceOwner: w.WorkspaceOwner,
		CreatedAt:      w.CreatedAt,
		UpdatedAt:      w.UpdatedAt,
		LastModifiedBy: w.LastModifiedBy,
	}
}

func (m *WorkspaceMapper) ToModel(w *entity.Workspace) *model.Workspace {
	if w == nil {
		return nil
	}

	var data datatypes.JSON
	if w.Data != "" {
		data = datatypes.JSON(w.Data)
	}

	return &model.Workspace{
		Id:             w.Id,
		Title:          w.Title,
		IconId:         w.IconId,
		Data:           data,
		InTrash:        w.InTrash,
		Logo:           w.Logo,
		BannerUrl:      w.BannerUrl,
		WorkspaceOwner: w.WorkspaceOwner,
		CreatedAt:      w.CreatedAt,
		UpdatedAt:      w.UpdatedAt,
		LastModifiedBy: w.LastModifiedBy,
	}
}

func (m *WorkspaceMapper) ToEntities(workspaces []*model.Workspace) []*entity.Workspace {
	entities := make([]*entity.Workspace, len(workspaces))
	for i, w := range workspaces {
		entities[i] = m.ToEntity(w)
	}
	return entities
}
