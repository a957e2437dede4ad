package mapper

import (
	"collab-workspace-be/internal/entity"
	"collab-workspace-be/internal/model"

	"gorm.io/datatypes"
)

type FolderMapper struct{}

func NewFolderMapper() *FolderMapper {
	return &FolderMapper{}
}

func (m *FolderMapper) ToEntity(f *model.Folder) *entity.Folder {
	if f == nil {
		return nil
	}

	return &entity.Folder{
		Id:             f.Id,
		WorkspaceId:    f.WorkspaceId,
		Title:          f.Title,
		IconId:         f.IconId,
		Data:           string(f.Data),
		InTrash:        f.InTrash,
		BannerUrl:      f.BannerUrl,
		CreatedAt:      f.CreatedAt,
		UpdatedAt:      f.UpdatedAt,
		LastModifiedBy: f.LastModifiedBy,
	}
}

func (m *FolderMapper) ToModel(f *entity.Folder) *model.Folder {
	if f == nil {
		return nil
	}

	var data datatypes.JSON
	if f.Data != "" {
		data = datatypes.JSON(f.Data)
	}

	return &model.Folder{
		Id:             f.Id,
		WorkspaceId:    f.WorkspaceId,
		Title:          f.Title,
		IconId:         f.IconId,
		Data:           data,
		InTrash:        f.InTrash,
		BannerUrl:      f.BannerUrl,
		CreatedAt:      f.CreatedAt,
		UpdatedAt:      f.UpdatedAt,
		LastModifiedBy: f.LastModifiedBy,
	}
}

func (m *FolderMapper) ToEntities(folders []*model.Folder) []*entity.Folder {
	entities := make([]*entity.Folder, len(folders))
	for i, f := range folders {
		entities[i] = m.ToEntity(f)
	}
	return entities
}
