package mapper

import (
	"collab-workspace-be/internal/entity"
	"collab-workspace-be/internal/model"

	"gorm.io/datatypes"
)

type FileMapper struct{}

func NewFileMapper() *FileMapper {
	return &FileMapper{}
}

func (m *FileMapper) ToEntity(f *model.File) *entity.File {
	if f == nil {
		return nil
	}

	return &entity.File{
		Id:             f.Id,
		WorkspaceId:    f.WorkspaceId,
		FolderId:       f.FolderId,
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

func (m *FileMapper) ToModel(f *entity.File) *model.File {
	if f == nil {
		return nil
	}

	var data datatypes.JSON
	if f.Data != "" {
		data = datatypes.JSON(f.Data)
	}

	return &model.File{
		Id:             f.Id,
		WorkspaceId:    f.WorkspaceId,
		FolderId:       f.FolderId,
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

func (m *FileMapper) ToEntities(files []*model.File) []*entity.File {
	entities := make([]*entity.File, len(files))
	for i, f := range files {
		entities[i] = m.ToEntity(f)
	}
	return entities
}
