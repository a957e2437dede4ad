package implementation

import (
	"context"
	"errors"

	"collab-workspace-be/internal/entity"
	"collab-workspace-be/internal/mapper"
	"collab-workspace-be/internal/model"
	"collab-workspace-be/internal/repository/contract"
	"collab-workspace-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FolderRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.FolderMapper
}

func NewFolderRepository(db *gorm.DB) contract.FolderRepository {
	return &FolderRepositoryImpl{
		db:     db,
		mapper: mapper.NewFolderMapper(),
	}
}

func (r *FolderRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *FolderRepositoryImpl) Create(ctx context.Context, folder *entity.Folder) error {
	m := r.mapper.ToModel(folder)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*folder = *r.mapper.ToEntity(m)
	return nil
}

func (r *FolderRepositoryImpl) UpdateFields(ctx context.Context, id uuid.UUID, patch entity.FolderPatch) error {
	cols := folderPatchColumns(patch)
	if len(cols) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Folder{}).Where("id = ?", id).Updates(cols).Error
}

func (r *FolderRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Folder{}, id).Error
}

func (r *FolderRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Folder, error) {
	var m model.Folder
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *FolderRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Folder, error) {
	var models []*model.Folder
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *FolderRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Folder{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func folderPatchColumns(p entity.FolderPatch) map[string]interface{} {
	cols := map[string]interface{}{}
	if p.Title != nil {
		cols["title"] = *p.Title
	}
	if p.IconId != nil {
		cols["icon_id"] = *p.IconId
	}
	if p.Data != nil {
		cols["data"] = *p.Data
	}
	if p.InTrash != nil {
		cols["in_trash"] = *p.InTrash
	}
	if p.ClearInTrash {
		cols["in_trash"] = nil
	}
	if p.BannerUrl != nil {
		cols["banner_url"] = *p.BannerUrl
	}
	if p.UpdatedAt != nil {
		cols["updated_at"] = *p.UpdatedAt
	}
	if p.LastModifiedBy != nil {
		cols["last_modified_by"] = *p.LastModifiedBy
	}
	return cols
}
