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

type FileRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.FileMapper
}

func NewFileRepository(db *gorm.DB) contract.FileRepository {
	return &FileRepositoryImpl{
		db:     db,
		mapper: mapper.NewFileMapper(),
	}
}

func (r *FileRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *FileRepositoryImpl) Create(ctx context.Context, file *entity.File) error {
	m := r.mapper.ToModel(file)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*file = *r.mapper.ToEntity(m)
	return nil
}

func (r *FileRepositoryImpl) UpdateFields(ctx context.Context, id uuid.UUID, patch entity.FilePatch) error {
	cols := filePatchColumns(patch)
	if len(cols) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.File{}).Where("id = ?", id).Updates(cols).Error
}

func (r *FileRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.File{}, id).Error
}

func (r *FileRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.File, error) {
	var m model.File
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *FileRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.File, error) {
	var models []*model.File
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *FileRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.File{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func filePatchColumns(p entity.FilePatch) map[string]interface{} {
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
