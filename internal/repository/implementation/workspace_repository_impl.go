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

type WorkspaceRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.WorkspaceMapper
}

func NewWorkspaceRepository(db *gorm.DB) contract.WorkspaceRepository {
	return &WorkspaceRepositoryImpl{
		db:     db,
		mapper: mapper.NewWorkspaceMapper(),
	}
}

func (r *WorkspaceRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *WorkspaceRepositoryImpl) Create(ctx context.Context, workspace *entity.Workspace) error {
	m := r.mapper.ToModel(workspace)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*workspace = *r.mapper.ToEntity(m)
	return nil
}

// UpdateFields writes only the columns the patch carries, so concurrent
// editors touching different fields do not clobber each other.
func (r *WorkspaceRepositoryImpl) UpdateFields(ctx context.Context, id uuid.UUID, patch entity.WorkspacePatch) error {
	cols := workspacePatchColumns(patch)
	if len(cols) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Workspace{}).Where("id = ?", id).Updates(cols).Error
}

func (r *WorkspaceRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Workspace{}, id).Error
}

func (r *WorkspaceRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Workspace, error) {
	var m model.Workspace
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *WorkspaceRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Workspace, error) {
	var models []*model.Workspace
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *WorkspaceRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Workspace{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func workspacePatchColumns(p entity.WorkspacePatch) map[string]interface{} {
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
	if p.Logo != nil {
		cols["logo"] = *p.Logo
	}
	if p.BannerUrl != nil {
		cols["banner_url"] = *p.BannerUrl
	}
	if p.WorkspaceOwner != nil {
		cols["workspace_owner"] = *p.WorkspaceOwner
	}
	if p.UpdatedAt != nil {
		cols["updated_at"] = *p.UpdatedAt
	}
	if p.LastModifiedBy != nil {
		cols["last_modified_by"] = *p.LastModifiedBy
	}
	return cols
}
