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

type CollaboratorRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CollaboratorMapper
}

func NewCollaboratorRepository(db *gorm.DB) contract.CollaboratorRepository {
	return &CollaboratorRepositoryImpl{
		db:     db,
		mapper: mapper.NewCollaboratorMapper(),
	}
}

func (r *CollaboratorRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *CollaboratorRepositoryImpl) Create(ctx context.Context, collaborator *entity.Collaborator) error {
	m := r.mapper.ToModel(collaborator)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*collaborator = *r.mapper.ToEntity(m)
	return nil
}

func (r *CollaboratorRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Collaborator{}, id).Error
}

func (r *CollaboratorRepositoryImpl) DeleteByWorkspaceAndUser(ctx context.Context, workspaceID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		Delete(&model.Collaborator{}).Error
}

func (r *CollaboratorRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Collaborator, error) {
	var m model.Collaborator
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *CollaboratorRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Collaborator, error) {
	var models []*model.Collaborator
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *CollaboratorRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Collaborator{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
