package contract

import (
	"context"

	"collab-workspace-be/internal/entity"
	"collab-workspace-be/internal/repository/specification"

	"github.com/google/uuid"
)

type FolderRepository interface {
	Create(ctx context.Context, folder *entity.Folder) error
	UpdateFields(ctx context.Context, id uuid.UUID, patch entity.FolderPatch) error
	Delete(ctx context.Context, id uuid.UUID) error // Hard delete, cascades to files
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Folder, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Folder, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
