package contract

import (
	"context"

	"collab-workspace-be/internal/entity"
	"collab-workspace-be/internal/repository/specification"

	"github.com/google/uuid"
)

type FileRepository interface {
	Create(ctx context.Context, file *entity.File) error
	UpdateFields(ctx context.Context, id uuid.UUID, patch entity.FilePatch) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.File, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.File, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
