package contract

import (
	"context"

	"collab-workspace-be/internal/entity"
	"collab-workspace-be/internal/repository/specification"

	"github.com/google/uuid"
)

type WorkspaceRepository interface {
	Create(ctx context.Context, workspace *entity.Workspace) error
	UpdateFields(ctx context.Context, id uuid.UUID, patch entity.WorkspacePatch) error
	Delete(ctx context.Context, id uuid.UUID) error // Hard delete, cascades to folders and files
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Workspace, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Workspace, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
