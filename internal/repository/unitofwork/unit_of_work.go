package unitofwork

import (
	"context"

	"collab-workspace-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	WorkspaceRepository() contract.WorkspaceRepository
	FolderRepository() contract.FolderRepository
	FileRepository() contract.FileRepository
	CollaboratorRepository() contract.CollaboratorRepository
}
