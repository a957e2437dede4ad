package sync

import (
	"context"

	"collab-workspace-be/internal/dto"
	"collab-workspace-be/internal/entity"
	"collab-workspace-be/internal/service"

	"github.com/google/uuid"
)

// ServiceGateway adapts the catalog service layer to the engine's
// Persistence and Fetcher contracts, for single-process deployments and
// tests. Entity ids minted by the optimistic store are passed through, so
// the change-feed echo carries the same ids the store already holds.
type ServiceGateway struct {
	userId     uuid.UUID
	workspaces service.IWorkspaceService
	folders    service.IFolderService
	files      service.IFileService
}

func NewServiceGateway(
	userId uuid.UUID,
	workspaces service.IWorkspaceService,
	folders service.IFolderService,
	files service.IFileService,
) *ServiceGateway {
	return &ServiceGateway{
		userId:     userId,
		workspaces: workspaces,
		folders:    folders,
		files:      files,
	}
}

// --- Persistence ---

func (g *ServiceGateway) CreateWorkspace(ctx context.Context, w entity.Workspace) error {
	id := w.Id
	_, err := g.workspaces.Create(ctx, g.userId, &dto.CreateWorkspaceRequest{
		Id:             &id,
		Title:          w.Title,
		IconId:         w.IconId,
		Data:           w.Data,
		Logo:           w.Logo,
		BannerUrl:      w.BannerUrl,
		LastModifiedBy: w.LastModifiedBy,
	})
	return err
}

func (g *ServiceGateway) UpdateWorkspace(ctx context.Context, id uuid.UUID, patch entity.WorkspacePatch) error {
	_, err := g.workspaces.Update(ctx, g.userId, &dto.UpdateWorkspaceRequest{
		Id:             id,
		Title:          patch.Title,
		IconId:         patch.IconId,
		Data:           patch.Data,
		InTrash:        patch.InTrash,
		RestoreTrash:   patch.ClearInTrash,
		Logo:           patch.Logo,
		BannerUrl:      patch.BannerUrl,
		LastModifiedBy: patch.LastModifiedBy,
	})
	return err
}

func (g *ServiceGateway) DeleteWorkspace(ctx context.Context, id uuid.UUID) error {
	return g.workspaces.Delete(ctx, g.userId, id)
}

func (g *ServiceGateway) CreateFolder(ctx context.Context, f entity.Folder) error {
	id := f.Id
	_, err := g.folders.Create(ctx, g.userId, &dto.CreateFolderRequest{
		Id:             &id,
		WorkspaceId:    f.WorkspaceId,
		Title:          f.Title,
		IconId:         f.IconId,
		Data:           f.Data,
		BannerUrl:      f.BannerUrl,
		LastModifiedBy: f.LastModifiedBy,
	})
	return err
}

func (g *ServiceGateway) UpdateFolder(ctx context.Context, id uuid.UUID, patch entity.FolderPatch) error {
	_, err := g.folders.Update(ctx, g.userId, &dto.UpdateFolderRequest{
		Id:             id,
		Title:          patch.Title,
		IconId:         patch.IconId,
		Data:           patch.Data,
		InTrash:        patch.InTrash,
		RestoreTrash:   patch.ClearInTrash,
		BannerUrl:      patch.BannerUrl,
		LastModifiedBy: patch.LastModifiedBy,
	})
	return err
}

func (g *ServiceGateway) DeleteFolder(ctx context.Context, id uuid.UUID) error {
	return g.folders.Delete(ctx, g.userId, id)
}

func (g *ServiceGateway) CreateFile(ctx context.Context, f entity.File) error {
	id := f.Id
	_, err := g.files.Create(ctx, g.userId, &dto.CreateFileRequest{
		Id:             &id,
		WorkspaceId:    f.WorkspaceId,
		FolderId:       f.FolderId,
		Title:          f.Title,
		IconId:         f.IconId,
		Data:           f.Data,
		BannerUrl:      f.BannerUrl,
		LastModifiedBy: f.LastModifiedBy,
	})
	return err
}

func (g *ServiceGateway) UpdateFile(ctx context.Context, id uuid.UUID, patch entity.FilePatch) error {
	_, err := g.files.Update(ctx, g.userId, &dto.UpdateFileRequest{
		Id:             id,
		Title:          patch.Title,
		IconId:         patch.IconId,
		Data:           patch.Data,
		InTrash:        patch.InTrash,
		RestoreTrash:   patch.ClearInTrash,
		BannerUrl:      patch.BannerUrl,
		LastModifiedBy: patch.LastModifiedBy,
	})
	return err
}

func (g *ServiceGateway) DeleteFile(ctx context.Context, id uuid.UUID) error {
	return g.files.Delete(ctx, g.userId, id)
}

// --- Fetcher ---

func (g *ServiceGateway) FetchWorkspaces(ctx context.Context) ([]entity.Workspace, error) {
	res, err := g.workspaces.GetAll(ctx, g.userId)
	if err != nil {
		return nil, err
	}
	out := make([]entity.Workspace, 0, len(res))
	for _, w := range res {
		out = append(out, entity.Workspace{
			Id:             w.Id,
			Title:          w.Title,
			IconId:         w.IconId,
			Data:           w.Data,
			InTrash:        w.InTrash,
			Logo:           w.Logo,
			BannerUrl:      w.BannerUrl,
			WorkspaceOwner: w.WorkspaceOwner,
			CreatedAt:      w.CreatedAt,
			UpdatedAt:      w.UpdatedAt,
			LastModifiedBy: w.LastModifiedBy,
		})
	}
	return out, nil
}

func (g *ServiceGateway) FetchFolders(ctx context.Context, workspaceID uuid.UUID) ([]entity.Folder, error) {
	res, err := g.folders.GetAll(ctx, g.userId, workspaceID)
	if err != nil {
		return nil, err
	}
	out := make([]entity.Folder, 0, len(res))
	for _, f := range res {
		out = append(out, entity.Folder{
			Id:             f.Id,
			WorkspaceId:    f.WorkspaceId,
			Title:          f.Title,
			IconId:         f.IconId,
			Data:           f.Data,
			InTrash:        f.InTrash,
			BannerUrl:      f.BannerUrl,
			CreatedAt:      f.CreatedAt,
			UpdatedAt:      f.UpdatedAt,
			LastModifiedBy: f.LastModifiedBy,
		})
	}
	return out, nil
}

func (g *ServiceGateway) FetchFiles(ctx context.Context, folderID uuid.UUID) ([]entity.File, error) {
	res, err := g.files.GetAll(ctx, g.userId, folderID)
	if err != nil {
		return nil, err
	}
	out := make([]entity.File, 0, len(res))
	for _, f := range res {
		out = append(out, entity.File{
			Id:             f.Id,
			WorkspaceId:    f.WorkspaceId,
			FolderId:       f.FolderId,
			Title:          f.Title,
			IconId:         f.IconId,
			Data:           f.Data,
			InTrash:        f.InTrash,
			BannerUrl:      f.BannerUrl,
			CreatedAt:      f.CreatedAt,
			UpdatedAt:      f.UpdatedAt,
			LastModifiedBy: f.LastModifiedBy,
		})
	}
	return out, nil
}
