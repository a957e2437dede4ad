package service

import (
	"context"
	"time"

	"collab-workspace-be/internal/dto"
	"collab-workspace-be/internal/entity"
	"collab-workspace-be/internal/pkg/logger"
	"collab-workspace-be/internal/repository/specification"
	"collab-workspace-be/internal/repository/unitofwork"
	"collab-workspace-be/pkg/feed"

	"github.com/google/uuid"
)

type IWorkspaceService interface {
	GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.WorkspaceResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.WorkspaceResponse, error)
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateWorkspaceRequest) (*dto.CreateWorkspaceResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateWorkspaceRequest) (*dto.UpdateWorkspaceResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type workspaceService struct {
	uowFactory unitofwork.RepositoryFactory
	bus        feed.Bus
	log        logger.ILogger
}

func NewWorkspaceService(
	uowFactory unitofwork.RepositoryFactory,
	bus feed.Bus,
	log logger.ILogger,
) IWorkspaceService {
	return &workspaceService{
		uowFactory: uowFactory,
		bus:        bus,
		log:        log,
	}
}

// ensureWorkspaceAccess loads the workspace and verifies the user owns it or
// collaborates on it.
func ensureWorkspaceAccess(ctx context.Context, uow unitofwork.UnitOfWork, userId, workspaceId uuid.UUID) (*entity.Workspace, error) {
	workspace, err := uow.WorkspaceRepository().FindOne(ctx, specification.ByID{ID: workspaceId})
	if err != nil {
		return nil, err
	}
	if workspace == nil {
		return nil, ErrNotFound
	}
	if workspace.WorkspaceOwner == userId {
		return workspace, nil
	}

	count, err := uow.CollaboratorRepository().Count(ctx,
		specification.ByWorkspaceID{WorkspaceID: workspaceId},
		specification.ByUserID{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrForbidden
	}
	return workspace, nil
}

func (s *workspaceService) GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.WorkspaceResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	workspaces, err := uow.WorkspaceRepository().FindAll(ctx,
		specification.VisibleTo{UserID: userId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.WorkspaceResponse, 0, len(workspaces))
	for _, w := range workspaces {
		res := workspaceResponse(w)
		// List views never carry the heavy document payload.
		res.Data = ""
		result = append(result, res)
	}
	return result, nil
}

func (s *workspaceService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.WorkspaceResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	workspace, err := ensureWorkspaceAccess(ctx, uow, userId, id)
	if err != nil {
		return nil, err
	}
	return workspaceResponse(workspace), nil
}

func (s *workspaceService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateWorkspaceRequest) (*dto.CreateWorkspaceResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	id := uuid.New()
	if req.Id != nil {
		id = *req.Id
	}
	workspace := entity.Workspace{
		Id:             id,
		Title:          req.Title,
		IconId:         req.IconId,
		Data:           req.Data,
		Logo:           req.Logo,
		BannerUrl:      req.BannerUrl,
		WorkspaceOwner: userId,
		CreatedAt:      time.Now(),
		LastModifiedBy: req.LastModifiedBy,
	}

	if err := uow.WorkspaceRepository().Create(ctx, &workspace); err != nil {
		return nil, err
	}

	publishChange(ctx, s.bus, s.log, feed.TableWorkspaces, feed.EventInsert, workspaceRow(&workspace), nil)

	return &dto.CreateWorkspaceResponse{
		Id: workspace.Id,
	}, nil
}

func (s *workspaceService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateWorkspaceRequest) (*dto.UpdateWorkspaceResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	prev, err := ensureWorkspaceAccess(ctx, uow, userId, req.Id)
	if err != nil {
		return nil, err
	}

	patch := entity.WorkspacePatch{
		Title:          req.Title,
		IconId:         req.IconId,
		Data:           req.Data,
		InTrash:        req.InTrash,
		ClearInTrash:   req.RestoreTrash,
		Logo:           req.Logo,
		BannerUrl:      req.BannerUrl,
		LastModifiedBy: req.LastModifiedBy,
	}
	if err := uow.WorkspaceRepository().UpdateFields(ctx, req.Id, patch); err != nil {
		return nil, err
	}

	// Refetch so the published row carries the database-set updated_at.
	updated, err := uow.WorkspaceRepository().FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, err
	}
	publishChange(ctx, s.bus, s.log, feed.TableWorkspaces, feed.EventUpdate, workspaceRow(updated), workspaceRow(prev))

	return &dto.UpdateWorkspaceResponse{
		Id: req.Id,
	}, nil
}

func (s *workspaceService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	workspace, err := uow.WorkspaceRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if workspace == nil {
		return ErrNotFound
	}
	// Only the owner can delete a workspace outright.
	if workspace.WorkspaceOwner != userId {
		return ErrForbidden
	}

	if err := uow.WorkspaceRepository().Delete(ctx, id); err != nil {
		return err
	}

	publishChange(ctx, s.bus, s.log, feed.TableWorkspaces, feed.EventDelete, nil, workspaceRow(workspace))
	return nil
}

func workspaceResponse(w *entity.Workspace) *dto.WorkspaceResponse {
	return &dto.WorkspaceResponse{
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
	}
}
