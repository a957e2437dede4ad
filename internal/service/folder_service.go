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

type IFolderService interface {
	GetAll(ctx context.Context, userId uuid.UUID, workspaceId uuid.UUID) ([]*dto.FolderResponse, error)
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateFolderRequest) (*dto.CreateFolderResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateFolderRequest) (*dto.UpdateFolderResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type folderService struct {
	uowFactory unitofwork.RepositoryFactory
	bus        feed.Bus
	log        logger.ILogger
}

func NewFolderService(
	uowFactory unitofwork.RepositoryFactory,
	bus feed.Bus,
	log logger.ILogger,
) IFolderService {
	return &folderService{
		uowFactory: uowFactory,
		bus:        bus,
		log:        log,
	}
}

func (s *folderService) GetAll(ctx context.Context, userId uuid.UUID, workspaceId uuid.UUID) ([]*dto.FolderResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := ensureWorkspaceAccess(ctx, uow, userId, workspaceId); err != nil {
		return nil, err
	}

	folders, err := uow.FolderRepository().FindAll(ctx,
		specification.ByWorkspaceID{WorkspaceID: workspaceId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.FolderResponse, 0, len(folders))
	for _, f := range folders {
		res := folderResponse(f)
		res.Data = ""
		result = append(result, res)
	}
	return result, nil
}

func (s *folderService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateFolderRequest) (*dto.CreateFolderResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := ensureWorkspaceAccess(ctx, uow, userId, req.WorkspaceId); err != nil {
		return nil, err
	}

	id := uuid.New()
	if req.Id != nil {
		id = *req.Id
	}
	folder := entity.Folder{
		Id:             id,
		WorkspaceId:    req.WorkspaceId,
		Title:          req.Title,
		IconId:         req.IconId,
		Data:           req.Data,
		BannerUrl:      req.BannerUrl,
		CreatedAt:      time.Now(),
		LastModifiedBy: req.LastModifiedBy,
	}

	if err := uow.FolderRepository().Create(ctx, &folder); err != nil {
		return nil, err
	}

	publishChange(ctx, s.bus, s.log, feed.TableFolders, feed.EventInsert, folderRow(&folder), nil)

	return &dto.CreateFolderResponse{
		Id: folder.Id,
	}, nil
}

func (s *folderService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateFolderRequest) (*dto.UpdateFolderResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	prev, err := uow.FolderRepository().FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, err
	}
	if prev == nil {
		return nil, ErrNotFound
	}
	if _, err := ensureWorkspaceAccess(ctx, uow, userId, prev.WorkspaceId); err != nil {
		return nil, err
	}

	patch := entity.FolderPatch{
		Title:          req.Title,
		IconId:         req.IconId,
		Data:           req.Data,
		InTrash:        req.InTrash,
		ClearInTrash:   req.RestoreTrash,
		BannerUrl:      req.BannerUrl,
		LastModifiedBy: req.LastModifiedBy,
	}
	if err := uow.FolderRepository().UpdateFields(ctx, req.Id, patch); err != nil {
		return nil, err
	}

	updated, err := uow.FolderRepository().FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, err
	}
	publishChange(ctx, s.bus, s.log, feed.TableFolders, feed.EventUpdate, folderRow(updated), folderRow(prev))

	return &dto.UpdateFolderResponse{
		Id: req.Id,
	}, nil
}

func (s *folderService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	folder, err := uow.FolderRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if folder == nil {
		return ErrNotFound
	}
	if _, err := ensureWorkspaceAccess(ctx, uow, userId, folder.WorkspaceId); err != nil {
		return err
	}

	if err := uow.FolderRepository().Delete(ctx, id); err != nil {
		return err
	}

	publishChange(ctx, s.bus, s.log, feed.TableFolders, feed.EventDelete, nil, folderRow(folder))
	return nil
}

func folderResponse(f *entity.Folder) *dto.FolderResponse {
	return &dto.FolderResponse{
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
	}
}
