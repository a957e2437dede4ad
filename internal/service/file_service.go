package service

import (
	"context"
	"fmt"
	"time"

	"collab-workspace-be/internal/dto"
	"collab-workspace-be/internal/entity"
	"collab-workspace-be/internal/pkg/logger"
	"collab-workspace-be/internal/repository/specification"
	"collab-workspace-be/internal/repository/unitofwork"
	"collab-workspace-be/pkg/feed"

	"github.com/google/uuid"
)

type IFileService interface {
	GetAll(ctx context.Context, userId uuid.UUID, folderId uuid.UUID) ([]*dto.FileResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.FileResponse, error)
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateFileRequest) (*dto.CreateFileResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateFileRequest) (*dto.UpdateFileResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type fileService struct {
	uowFactory unitofwork.RepositoryFactory
	bus        feed.Bus
	log        logger.ILogger
}

func NewFileService(
	uowFactory unitofwork.RepositoryFactory,
	bus feed.Bus,
	log logger.ILogger,
) IFileService {
	return &fileService{
		uowFactory: uowFactory,
		bus:        bus,
		log:        log,
	}
}

func (s *fileService) GetAll(ctx context.Context, userId uuid.UUID, folderId uuid.UUID) ([]*dto.FileResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	folder, err := uow.FolderRepository().FindOne(ctx, specification.ByID{ID: folderId})
	if err != nil {
		return nil, err
	}
	if folder == nil {
		return nil, ErrNotFound
	}
	if _, err := ensureWorkspaceAccess(ctx, uow, userId, folder.WorkspaceId); err != nil {
		return nil, err
	}

	files, err := uow.FileRepository().FindAll(ctx,
		specification.ByFolderID{FolderID: folderId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.FileResponse, 0, len(files))
	for _, f := range files {
		res := fileResponse(f)
		res.Data = ""
		result = append(result, res)
	}
	return result, nil
}

func (s *fileService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.FileResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	file, err := uow.FileRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, ErrNotFound
	}
	if _, err := ensureWorkspaceAccess(ctx, uow, userId, file.WorkspaceId); err != nil {
		return nil, err
	}
	return fileResponse(file), nil
}

func (s *fileService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateFileRequest) (*dto.CreateFileResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := ensureWorkspaceAccess(ctx, uow, userId, req.WorkspaceId); err != nil {
		return nil, err
	}

	folder, err := uow.FolderRepository().FindOne(ctx, specification.ByID{ID: req.FolderId})
	if err != nil {
		return nil, err
	}
	if folder == nil {
		return nil, ErrNotFound
	}
	// A file's folder and workspace are fixed at creation and must agree.
	if folder.WorkspaceId != req.WorkspaceId {
		return nil, fmt.Errorf("folder %s does not belong to workspace %s", req.FolderId, req.WorkspaceId)
	}

	id := uuid.New()
	if req.Id != nil {
		id = *req.Id
	}
	file := entity.File{
		Id:             id,
		WorkspaceId:    req.WorkspaceId,
		FolderId:       req.FolderId,
		Title:          req.Title,
		IconId:         req.IconId,
		Data:           req.Data,
		BannerUrl:      req.BannerUrl,
		CreatedAt:      time.Now(),
		LastModifiedBy: req.LastModifiedBy,
	}

	if err := uow.FileRepository().Create(ctx, &file); err != nil {
		return nil, err
	}

	publishChange(ctx, s.bus, s.log, feed.TableFiles, feed.EventInsert, fileRow(&file), nil)

	return &dto.CreateFileResponse{
		Id: file.Id,
	}, nil
}

func (s *fileService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateFileRequest) (*dto.UpdateFileResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	prev, err := uow.FileRepository().FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, err
	}
	if prev == nil {
		return nil, ErrNotFound
	}
	if _, err := ensureWorkspaceAccess(ctx, uow, userId, prev.WorkspaceId); err != nil {
		return nil, err
	}

	patch := entity.FilePatch{
		Title:          req.Title,
		IconId:         req.IconId,
		Data:           req.Data,
		InTrash:        req.InTrash,
		ClearInTrash:   req.RestoreTrash,
		BannerUrl:      req.BannerUrl,
		LastModifiedBy: req.LastModifiedBy,
	}
	if err := uow.FileRepository().UpdateFields(ctx, req.Id, patch); err != nil {
		return nil, err
	}

	updated, err := uow.FileRepository().FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, err
	}
	publishChange(ctx, s.bus, s.log, feed.TableFiles, feed.EventUpdate, fileRow(updated), fileRow(prev))

	return &dto.UpdateFileResponse{
		Id: req.Id,
	}, nil
}

func (s *fileService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	file, err := uow.FileRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if file == nil {
		return ErrNotFound
	}
	if _, err := ensureWorkspaceAccess(ctx, uow, userId, file.WorkspaceId); err != nil {
		return err
	}

	if err := uow.FileRepository().Delete(ctx, id); err != nil {
		return err
	}

	publishChange(ctx, s.bus, s.log, feed.TableFiles, feed.EventDelete, nil, fileRow(file))
	return nil
}

func fileResponse(f *entity.File) *dto.FileResponse {
	return &dto.FileResponse{
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
	}
}
