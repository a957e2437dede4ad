package service

import (
	"context"
	"time"

	"collab-workspace-be/internal/dto"
	"collab-workspace-be/internal/entity"
	"collab-workspace-be/internal/pkg/logger"
	"collab-workspace-be/internal/pkg/mailer"
	"collab-workspace-be/internal/repository/specification"
	"collab-workspace-be/internal/repository/unitofwork"
	"collab-workspace-be/pkg/feed"

	"github.com/google/uuid"
)

type ICollaboratorService interface {
	GetAll(ctx context.Context, userId uuid.UUID, workspaceId uuid.UUID) ([]*dto.CollaboratorResponse, error)
	Add(ctx context.Context, userId uuid.UUID, req *dto.AddCollaboratorRequest) (*dto.AddCollaboratorResponse, error)
	Remove(ctx context.Context, userId uuid.UUID, req *dto.RemoveCollaboratorRequest) error
}

type collaboratorService struct {
	uowFactory   unitofwork.RepositoryFactory
	bus          feed.Bus
	emailService mailer.IEmailService
	log          logger.ILogger
}

func NewCollaboratorService(
	uowFactory unitofwork.RepositoryFactory,
	bus feed.Bus,
	emailService mailer.IEmailService,
	log logger.ILogger,
) ICollaboratorService {
	return &collaboratorService{
		uowFactory:   uowFactory,
		bus:          bus,
		emailService: emailService,
		log:          log,
	}
}

func (s *collaboratorService) GetAll(ctx context.Context, userId uuid.UUID, workspaceId uuid.UUID) ([]*dto.CollaboratorResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := ensureWorkspaceAccess(ctx, uow, userId, workspaceId); err != nil {
		return nil, err
	}

	collaborators, err := uow.CollaboratorRepository().FindAll(ctx,
		specification.ByWorkspaceID{WorkspaceID: workspaceId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.CollaboratorResponse, 0, len(collaborators))
	for _, c := range collaborators {
		result = append(result, &dto.CollaboratorResponse{
			Id:          c.Id,
			WorkspaceId: c.WorkspaceId,
			UserId:      c.UserId,
			CreatedAt:   c.CreatedAt,
		})
	}
	return result, nil
}

func (s *collaboratorService) Add(ctx context.Context, userId uuid.UUID, req *dto.AddCollaboratorRequest) (*dto.AddCollaboratorResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	workspace, err := uow.WorkspaceRepository().FindOne(ctx, specification.ByID{ID: req.WorkspaceId})
	if err != nil {
		return nil, err
	}
	if workspace == nil {
		return nil, ErrNotFound
	}
	// Only the owner manages membership.
	if workspace.WorkspaceOwner != userId {
		return nil, ErrForbidden
	}
	// The owner already has full access; a membership row would only
	// produce duplicate roster entries.
	if req.UserId == workspace.WorkspaceOwner {
		return nil, ErrForbidden
	}

	// Idempotent: re-adding an existing member returns the existing record.
	existing, err := uow.CollaboratorRepository().FindOne(ctx,
		specification.ByWorkspaceID{WorkspaceID: req.WorkspaceId},
		specification.ByUserID{UserID: req.UserId},
	)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &dto.AddCollaboratorResponse{Id: existing.Id}, nil
	}

	collaborator := entity.Collaborator{
		Id:          uuid.New(),
		WorkspaceId: req.WorkspaceId,
		UserId:      req.UserId,
		CreatedAt:   time.Now(),
	}
	if err := uow.CollaboratorRepository().Create(ctx, &collaborator); err != nil {
		return nil, err
	}

	publishChange(ctx, s.bus, s.log, feed.TableCollaborators, feed.EventInsert, collaboratorRow(&collaborator), nil)

	if req.Email != "" && s.emailService != nil {
		if err := s.emailService.SendCollaboratorInvite(req.Email, workspace.Title); err != nil {
			// Membership is already committed; the invite is best effort.
			s.log.Warn("Collaborator", "Failed to send invite email", map[string]interface{}{
				"workspace_id": req.WorkspaceId,
				"error":        err.Error(),
			})
		}
	}

	return &dto.AddCollaboratorResponse{
		Id: collaborator.Id,
	}, nil
}

func (s *collaboratorService) Remove(ctx context.Context, userId uuid.UUID, req *dto.RemoveCollaboratorRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	workspace, err := uow.WorkspaceRepository().FindOne(ctx, specification.ByID{ID: req.WorkspaceId})
	if err != nil {
		return err
	}
	if workspace == nil {
		return ErrNotFound
	}
	// The owner can remove anyone; a collaborator can remove themself.
	if workspace.WorkspaceOwner != userId && req.UserId != userId {
		return ErrForbidden
	}

	existing, err := uow.CollaboratorRepository().FindOne(ctx,
		specification.ByWorkspaceID{WorkspaceID: req.WorkspaceId},
		specification.ByUserID{UserID: req.UserId},
	)
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}

	if err := uow.CollaboratorRepository().DeleteByWorkspaceAndUser(ctx, req.WorkspaceId, req.UserId); err != nil {
		return err
	}

	publishChange(ctx, s.bus, s.log, feed.TableCollaborators, feed.EventDelete, nil, collaboratorRow(existing))
	return nil
}
