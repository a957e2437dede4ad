package service

import (
	"context"
	"time"

	"collab-workspace-be/internal/entity"
	"collab-workspace-be/internal/pkg/logger"
	"collab-workspace-be/pkg/feed"
)

// publishChange emits a change event after the database write has committed.
// Delivery failures are logged, never surfaced: the HTTP mutation already
// succeeded and reconcilers tolerate missed events via structural refetch.
func publishChange(ctx context.Context, bus feed.Bus, log logger.ILogger, table feed.Table, typ feed.EventType, newRow, oldRow *feed.Row) {
	if bus == nil {
		return
	}
	event := feed.ChangeEvent{
		Table: table,
		Type:  typ,
		New:   newRow,
		Old:   oldRow,
		At:    time.Now().UTC(),
	}
	if err := bus.Publish(ctx, event); err != nil {
		log.Error("Feed", "Failed to publish change event", map[string]interface{}{
			"table": string(table),
			"type":  string(typ),
			"error": err.Error(),
		})
	}
}

func workspaceRow(w *entity.Workspace) *feed.Row {
	if w == nil {
		return nil
	}
	data := w.Data
	owner := w.WorkspaceOwner
	return &feed.Row{
		Id:             w.Id,
		Title:          w.Title,
		IconId:         w.IconId,
		Data:           &data,
		InTrash:        w.InTrash,
		Logo:           w.Logo,
		BannerUrl:      w.BannerUrl,
		WorkspaceOwner: &owner,
		CreatedAt:      w.CreatedAt,
		UpdatedAt:      w.UpdatedAt,
		LastModifiedBy: w.LastModifiedBy,
	}
}

func folderRow(f *entity.Folder) *feed.Row {
	if f == nil {
		return nil
	}
	data := f.Data
	workspaceId := f.WorkspaceId
	return &feed.Row{
		Id:             f.Id,
		Title:          f.Title,
		IconId:         f.IconId,
		Data:           &data,
		InTrash:        f.InTrash,
		BannerUrl:      f.BannerUrl,
		WorkspaceId:    &workspaceId,
		CreatedAt:      f.CreatedAt,
		UpdatedAt:      f.UpdatedAt,
		LastModifiedBy: f.LastModifiedBy,
	}
}

func fileRow(f *entity.File) *feed.Row {
	if f == nil {
		return nil
	}
	data := f.Data
	workspaceId := f.WorkspaceId
	folderId := f.FolderId
	return &feed.Row{
		Id:             f.Id,
		Title:          f.Title,
		IconId:         f.IconId,
		Data:           &data,
		InTrash:        f.InTrash,
		BannerUrl:      f.BannerUrl,
		WorkspaceId:    &workspaceId,
		FolderId:       &folderId,
		CreatedAt:      f.CreatedAt,
		UpdatedAt:      f.UpdatedAt,
		LastModifiedBy: f.LastModifiedBy,
	}
}

func collaboratorRow(c *entity.Collaborator) *feed.Row {
	if c == nil {
		return nil
	}
	workspaceId := c.WorkspaceId
	userId := c.UserId
	return &feed.Row{
		Id:          c.Id,
		WorkspaceId: &workspaceId,
		UserId:      &userId,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.CreatedAt,
	}
}
