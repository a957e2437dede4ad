package sync

import (
	"context"

	"collab-workspace-be/internal/entity"
	"collab-workspace-be/internal/pkg/logger"
	"collab-workspace-be/internal/session"
	"collab-workspace-be/internal/store"
	"collab-workspace-be/pkg/feed"

	"github.com/google/uuid"
)

// Navigator is told where to land when the currently open document is
// deleted remotely. Nil ids mean the dashboard root; a workspace id with a
// nil folder id means the workspace page.
type Navigator interface {
	NavigateToAncestor(workspaceID, folderID *uuid.UUID)
}

// Refresher refetches the visible workspace set. Membership changes are
// structural (they decide which workspaces are visible at all), so they are
// refetched rather than merged field by field.
type Refresher interface {
	RefreshWorkspaces(ctx context.Context) error
}

// Reconciler folds asynchronous per-table change notifications into the
// tree store. Events are self-contained full-row snapshots and merges are
// commutative per-id field overwrites, so no delivery order is assumed
// across tables or within one. The reconciler holds no retry state: if the
// underlying subscription drops, resubscription is the transport's job and
// folding simply resumes once reconnected.
type Reconciler struct {
	store        *store.TreeStore
	session      *session.Mutation
	userID       uuid.UUID
	openDocument func() (uuid.UUID, bool)
	navigator    Navigator
	refresher    Refresher
	log          logger.ILogger
}

func NewReconciler(
	treeStore *store.TreeStore,
	mutation *session.Mutation,
	userID uuid.UUID,
	openDocument func() (uuid.UUID, bool),
	navigator Navigator,
	refresher Refresher,
	log logger.ILogger,
) *Reconciler {
	return &Reconciler{
		store:        treeStore,
		session:      mutation,
		userID:       userID,
		openDocument: openDocument,
		navigator:    navigator,
		refresher:    refresher,
		log:          log,
	}
}

// Run subscribes the reconciler to the change feed.
func (r *Reconciler) Run(ctx context.Context, bus feed.Bus) error {
	return bus.Subscribe(ctx, r.Handle)
}

// Handle folds one change event. Malformed or unexpected events are dropped
// defensively; the reconciler never fails the session over a bad event.
func (r *Reconciler) Handle(ctx context.Context, ev feed.ChangeEvent) {
	if ev.Type != feed.EventDelete && ev.New == nil {
		r.drop(ev, "missing new row")
		return
	}
	if ev.Type == feed.EventDelete && ev.Old == nil {
		r.drop(ev, "missing old row")
		return
	}

	// Suppress this client's own echoed writes. Deletes still apply: the
	// delete handler is idempotent against an already-removed entity.
	if actor := ev.Actor(); ev.Type != feed.EventDelete && actor != nil && *actor == r.session.Current() {
		return
	}

	switch ev.Table {
	case feed.TableWorkspaces:
		r.applyWorkspace(ev)
	case feed.TableFolders:
		r.applyFolder(ev)
	case feed.TableFiles:
		r.applyFile(ev)
	case feed.TableCollaborators:
		r.applyCollaborator(ctx, ev)
	default:
		r.drop(ev, "unknown table")
	}
}

func (r *Reconciler) applyWorkspace(ev feed.ChangeEvent) {
	switch ev.Type {
	case feed.EventInsert:
		// Idempotent against duplicate delivery.
		if _, known := r.store.Workspace(ev.New.Id); known {
			return
		}
		r.store.AddWorkspace(workspaceFromRow(ev.New))

	case feed.EventUpdate:
		curr, known := r.store.Workspace(ev.New.Id)
		if !known {
			// Unknown entity: it will arrive via a future fetch or insert.
			return
		}
		if curr.UpdatedAt.After(ev.New.UpdatedAt) {
			// Last write wins; this event lost the race.
			return
		}
		r.store.UpdateWorkspace(ev.New.Id, workspacePatchFromRow(ev.New))

	case feed.EventDelete:
		if _, known := r.store.Workspace(ev.Old.Id); !known {
			return
		}
		removed, err := r.store.DeleteWorkspace(ev.Old.Id)
		if err != nil {
			return
		}
		r.evictOpenDocument(removed, nil, nil)

	default:
		r.drop(ev, "unknown event type")
	}
}

func (r *Reconciler) applyFolder(ev feed.ChangeEvent) {
	switch ev.Type {
	case feed.EventInsert:
		if _, known := r.store.Folder(ev.New.Id); known {
			return
		}
		if _, err := r.store.AddFolder(folderFromRow(ev.New)); err != nil {
			r.drop(ev, err.Error())
		}

	case feed.EventUpdate:
		curr, known := r.store.Folder(ev.New.Id)
		if !known {
			return
		}
		if curr.UpdatedAt.After(ev.New.UpdatedAt) {
			return
		}
		// WorkspaceId is immutable after creation; a row claiming a new
		// parent workspace is not re-homed here.
		r.store.UpdateFolder(ev.New.Id, folderPatchFromRow(ev.New))

	case feed.EventDelete:
		curr, known := r.store.Folder(ev.Old.Id)
		if !known {
			return
		}
		removed, err := r.store.DeleteFolder(ev.Old.Id)
		if err != nil {
			return
		}
		workspaceID := curr.WorkspaceId
		r.evictOpenDocument(removed, &workspaceID, nil)

	default:
		r.drop(ev, "unknown event type")
	}
}

func (r *Reconciler) applyFile(ev feed.ChangeEvent) {
	switch ev.Type {
	case feed.EventInsert:
		if _, known := r.store.File(ev.New.Id); known {
			return
		}
		if _, err := r.store.AddFile(fileFromRow(ev.New)); err != nil {
			r.drop(ev, err.Error())
		}

	case feed.EventUpdate:
		curr, known := r.store.File(ev.New.Id)
		if !known {
			return
		}
		if curr.UpdatedAt.After(ev.New.UpdatedAt) {
			return
		}
		r.store.UpdateFile(ev.New.Id, filePatchFromRow(ev.New))

	case feed.EventDelete:
		curr, known := r.store.File(ev.Old.Id)
		if !known {
			return
		}
		if _, err := r.store.DeleteFile(ev.Old.Id); err != nil {
			return
		}
		removed := store.Removed{Files: []entity.File{curr}}
		workspaceID := curr.WorkspaceId
		folderID := curr.FolderId
		r.evictOpenDocument(removed, &workspaceID, &folderID)

	default:
		r.drop(ev, "unknown event type")
	}
}

// applyCollaborator handles membership records. Only events affecting the
// current user matter; they trigger a structural refresh since visibility
// of whole workspaces may have changed.
func (r *Reconciler) applyCollaborator(ctx context.Context, ev feed.ChangeEvent) {
	var affected *uuid.UUID
	var workspaceID *uuid.UUID
	if ev.New != nil {
		affected = ev.New.UserId
		workspaceID = ev.New.WorkspaceId
	} else if ev.Old != nil {
		affected = ev.Old.UserId
		workspaceID = ev.Old.WorkspaceId
	}
	if affected == nil || *affected != r.userID || workspaceID == nil {
		return
	}

	switch ev.Type {
	case feed.EventInsert:
		if _, known := r.store.Workspace(*workspaceID); !known {
			r.refresh(ctx)
		}
	case feed.EventDelete:
		if _, known := r.store.Workspace(*workspaceID); known {
			r.refresh(ctx)
		}
	}
}

func (r *Reconciler) refresh(ctx context.Context) {
	if r.refresher == nil {
		return
	}
	if err := r.refresher.RefreshWorkspaces(ctx); err != nil {
		r.log.Warn("Reconciler", "Structural refresh failed", map[string]interface{}{"error": err.Error()})
	}
}

// evictOpenDocument navigates to the nearest surviving ancestor when the
// removed subtree contained the document currently open.
func (r *Reconciler) evictOpenDocument(removed store.Removed, workspaceID, folderID *uuid.UUID) {
	if r.openDocument == nil || r.navigator == nil {
		return
	}
	open, ok := r.openDocument()
	if !ok {
		return
	}
	for _, w := range removed.Workspaces {
		if w.Id == open {
			r.navigator.NavigateToAncestor(nil, nil)
			return
		}
	}
	for _, f := range removed.Folders {
		if f.Id == open {
			r.navigator.NavigateToAncestor(workspaceID, nil)
			return
		}
	}
	for _, f := range removed.Files {
		if f.Id == open {
			r.navigator.NavigateToAncestor(workspaceID, folderID)
			return
		}
	}
}

func (r *Reconciler) drop(ev feed.ChangeEvent, reason string) {
	r.log.Warn("Reconciler", "Dropping change event", map[string]interface{}{
		"table":  string(ev.Table),
		"type":   string(ev.Type),
		"reason": reason,
	})
}

// --- row conversions ---

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func workspaceFromRow(row *feed.Row) entity.Workspace {
	var owner uuid.UUID
	if row.WorkspaceOwner != nil {
		owner = *row.WorkspaceOwner
	}
	return entity.Workspace{
		Id:             row.Id,
		Title:          row.Title,
		IconId:         row.IconId,
		Data:           deref(row.Data),
		InTrash:        row.InTrash,
		Logo:           row.Logo,
		BannerUrl:      row.BannerUrl,
		WorkspaceOwner: owner,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
		LastModifiedBy: row.LastModifiedBy,
	}
}

func workspacePatchFromRow(row *feed.Row) entity.WorkspacePatch {
	patch := entity.WorkspacePatch{
		Title:          &row.Title,
		IconId:         &row.IconId,
		Logo:           row.Logo,
		BannerUrl:      row.BannerUrl,
		WorkspaceOwner: row.WorkspaceOwner,
		UpdatedAt:      &row.UpdatedAt,
		LastModifiedBy: row.LastModifiedBy,
	}
	if row.Data != nil {
		patch.Data = row.Data
	}
	if row.InTrash != nil {
		patch.InTrash = row.InTrash
	} else {
		patch.ClearInTrash = true
	}
	return patch
}

func folderFromRow(row *feed.Row) entity.Folder {
	var workspaceID uuid.UUID
	if row.WorkspaceId != nil {
		workspaceID = *row.WorkspaceId
	}
	return entity.Folder{
		Id:             row.Id,
		WorkspaceId:    workspaceID,
		Title:          row.Title,
		IconId:         row.IconId,
		Data:           deref(row.Data),
		InTrash:        row.InTrash,
		BannerUrl:      row.BannerUrl,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
		LastModifiedBy: row.LastModifiedBy,
	}
}

func folderPatchFromRow(row *feed.Row) entity.FolderPatch {
	patch := entity.FolderPatch{
		Title:          &row.Title,
		IconId:         &row.IconId,
		BannerUrl:      row.BannerUrl,
		UpdatedAt:      &row.UpdatedAt,
		LastModifiedBy: row.LastModifiedBy,
	}
	if row.Data != nil {
		patch.Data = row.Data
	}
	if row.InTrash != nil {
		patch.InTrash = row.InTrash
	} else {
		patch.ClearInTrash = true
	}
	return patch
}

func fileFromRow(row *feed.Row) entity.File {
	var workspaceID, folderID uuid.UUID
	if row.WorkspaceId != nil {
		workspaceID = *row.WorkspaceId
	}
	if row.FolderId != nil {
		folderID = *row.FolderId
	}
	return entity.File{
		Id:             row.Id,
		WorkspaceId:    workspaceID,
		FolderId:       folderID,
		Title:          row.Title,
		IconId:         row.IconId,
		Data:           deref(row.Data),
		InTrash:        row.InTrash,
		BannerUrl:      row.BannerUrl,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
		LastModifiedBy: row.LastModifiedBy,
	}
}

func filePatchFromRow(row *feed.Row) entity.FilePatch {
	patch := entity.FilePatch{
		Title:          &row.Title,
		IconId:         &row.IconId,
		BannerUrl:      row.BannerUrl,
		UpdatedAt:      &row.UpdatedAt,
		LastModifiedBy: row.LastModifiedBy,
	}
	if row.Data != nil {
		patch.Data = row.Data
	}
	if row.InTrash != nil {
		patch.InTrash = row.InTrash
	} else {
		patch.ClearInTrash = true
	}
	return patch
}
