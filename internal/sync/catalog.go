package sync

import (
	"context"
	"fmt"

	"collab-workspace-be/internal/entity"
	"collab-workspace-be/internal/pkg/logger"
	"collab-workspace-be/internal/session"
	"collab-workspace-be/internal/store"

	"github.com/google/uuid"
)

// Persistence is the durable collaborator behind the optimistic store. Every
// operation is keyed by entity id; updates accept a partial field set
// including LastModifiedBy; deletes cascade server-side to children. The
// server re-checks ownership/membership on every call, so the client's
// optimistic view is always provisional until confirmed or rolled back.
type Persistence interface {
	CreateWorkspace(ctx context.Context, w entity.Workspace) error
	UpdateWorkspace(ctx context.Context, id uuid.UUID, patch entity.WorkspacePatch) error
	DeleteWorkspace(ctx context.Context, id uuid.UUID) error

	CreateFolder(ctx context.Context, f entity.Folder) error
	UpdateFolder(ctx context.Context, id uuid.UUID, patch entity.FolderPatch) error
	DeleteFolder(ctx context.Context, id uuid.UUID) error

	CreateFile(ctx context.Context, f entity.File) error
	UpdateFile(ctx context.Context, id uuid.UUID, patch entity.FilePatch) error
	DeleteFile(ctx context.Context, id uuid.UUID) error
}

// Fetcher loads the authoritative catalog, used for structural refreshes.
type Fetcher interface {
	FetchWorkspaces(ctx context.Context) ([]entity.Workspace, error)
	FetchFolders(ctx context.Context, workspaceID uuid.UUID) ([]entity.Folder, error)
	FetchFiles(ctx context.Context, folderID uuid.UUID) ([]entity.File, error)
}

// Catalog performs tagged optimistic mutations: the tree store is mutated
// first, then the persistence request is issued with the session's mutation
// tag; on failure the store is rolled back to the exact prior value.
type Catalog struct {
	store   *store.TreeStore
	session *session.Mutation
	persist Persistence
	fetcher Fetcher
	log     logger.ILogger
}

func NewCatalog(
	treeStore *store.TreeStore,
	mutation *session.Mutation,
	persist Persistence,
	fetcher Fetcher,
	log logger.ILogger,
) *Catalog {
	return &Catalog{
		store:   treeStore,
		session: mutation,
		persist: persist,
		fetcher: fetcher,
		log:     log,
	}
}

func (c *Catalog) tag() *uuid.UUID {
	id := c.session.Current()
	return &id
}

// --- Workspace operations ---

func (c *Catalog) CreateWorkspace(ctx context.Context, w entity.Workspace) error {
	w.LastModifiedBy = c.tag()
	if _, err := c.store.AddWorkspace(w); err != nil {
		return err
	}
	if err := c.persist.CreateWorkspace(ctx, w); err != nil {
		c.store.DeleteWorkspace(w.Id)
		return fmt.Errorf("create workspace: %w", err)
	}
	return nil
}

func (c *Catalog) UpdateWorkspace(ctx context.Context, id uuid.UUID, patch entity.WorkspacePatch) error {
	prev, ok := c.store.Workspace(id)
	if !ok {
		return store.ErrNotFound
	}
	patch.LastModifiedBy = c.tag()
	if _, err := c.store.UpdateWorkspace(id, patch); err != nil {
		return err
	}
	if err := c.persist.UpdateWorkspace(ctx, id, patch); err != nil {
		c.store.AddWorkspace(prev)
		return fmt.Errorf("update workspace: %w", err)
	}
	return nil
}

func (c *Catalog) DeleteWorkspace(ctx context.Context, id uuid.UUID) error {
	removed, err := c.store.DeleteWorkspace(id)
	if err != nil {
		return err
	}
	if err := c.persist.DeleteWorkspace(ctx, id); err != nil {
		c.store.RestoreRemoved(removed)
		return fmt.Errorf("delete workspace: %w", err)
	}
	return nil
}

// --- Folder operations ---

func (c *Catalog) CreateFolder(ctx context.Context, f entity.Folder) error {
	f.LastModifiedBy = c.tag()
	if _, err := c.store.AddFolder(f); err != nil {
		return err
	}
	if err := c.persist.CreateFolder(ctx, f); err != nil {
		c.store.DeleteFolder(f.Id)
		return fmt.Errorf("create folder: %w", err)
	}
	return nil
}

func (c *Catalog) UpdateFolder(ctx context.Context, id uuid.UUID, patch entity.FolderPatch) error {
	prev, ok := c.store.Folder(id)
	if !ok {
		return store.ErrNotFound
	}
	patch.LastModifiedBy = c.tag()
	if _, err := c.store.UpdateFolder(id, patch); err != nil {
		return err
	}
	if err := c.persist.UpdateFolder(ctx, id, patch); err != nil {
		c.store.AddFolder(prev)
		return fmt.Errorf("update folder: %w", err)
	}
	return nil
}

func (c *Catalog) DeleteFolder(ctx context.Context, id uuid.UUID) error {
	removed, err := c.store.DeleteFolder(id)
	if err != nil {
		return err
	}
	if err := c.persist.DeleteFolder(ctx, id); err != nil {
		c.store.RestoreRemoved(removed)
		return fmt.Errorf("delete folder: %w", err)
	}
	return nil
}

// --- File operations ---

func (c *Catalog) CreateFile(ctx context.Context, f entity.File) error {
	f.LastModifiedBy = c.tag()
	if _, err := c.store.AddFile(f); err != nil {
		return err
	}
	if err := c.persist.CreateFile(ctx, f); err != nil {
		c.store.DeleteFile(f.Id)
		return fmt.Errorf("create file: %w", err)
	}
	return nil
}

func (c *Catalog) UpdateFile(ctx context.Context, id uuid.UUID, patch entity.FilePatch) error {
	prev, ok := c.store.File(id)
	if !ok {
		return store.ErrNotFound
	}
	patch.LastModifiedBy = c.tag()
	if _, err := c.store.UpdateFile(id, patch); err != nil {
		return err
	}
	if err := c.persist.UpdateFile(ctx, id, patch); err != nil {
		c.store.AddFile(prev)
		return fmt.Errorf("update file: %w", err)
	}
	return nil
}

func (c *Catalog) DeleteFile(ctx context.Context, id uuid.UUID) error {
	prev, err := c.store.DeleteFile(id)
	if err != nil {
		return err
	}
	if err := c.persist.DeleteFile(ctx, id); err != nil {
		c.store.AddFile(prev)
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

// --- Trash convenience ---

func (c *Catalog) MoveToTrash(ctx context.Context, kind entity.Kind, id uuid.UUID, reason string) error {
	switch kind {
	case entity.KindWorkspace:
		return c.UpdateWorkspace(ctx, id, entity.WorkspacePatch{InTrash: &reason})
	case entity.KindFolder:
		return c.UpdateFolder(ctx, id, entity.FolderPatch{InTrash: &reason})
	case entity.KindFile:
		return c.UpdateFile(ctx, id, entity.FilePatch{InTrash: &reason})
	default:
		return fmt.Errorf("unknown entity kind %v", kind)
	}
}

func (c *Catalog) RestoreFromTrash(ctx context.Context, kind entity.Kind, id uuid.UUID) error {
	switch kind {
	case entity.KindWorkspace:
		return c.UpdateWorkspace(ctx, id, entity.WorkspacePatch{ClearInTrash: true})
	case entity.KindFolder:
		return c.UpdateFolder(ctx, id, entity.FolderPatch{ClearInTrash: true})
	case entity.KindFile:
		return c.UpdateFile(ctx, id, entity.FilePatch{ClearInTrash: true})
	default:
		return fmt.Errorf("unknown entity kind %v", kind)
	}
}

// SaveContent persists the full serialized content of an entity. It goes
// through the tagged update path, so the store write is rolled back if the
// persistence call fails.
func (c *Catalog) SaveContent(ctx context.Context, kind entity.Kind, id uuid.UUID, data string) error {
	switch kind {
	case entity.KindWorkspace:
		return c.UpdateWorkspace(ctx, id, entity.WorkspacePatch{Data: &data})
	case entity.KindFolder:
		return c.UpdateFolder(ctx, id, entity.FolderPatch{Data: &data})
	case entity.KindFile:
		return c.UpdateFile(ctx, id, entity.FilePatch{Data: &data})
	default:
		return fmt.Errorf("unknown entity kind %v", kind)
	}
}

// --- Structural refresh ---

// RefreshWorkspaces refetches the whole visible catalog and replaces the
// store's collections. Used when membership events change which workspaces
// are visible at all.
func (c *Catalog) RefreshWorkspaces(ctx context.Context) error {
	if c.fetcher == nil {
		return nil
	}
	workspaces, err := c.fetcher.FetchWorkspaces(ctx)
	if err != nil {
		return fmt.Errorf("refresh workspaces: %w", err)
	}
	c.store.SetWorkspaces(workspaces)
	for _, w := range workspaces {
		folders, err := c.fetcher.FetchFolders(ctx, w.Id)
		if err != nil {
			return fmt.Errorf("refresh folders for workspace %s: %w", w.Id, err)
		}
		if err := c.store.SetFolders(w.Id, folders); err != nil {
			return err
		}
		for _, f := range folders {
			files, err := c.fetcher.FetchFiles(ctx, f.Id)
			if err != nil {
				return fmt.Errorf("refresh files for folder %s: %w", f.Id, err)
			}
			if err := c.store.SetFiles(f.Id, files); err != nil {
				return err
			}
		}
	}
	return nil
}
