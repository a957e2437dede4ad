package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"collab-workspace-be/internal/entity"
	"collab-workspace-be/internal/pkg/logger"
	"collab-workspace-be/internal/session"
	"collab-workspace-be/internal/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBackend = errors.New("backend unavailable")

// fakePersistence records calls and fails whole operation groups on demand.
type fakePersistence struct {
	failCreates bool
	failUpdates bool
	failDeletes bool

	createdWorkspaces []entity.Workspace
	updatedWorkspaces []entity.WorkspacePatch
	createdFolders    []entity.Folder
	createdFiles      []entity.File
	updatedFiles      []entity.FilePatch
	deletes           int
}

func (p *fakePersistence) CreateWorkspace(_ context.Context, w entity.Workspace) error {
	if p.failCreates {
		return errBackend
	}
	p.createdWorkspaces = append(p.createdWorkspaces, w)
	return nil
}

func (p *fakePersistence) UpdateWorkspace(_ context.Context, _ uuid.UUID, patch entity.WorkspacePatch) error {
	if p.failUpdates {
		return errBackend
	}
	p.updatedWorkspaces = append(p.updatedWorkspaces, patch)
	return nil
}

func (p *fakePersistence) DeleteWorkspace(context.Context, uuid.UUID) error {
	if p.failDeletes {
		return errBackend
	}
	p.deletes++
	return nil
}

func (p *fakePersistence) CreateFolder(_ context.Context, f entity.Folder) error {
	if p.failCreates {
		return errBackend
	}
	p.createdFolders = append(p.createdFolders, f)
	return nil
}

func (p *fakePersistence) UpdateFolder(_ context.Context, _ uuid.UUID, _ entity.FolderPatch) error {
	if p.failUpdates {
		return errBackend
	}
	return nil
}

func (p *fakePersistence) DeleteFolder(context.Context, uuid.UUID) error {
	if p.failDeletes {
		return errBackend
	}
	p.deletes++
	return nil
}

func (p *fakePersistence) CreateFile(_ context.Context, f entity.File) error {
	if p.failCreates {
		return errBackend
	}
	p.createdFiles = append(p.createdFiles, f)
	return nil
}

func (p *fakePersistence) UpdateFile(_ context.Context, _ uuid.UUID, patch entity.FilePatch) error {
	if p.failUpdates {
		return errBackend
	}
	p.updatedFiles = append(p.updatedFiles, patch)
	return nil
}

func (p *fakePersistence) DeleteFile(context.Context, uuid.UUID) error {
	if p.failDeletes {
		return errBackend
	}
	p.deletes++
	return nil
}

func seedCatalog(t *testing.T) (*store.TreeStore, entity.Workspace, entity.Folder, entity.File) {
	t.Helper()
	s := store.NewTreeStore()
	base := time.Now()
	w := entity.Workspace{Id: uuid.New(), Title: "workspace", CreatedAt: base}
	_, err := s.AddWorkspace(w)
	require.NoError(t, err)
	f := entity.Folder{Id: uuid.New(), WorkspaceId: w.Id, Title: "folder", CreatedAt: base.Add(time.Second)}
	_, err = s.AddFolder(f)
	require.NoError(t, err)
	file := entity.File{Id: uuid.New(), WorkspaceId: w.Id, FolderId: f.Id, Title: "file", CreatedAt: base.Add(2 * time.Second)}
	_, err = s.AddFile(file)
	require.NoError(t, err)
	return s, w, f, file
}

func TestCreateWorkspaceTagsMutation(t *testing.T) {
	s := store.NewTreeStore()
	mutation := session.NewMutation()
	persist := &fakePersistence{}
	catalog := NewCatalog(s, mutation, persist, nil, logger.Nop{})

	w := entity.Workspace{Id: uuid.New(), Title: "tagged", CreatedAt: time.Now()}
	require.NoError(t, catalog.CreateWorkspace(context.Background(), w))

	require.Len(t, persist.createdWorkspaces, 1)
	sent := persist.createdWorkspaces[0]
	require.NotNil(t, sent.LastModifiedBy)
	assert.Equal(t, mutation.Current(), *sent.LastModifiedBy)

	stored, ok := s.Workspace(w.Id)
	require.True(t, ok)
	require.NotNil(t, stored.LastModifiedBy)
	assert.Equal(t, mutation.Current(), *stored.LastModifiedBy)
}

func TestCreateWorkspaceRollsBackOnFailure(t *testing.T) {
	s := store.NewTreeStore()
	catalog := NewCatalog(s, session.NewMutation(), &fakePersistence{failCreates: true}, nil, logger.Nop{})

	w := entity.Workspace{Id: uuid.New(), Title: "doomed", CreatedAt: time.Now()}
	err := catalog.CreateWorkspace(context.Background(), w)
	require.ErrorIs(t, err, errBackend)

	_, ok := s.Workspace(w.Id)
	assert.False(t, ok, "optimistic insert not rolled back")
}

func TestUpdateWorkspaceRollsBackToExactPriorValue(t *testing.T) {
	s, w, _, _ := seedCatalog(t)
	catalog := NewCatalog(s, session.NewMutation(), &fakePersistence{failUpdates: true}, nil, logger.Nop{})

	before, _ := s.Workspace(w.Id)
	title := "renamed"
	err := catalog.UpdateWorkspace(context.Background(), w.Id, entity.WorkspacePatch{Title: &title})
	require.ErrorIs(t, err, errBackend)

	after, ok := s.Workspace(w.Id)
	require.True(t, ok)
	assert.Equal(t, before, after, "rollback must restore the exact prior value")
}

func TestUpdateUnknownWorkspace(t *testing.T) {
	s := store.NewTreeStore()
	catalog := NewCatalog(s, session.NewMutation(), &fakePersistence{}, nil, logger.Nop{})

	title := "x"
	err := catalog.UpdateWorkspace(context.Background(), uuid.New(), entity.WorkspacePatch{Title: &title})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteWorkspaceRollsBackCascade(t *testing.T) {
	s, w, folder, file := seedCatalog(t)
	catalog := NewCatalog(s, session.NewMutation(), &fakePersistence{failDeletes: true}, nil, logger.Nop{})

	err := catalog.DeleteWorkspace(context.Background(), w.Id)
	require.ErrorIs(t, err, errBackend)

	_, ok := s.Workspace(w.Id)
	assert.True(t, ok, "workspace not restored")
	_, ok = s.Folder(folder.Id)
	assert.True(t, ok, "cascaded folder not restored")
	_, ok = s.File(file.Id)
	assert.True(t, ok, "cascaded file not restored")
}

func TestDeleteFileRollback(t *testing.T) {
	s, _, _, file := seedCatalog(t)
	catalog := NewCatalog(s, session.NewMutation(), &fakePersistence{failDeletes: true}, nil, logger.Nop{})

	before, _ := s.File(file.Id)
	err := catalog.DeleteFile(context.Background(), file.Id)
	require.ErrorIs(t, err, errBackend)

	after, ok := s.File(file.Id)
	require.True(t, ok)
	assert.Equal(t, before, after)
}

func TestMoveToTrashAndRestore(t *testing.T) {
	s, _, _, file := seedCatalog(t)
	persist := &fakePersistence{}
	catalog := NewCatalog(s, session.NewMutation(), persist, nil, logger.Nop{})

	require.NoError(t, catalog.MoveToTrash(context.Background(), entity.KindFile, file.Id, "cleanup"))
	got, _ := s.File(file.Id)
	require.NotNil(t, got.InTrash)
	assert.Equal(t, "cleanup", *got.InTrash)

	require.NoError(t, catalog.RestoreFromTrash(context.Background(), entity.KindFile, file.Id))
	got, _ = s.File(file.Id)
	assert.Nil(t, got.InTrash)
}

func TestSaveContentWritesData(t *testing.T) {
	s, _, _, file := seedCatalog(t)
	persist := &fakePersistence{}
	catalog := NewCatalog(s, session.NewMutation(), persist, nil, logger.Nop{})

	payload := `{"ops":[{"insert":"hello"}]}`
	require.NoError(t, catalog.SaveContent(context.Background(), entity.KindFile, file.Id, payload))

	got, _ := s.File(file.Id)
	assert.Equal(t, payload, got.Data)
	require.Len(t, persist.updatedFiles, 1)
	require.NotNil(t, persist.updatedFiles[0].Data)
	assert.Equal(t, payload, *persist.updatedFiles[0].Data)
}

func TestSaveContentRollsBackOnFailure(t *testing.T) {
	s, _, _, file := seedCatalog(t)
	catalog := NewCatalog(s, session.NewMutation(), &fakePersistence{failUpdates: true}, nil, logger.Nop{})

	before, _ := s.File(file.Id)
	err := catalog.SaveContent(context.Background(), entity.KindFile, file.Id, "contents")
	require.ErrorIs(t, err, errBackend)

	after, _ := s.File(file.Id)
	assert.Equal(t, before, after)
}

// fakeFetcher serves a fixed snapshot for structural refreshes.
type fakeFetcher struct {
	workspaces []entity.Workspace
	folders    map[uuid.UUID][]entity.Folder
	files      map[uuid.UUID][]entity.File
}

func (f *fakeFetcher) FetchWorkspaces(context.Context) ([]entity.Workspace, error) {
	return f.workspaces, nil
}

func (f *fakeFetcher) FetchFolders(_ context.Context, workspaceID uuid.UUID) ([]entity.Folder, error) {
	return f.folders[workspaceID], nil
}

func (f *fakeFetcher) FetchFiles(_ context.Context, folderID uuid.UUID) ([]entity.File, error) {
	return f.files[folderID], nil
}

func TestRefreshWorkspacesReplacesCatalog(t *testing.T) {
	s, oldW, _, _ := seedCatalog(t)

	newW := entity.Workspace{Id: uuid.New(), Title: "fresh", CreatedAt: time.Now()}
	newFolder := entity.Folder{Id: uuid.New(), WorkspaceId: newW.Id, Title: "f", CreatedAt: time.Now()}
	newFile := entity.File{Id: uuid.New(), WorkspaceId: newW.Id, FolderId: newFolder.Id, Title: "doc", CreatedAt: time.Now()}
	fetcher := &fakeFetcher{
		workspaces: []entity.Workspace{newW},
		folders:    map[uuid.UUID][]entity.Folder{newW.Id: {newFolder}},
		files:      map[uuid.UUID][]entity.File{newFolder.Id: {newFile}},
	}
	catalog := NewCatalog(s, session.NewMutation(), &fakePersistence{}, fetcher, logger.Nop{})

	require.NoError(t, catalog.RefreshWorkspaces(context.Background()))

	_, ok := s.Workspace(oldW.Id)
	assert.False(t, ok, "stale workspace survived refresh")
	_, ok = s.Workspace(newW.Id)
	assert.True(t, ok)
	_, ok = s.File(newFile.Id)
	assert.True(t, ok)
}
