package store

import (
	"errors"
	"sort"
	"sync"

	"collab-workspace-be/internal/entity"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("entity not found in tree store")
	ErrParentNotFound    = errors.New("parent entity not found in tree store")
	ErrWorkspaceMismatch = errors.New("file folder belongs to a different workspace")
)

// TreeStore is the client-held source of truth for the currently known
// catalog. Entities live in an arena keyed by id with parent back-references;
// child lists are computed on demand via index lookup and sorted by CreatedAt
// ascending, so display order is stable regardless of network arrival order.
//
// Mutators are synchronous and never perform I/O. They exist purely to keep
// local state consistent; callers are responsible for passing well-formed
// entities.
type TreeStore struct {
	mu sync.RWMutex

	workspaces map[uuid.UUID]*entity.Workspace
	folders    map[uuid.UUID]*entity.Folder
	files      map[uuid.UUID]*entity.File

	foldersByWorkspace map[uuid.UUID]map[uuid.UUID]struct{}
	filesByFolder      map[uuid.UUID]map[uuid.UUID]struct{}
}

// Removed captures everything evicted by a cascade delete, so an optimistic
// delete can be rolled back if the persistence call fails.
type Removed struct {
	Workspaces []entity.Workspace
	Folders    []entity.Folder
	Files      []entity.File
}

func NewTreeStore() *TreeStore {
	s := &TreeStore{}
	s.resetLocked()
	return s
}

func (s *TreeStore) resetLocked() {
	s.workspaces = make(map[uuid.UUID]*entity.Workspace)
	s.folders = make(map[uuid.UUID]*entity.Folder)
	s.files = make(map[uuid.UUID]*entity.File)
	s.foldersByWorkspace = make(map[uuid.UUID]map[uuid.UUID]struct{})
	s.filesByFolder = make(map[uuid.UUID]map[uuid.UUID]struct{})
}

// Reset drops the whole catalog, e.g. on logout.
func (s *TreeStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

// --- Selectors ---

// Workspace returns the full workspace, including the heavy Data field.
func (s *TreeStore) Workspace(id uuid.UUID) (entity.Workspace, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.workspaces[id]
	if !ok {
		return entity.Workspace{}, false
	}
	return *w, true
}

// WorkspaceShallow returns the workspace with Data omitted, for list views.
func (s *TreeStore) WorkspaceShallow(id uuid.UUID) (entity.Workspace, bool) {
	w, ok := s.Workspace(id)
	w.Data = ""
	return w, ok
}

// Workspaces lists all known workspaces sorted by CreatedAt ascending.
func (s *TreeStore) Workspaces() []entity.Workspace {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.Workspace, 0, len(s.workspaces))
	for _, w := range s.workspaces {
		out = append(out, *w)
	}
	sortByCreatedAt(out, func(w entity.Workspace) int64 { return w.CreatedAt.UnixNano() })
	return out
}

func (s *TreeStore) Folder(id uuid.UUID) (entity.Folder, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.folders[id]
	if !ok {
		return entity.Folder{}, false
	}
	return *f, true
}

func (s *TreeStore) FolderShallow(id uuid.UUID) (entity.Folder, bool) {
	f, ok := s.Folder(id)
	f.Data = ""
	return f, ok
}

// Folders lists a workspace's folders sorted by CreatedAt ascending.
func (s *TreeStore) Folders(workspaceID uuid.UUID) []entity.Folder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.foldersByWorkspace[workspaceID]
	out := make([]entity.Folder, 0, len(ids))
	for id := range ids {
		out = append(out, *s.folders[id])
	}
	sortByCreatedAt(out, func(f entity.Folder) int64 { return f.CreatedAt.UnixNano() })
	return out
}

func (s *TreeStore) File(id uuid.UUID) (entity.File, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[id]
	if !ok {
		return entity.File{}, false
	}
	return *f, true
}

func (s *TreeStore) FileShallow(id uuid.UUID) (entity.File, bool) {
	f, ok := s.File(id)
	f.Data = ""
	return f, ok
}

// Files lists a folder's files sorted by CreatedAt ascending.
func (s *TreeStore) Files(folderID uuid.UUID) []entity.File {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.filesByFolder[folderID]
	out := make([]entity.File, 0, len(ids))
	for id := range ids {
		out = append(out, *s.files[id])
	}
	sortByCreatedAt(out, func(f entity.File) int64 { return f.CreatedAt.UnixNano() })
	return out
}

// --- Workspace mutators ---

// SetWorkspaces replaces the whole workspace collection. Workspaces no
// longer present cascade removal of their folders and files.
func (s *TreeStore) SetWorkspaces(workspaces []entity.Workspace) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keep := make(map[uuid.UUID]struct{}, len(workspaces))
	for _, w := range workspaces {
		keep[w.Id] = struct{}{}
	}
	for id := range s.workspaces {
		if _, ok := keep[id]; !ok {
			s.deleteWorkspaceLocked(id)
		}
	}
	for i := range workspaces {
		w := workspaces[i]
		s.workspaces[w.Id] = &w
		if s.foldersByWorkspace[w.Id] == nil {
			s.foldersByWorkspace[w.Id] = make(map[uuid.UUID]struct{})
		}
	}
}

// AddWorkspace upserts a workspace by id.
func (s *TreeStore) AddWorkspace(w entity.Workspace) (entity.Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workspaces[w.Id] = &w
	if s.foldersByWorkspace[w.Id] == nil {
		s.foldersByWorkspace[w.Id] = make(map[uuid.UUID]struct{})
	}
	return w, nil
}

func (s *TreeStore) UpdateWorkspace(id uuid.UUID, patch entity.WorkspacePatch) (entity.Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workspaces[id]
	if !ok {
		return entity.Workspace{}, ErrNotFound
	}
	applyWorkspacePatch(w, patch)
	return *w, nil
}

// DeleteWorkspace removes the workspace and cascades removal of its folders
// and, transitively, their files, mirroring the persistence-layer cascade.
func (s *TreeStore) DeleteWorkspace(id uuid.UUID) (Removed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workspaces[id]; !ok {
		return Removed{}, ErrNotFound
	}
	return s.deleteWorkspaceLocked(id), nil
}

func (s *TreeStore) deleteWorkspaceLocked(id uuid.UUID) Removed {
	removed := Removed{}
	if w, ok := s.workspaces[id]; ok {
		removed.Workspaces = append(removed.Workspaces, *w)
	}
	for folderID := range s.foldersByWorkspace[id] {
		sub := s.deleteFolderLocked(folderID)
		removed.Folders = append(removed.Folders, sub.Folders...)
		removed.Files = append(removed.Files, sub.Files...)
	}
	delete(s.foldersByWorkspace, id)
	delete(s.workspaces, id)
	return removed
}

// --- Folder mutators ---

// SetFolders replaces a workspace's folder collection. Folders no longer
// present cascade removal of their files; files of surviving folders are
// kept untouched.
func (s *TreeStore) SetFolders(workspaceID uuid.UUID, folders []entity.Folder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workspaces[workspaceID]; !ok {
		return ErrParentNotFound
	}

	keep := make(map[uuid.UUID]struct{}, len(folders))
	for _, f := range folders {
		keep[f.Id] = struct{}{}
	}
	for id := range s.foldersByWorkspace[workspaceID] {
		if _, ok := keep[id]; !ok {
			s.deleteFolderLocked(id)
		}
	}
	for i := range folders {
		f := folders[i]
		f.WorkspaceId = workspaceID
		s.putFolderLocked(&f)
	}
	return nil
}

// AddFolder upserts a folder by id. The parent workspace must be known.
func (s *TreeStore) AddFolder(f entity.Folder) (entity.Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workspaces[f.WorkspaceId]; !ok {
		return entity.Folder{}, ErrParentNotFound
	}
	s.putFolderLocked(&f)
	return f, nil
}

func (s *TreeStore) putFolderLocked(f *entity.Folder) {
	clone := *f
	s.folders[clone.Id] = &clone
	if s.foldersByWorkspace[clone.WorkspaceId] == nil {
		s.foldersByWorkspace[clone.WorkspaceId] = make(map[uuid.UUID]struct{})
	}
	s.foldersByWorkspace[clone.WorkspaceId][clone.Id] = struct{}{}
	if s.filesByFolder[clone.Id] == nil {
		s.filesByFolder[clone.Id] = make(map[uuid.UUID]struct{})
	}
}

func (s *TreeStore) UpdateFolder(id uuid.UUID, patch entity.FolderPatch) (entity.Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.folders[id]
	if !ok {
		return entity.Folder{}, ErrNotFound
	}
	applyFolderPatch(f, patch)
	return *f, nil
}

// DeleteFolder removes the folder and cascades removal of its files.
func (s *TreeStore) DeleteFolder(id uuid.UUID) (Removed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.folders[id]; !ok {
		return Removed{}, ErrNotFound
	}
	return s.deleteFolderLocked(id), nil
}

func (s *TreeStore) deleteFolderLocked(id uuid.UUID) Removed {
	removed := Removed{}
	f, ok := s.folders[id]
	if !ok {
		return removed
	}
	removed.Folders = append(removed.Folders, *f)
	for fileID := range s.filesByFolder[id] {
		removed.Files = append(removed.Files, *s.files[fileID])
		delete(s.files, fileID)
	}
	delete(s.filesByFolder, id)
	if idx, ok := s.foldersByWorkspace[f.WorkspaceId]; ok {
		delete(idx, id)
	}
	delete(s.folders, id)
	return removed
}

// --- File mutators ---

// SetFiles replaces a folder's file collection.
func (s *TreeStore) SetFiles(folderID uuid.UUID, files []entity.File) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	folder, ok := s.folders[folderID]
	if !ok {
		return ErrParentNotFound
	}

	keep := make(map[uuid.UUID]struct{}, len(files))
	for _, f := range files {
		keep[f.Id] = struct{}{}
	}
	for id := range s.filesByFolder[folderID] {
		if _, ok := keep[id]; !ok {
			delete(s.files, id)
			delete(s.filesByFolder[folderID], id)
		}
	}
	for i := range files {
		f := files[i]
		f.FolderId = folderID
		f.WorkspaceId = folder.WorkspaceId
		s.putFileLocked(&f)
	}
	return nil
}

// AddFile upserts a file by id. The parent folder must be known and must
// belong to the file's workspace.
func (s *TreeStore) AddFile(f entity.File) (entity.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	folder, ok := s.folders[f.FolderId]
	if !ok {
		return entity.File{}, ErrParentNotFound
	}
	if folder.WorkspaceId != f.WorkspaceId {
		return entity.File{}, ErrWorkspaceMismatch
	}
	s.putFileLocked(&f)
	return f, nil
}

func (s *TreeStore) putFileLocked(f *entity.File) {
	clone := *f
	s.files[clone.Id] = &clone
	if s.filesByFolder[clone.FolderId] == nil {
		s.filesByFolder[clone.FolderId] = make(map[uuid.UUID]struct{})
	}
	s.filesByFolder[clone.FolderId][clone.Id] = struct{}{}
}

func (s *TreeStore) UpdateFile(id uuid.UUID, patch entity.FilePatch) (entity.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[id]
	if !ok {
		return entity.File{}, ErrNotFound
	}
	applyFilePatch(f, patch)
	return *f, nil
}

func (s *TreeStore) DeleteFile(id uuid.UUID) (entity.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[id]
	if !ok {
		return entity.File{}, ErrNotFound
	}
	removed := *f
	if idx, ok := s.filesByFolder[f.FolderId]; ok {
		delete(idx, id)
	}
	delete(s.files, id)
	return removed, nil
}

// RestoreRemoved puts a cascade-deleted subtree back, parents first. Used to
// roll back an optimistic delete whose persistence call failed.
func (s *TreeStore) RestoreRemoved(r Removed) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range r.Workspaces {
		w := r.Workspaces[i]
		s.workspaces[w.Id] = &w
		if s.foldersByWorkspace[w.Id] == nil {
			s.foldersByWorkspace[w.Id] = make(map[uuid.UUID]struct{})
		}
	}
	for i := range r.Folders {
		s.putFolderLocked(&r.Folders[i])
	}
	for i := range r.Files {
		s.putFileLocked(&r.Files[i])
	}
}

// --- helpers ---

func sortByCreatedAt[T any](items []T, key func(T) int64) {
	sort.SliceStable(items, func(i, j int) bool {
		return key(items[i]) < key(items[j])
	})
}

func applyWorkspacePatch(w *entity.Workspace, p entity.WorkspacePatch) {
	if p.Title != nil {
		w.Title = *p.Title
	}
	if p.IconId != nil {
		w.IconId = *p.IconId
	}
	if p.Data != nil {
		w.Data = *p.Data
	}
	if p.InTrash != nil {
		w.InTrash = p.InTrash
	}
	if p.ClearInTrash {
		w.InTrash = nil
	}
	if p.Logo != nil {
		w.Logo = p.Logo
	}
	if p.BannerUrl != nil {
		w.BannerUrl = p.BannerUrl
	}
	if p.WorkspaceOwner != nil {
		w.WorkspaceOwner = *p.WorkspaceOwner
	}
	if p.UpdatedAt != nil {
		w.UpdatedAt = *p.UpdatedAt
	}
	if p.LastModifiedBy != nil {
		w.LastModifiedBy = p.LastModifiedBy
	}
}

func applyFolderPatch(f *entity.Folder, p entity.FolderPatch) {
	if p.Title != nil {
		f.Title = *p.Title
	}
	if p.IconId != nil {
		f.IconId = *p.IconId
	}
	if p.Data != nil {
		f.Data = *p.Data
	}
	if p.InTrash != nil {
		f.InTrash = p.InTrash
	}
	if p.ClearInTrash {
		f.InTrash = nil
	}
	if p.BannerUrl != nil {
		f.BannerUrl = p.BannerUrl
	}
	if p.UpdatedAt != nil {
		f.UpdatedAt = *p.UpdatedAt
	}
	if p.LastModifiedBy != nil {
		f.LastModifiedBy = p.LastModifiedBy
	}
}

func applyFilePatch(f *entity.File, p entity.FilePatch) {
	if p.Title != nil {
		f.Title = *p.Title
	}
	if p.IconId != nil {
		f.IconId = *p.IconId
	}
	if p.Data != nil {
		f.Data = *p.Data
	}
	if p.InTrash != nil {
		f.InTrash = p.InTrash
	}
	if p.ClearInTrash {
		f.InTrash = nil
	}
	if p.BannerUrl != nil {
		f.BannerUrl = p.BannerUrl
	}
	if p.UpdatedAt != nil {
		f.UpdatedAt = *p.UpdatedAt
	}
	if p.LastModifiedBy != nil {
		f.LastModifiedBy = p.LastModifiedBy
	}
}
