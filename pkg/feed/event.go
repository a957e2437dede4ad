package feed

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType mirrors the change-data-capture event kinds.
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// Table identifies which catalog table a change event belongs to.
type Table string

const (
	TableWorkspaces    Table = "workspaces"
	TableFolders       Table = "folders"
	TableFiles         Table = "files"
	TableCollaborators Table = "collaborators"
)

// Tables lists every table the reconciler folds.
func Tables() []Table {
	return []Table{TableWorkspaces, TableFolders, TableFiles, TableCollaborators}
}

// Row is a full-row snapshot as carried by the feed. It is the superset of
// the catalog tables' columns; fields that do not apply to a table are nil.
// Events are self-contained: correctness never depends on delivery order.
type Row struct {
	Id             uuid.UUID  `json:"id"`
	Title          string     `json:"title,omitempty"`
	IconId         string     `json:"icon_id,omitempty"`
	Data           *string    `json:"data,omitempty"`
	InTrash        *string    `json:"in_trash,omitempty"`
	Logo           *string    `json:"logo,omitempty"`
	BannerUrl      *string    `json:"banner_url,omitempty"`
	WorkspaceOwner *uuid.UUID `json:"workspace_owner,omitempty"`
	WorkspaceId    *uuid.UUID `json:"workspace_id,omitempty"`
	FolderId       *uuid.UUID `json:"folder_id,omitempty"`
	UserId         *uuid.UUID `json:"user_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	LastModifiedBy *uuid.UUID `json:"last_modified_by,omitempty"`
}

// ChangeEvent is one committed row mutation. New is set for INSERT/UPDATE,
// Old for UPDATE/DELETE.
type ChangeEvent struct {
	Table Table     `json:"table"`
	Type  EventType `json:"event_type"`
	New   *Row      `json:"new,omitempty"`
	Old   *Row      `json:"old,omitempty"`
	At    time.Time `json:"at"`
}

// Actor extracts the mutation tag responsible for the event:
// New.LastModifiedBy for insert/update, Old.LastModifiedBy for delete.
func (e ChangeEvent) Actor() *uuid.UUID {
	if e.Type != EventDelete && e.New != nil {
		return e.New.LastModifiedBy
	}
	if e.Old != nil {
		return e.Old.LastModifiedBy
	}
	return nil
}

// Handler processes one change event. Handlers must tolerate duplicate and
// out-of-order delivery.
type Handler func(ctx context.Context, event ChangeEvent)

// Bus is the change-feed transport contract. Publish delivers a committed
// mutation to all subscribers; Subscribe registers a handler for every
// catalog table. Reconnection is the transport's responsibility.
type Bus interface {
	Publish(ctx context.Context, event ChangeEvent) error
	Subscribe(ctx context.Context, handler Handler) error
	Close() error
}
