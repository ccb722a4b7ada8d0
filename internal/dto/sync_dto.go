package dto

import (
	"time"

	"github.com/google/uuid"
)

// PublishSyncJobMessage is the queue payload for an async sync run.
type PublishSyncJobMessage struct {
	UserId    uuid.UUID `json:"user_id"`
	SourceTag string    `json:"source_tag"`
}

type TriggerSyncRequest struct {
	SourceTag string `json:"source_tag" validate:"required,oneof=twitter reddit pocket"`
}

type SyncResultResponse struct {
	Status       string `json:"status"` // completed | failed | queued
	Mode         string `json:"mode,omitempty"`
	ItemsAdded   int    `json:"items_added"`
	ItemsRemoved int    `json:"items_removed"`
	ItemsSkipped int    `json:"items_skipped"`
	Reason       string `json:"reason,omitempty"`
}

type SyncStatusResponse struct {
	SourceTag              string     `json:"source_tag"`
	LastDeltaCursor        int64      `json:"last_delta_cursor"`
	LastFullReconciliation *time.Time `json:"last_full_reconciliation,omitempty"`
	SyncCounter            int        `json:"sync_counter"`
	LastRunStatus          string     `json:"last_run_status,omitempty"`
	LastRunError           string     `json:"last_run_error,omitempty"`
}

// UploadEntryDTO is one parsed row of a Pocket export. The transport
// layer parses the file; the core only sees deserialized entries.
type UploadEntryDTO struct {
	ItemId  string   `json:"item_id,omitempty"`
	Title   string   `json:"title,omitempty"`
	Excerpt string   `json:"excerpt,omitempty"`
	URL     string   `json:"url" validate:"required,url"`
	AddedAt int64    `json:"added_at,omitempty"` // unix milliseconds
	Tags    []string `json:"tags,omitempty"`
}

type UploadSnapshotRequest struct {
	Entries []UploadEntryDTO `json:"entries" validate:"required,min=1,dive"`
}
