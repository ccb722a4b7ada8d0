package mapper

import (
	"ai-recall-be/internal/entity"
	"ai-recall-be/internal/model"
)

type SyncStateMapper struct{}

func NewSyncStateMapper() *SyncStateMapper {
	return &SyncStateMapper{}
}

func (m *SyncStateMapper) ToEntity(s *model.SyncState) *entity.SyncState {
	if s == nil {
		return nil
	}
	return &entity.SyncState{
		Id:                     s.Id,
		UserId:                 s.UserId,
		SourceTag:              s.SourceTag,
		LastDeltaCursor:        s.LastDeltaCursor,
		LastFullReconciliation: s.LastFullReconciliation,
		SyncCounter:            s.SyncCounter,
		CredentialRef:          s.CredentialRef,
		LastRunStatus:          s.LastRunStatus,
		LastRunError:           s.LastRunError,
		CreatedAt:              s.CreatedAt,
		UpdatedAt:              s.UpdatedAt,
	}
}

func (m *SyncStateMapper) ToModel(s *entity.SyncState) *model.SyncState {
	if s == nil {
		return nil
	}
	return &model.SyncState{
		Id:                     s.Id,
		UserId:                 s.UserId,
		SourceTag:              s.SourceTag,
		LastDeltaCursor:        s.LastDeltaCursor,
		LastFullReconciliation: s.LastFullReconciliation,
		SyncCounter:            s.SyncCounter,
		CredentialRef:          s.CredentialRef,
		LastRunStatus:          s.LastRunStatus,
		LastRunError:           s.LastRunError,
		CreatedAt:              s.CreatedAt,
		UpdatedAt:              s.UpdatedAt,
	}
}
