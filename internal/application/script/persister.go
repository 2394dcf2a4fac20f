package script

import (
	"context"

	"z-script-ai-api/internal/domain/entity"
	"z-script-ai-api/internal/domain/repository"
	apperrors "z-script-ai-api/pkg/errors"
	"z-script-ai-api/pkg/logger"
)

// Persister 将生成结果整体写入剧本存储
type Persister struct {
	repo repository.ScriptRepository
}

func NewPersister(repo repository.ScriptRepository) *Persister {
	return &Persister{repo: repo}
}

// Persist 构建剧本记录并原子写入；失败返回 PERSISTENCE_FAILED
func (p *Persister) Persist(ctx context.Context, ownerID, text string, params entity.GenerationParams) (*entity.ScriptRecord, error) {
	record := entity.NewScriptRecord(ownerID, ExtractTitle(text), text, params.Criteria.CharacterCount, params)
	if err := p.repo.Insert(ctx, record); err != nil {
		logger.Error(ctx, "failed to persist script", err, "owner_id", ownerID)
		return nil, apperrors.Wrap(err, apperrors.CodePersistenceFailed, "failed to save the generated script")
	}

	ctx = logger.WithContext(ctx, logger.ScriptIDKey, record.ID)
	logger.Info(ctx, "script persisted", "title", record.Title, "characters", record.CharacterCount)
	return record, nil
}
