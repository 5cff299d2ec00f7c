package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/uday68/VyaparMitra-sub000/internal/domain/voiceflow"
	"github.com/uday68/VyaparMitra-sub000/internal/infra"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const workflowPrefix = "voiceflow:"

// WorkflowStore keeps voice workflow sessions in Redis. The key TTL is the
// sliding workflow window: every save resets it, and a session that lapsed
// without a transition is simply absent on the next lookup.
type WorkflowStore struct {
	rdb *redis.Client
}

func NewWorkflowStore(rdb *redis.Client) *WorkflowStore {
	return &WorkflowStore{rdb: rdb}
}

func workflowKey(userID uuid.UUID) string {
	return workflowPrefix + userID.String()
}

// Find returns (nil, nil) when no live session exists for the user.
func (s *WorkflowStore) Find(ctx context.Context, userID uuid.UUID) (*voiceflow.Session, error) {
	data, err := s.rdb.Get(ctx, workflowKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to load workflow session", err)
	}

	var sess voiceflow.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to unmarshal workflow session", err)
	}
	return &sess, nil
}

func (s *WorkflowStore) Save(ctx context.Context, sess *voiceflow.Session, ttl time.Duration) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to marshal workflow session", err)
	}
	if err := s.rdb.Set(ctx, workflowKey(sess.UserID), data, ttl).Err(); err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to save workflow session", err)
	}
	return nil
}

func (s *WorkflowStore) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := s.rdb.Del(ctx, workflowKey(userID)).Err(); err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to delete workflow session", err)
	}
	return nil
}
