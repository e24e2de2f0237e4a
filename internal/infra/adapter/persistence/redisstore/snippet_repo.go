// Package redisstore keeps code snippets as JSON documents in Redis.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"my-ankode/internal/domain/entity"
	"my-ankode/internal/repository"

	"github.com/redis/go-redis/v9"
)

const (
	snippetKeyPrefix      = "snippet:"       // snippet:{id} -> JSON document
	ownerSnippetSetPrefix = "snippet:owner:" // snippet:owner:{owner_id} -> set of snippet IDs
)

// SnippetRepo stores snippets without expiry. The document lives under
// snippet:{id}; the owner set is an index used only for listing.
type SnippetRepo struct {
	client *redis.Client
}

func NewSnippetRepo(client *redis.Client) repository.SnippetRepository {
	return &SnippetRepo{client: client}
}

func (r *SnippetRepo) snippetKey(id string) string {
	return snippetKeyPrefix + id
}

func (r *SnippetRepo) ownerSetKey(ownerID string) string {
	return ownerSnippetSetPrefix + ownerID
}

func (r *SnippetRepo) Get(ctx context.Context, id string) (*entity.Snippet, error) {
	data, err := r.client.Get(ctx, r.snippetKey(id)).Bytes()
	if err == redis.Nil {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get snippet: %w", err)
	}

	var s entity.Snippet
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal snippet: %w", err)
	}
	return &s, nil
}

// ListByOwner returns the owner's snippets, most recently updated first.
// IDs left in the index without a document are skipped.
func (r *SnippetRepo) ListByOwner(ctx context.Context, ownerID string) ([]*entity.Snippet, error) {
	ids, err := r.client.SMembers(ctx, r.ownerSetKey(ownerID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list snippet ids: %w", err)
	}
	if len(ids) == 0 {
		return []*entity.Snippet{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.snippetKey(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load snippets: %w", err)
	}

	snippets := make([]*entity.Snippet, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var s entity.Snippet
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			return nil, fmt.Errorf("unmarshal snippet: %w", err)
		}
		snippets = append(snippets, &s)
	}

	sort.Slice(snippets, func(i, j int) bool {
		if snippets[i].UpdatedAt.Equal(snippets[j].UpdatedAt) {
			return snippets[i].ID < snippets[j].ID
		}
		return snippets[i].UpdatedAt.After(snippets[j].UpdatedAt)
	})
	return snippets, nil
}

// Create stores a new snippet. It returns entity.ErrConflict when the ID is taken.
func (r *SnippetRepo) Create(ctx context.Context, s *entity.Snippet) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal snippet: %w", err)
	}

	key := r.snippetKey(s.ID)
	// The document and its owner index are written in one MULTI. WATCH turns
	// a concurrent write of the same ID into a failed transaction.
	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return entity.ErrConflict
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			pipe.SAdd(ctx, r.ownerSetKey(s.OwnerID), s.ID)
			return nil
		})
		return err
	}, key)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, entity.ErrConflict), errors.Is(err, redis.TxFailedErr):
		return entity.ErrConflict
	default:
		return fmt.Errorf("create snippet: %w", err)
	}
}

// Update replaces an existing snippet document.
func (r *SnippetRepo) Update(ctx context.Context, s *entity.Snippet) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal snippet: %w", err)
	}

	// SET XX only writes when the key exists.
	ok, err := r.client.SetXX(ctx, r.snippetKey(s.ID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("update snippet: %w", err)
	}
	if !ok {
		return entity.ErrNotFound
	}
	return nil
}

func (r *SnippetRepo) Delete(ctx context.Context, id string) error {
	existing, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.snippetKey(id))
	pipe.SRem(ctx, r.ownerSetKey(existing.OwnerID), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete snippet: %w", err)
	}
	return nil
}
