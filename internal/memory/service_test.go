package memory

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo is an in-memory Repository for service tests.
type fakeRepo struct {
	records []Record
}

func (f *fakeRepo) Find(_ context.Context, userID, key, memoryType string) (*Record, error) {
	for i := range f.records {
		r := &f.records[i]
		if r.UserID == userID && r.Key == key && r.MemoryType == memoryType {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) Upsert(_ context.Context, userID, key, memoryType string, value json.RawMessage) (*Record, bool, error) {
	for i := range f.records {
		r := &f.records[i]
		if r.UserID == userID && r.Key == key && r.MemoryType == memoryType {
			r.Value = value
			r.UpdatedAt = time.Now()
			return r, false, nil
		}
	}
	rec := Record{
		ID:         uuid.New(),
		UserID:     userID,
		Key:        key,
		Value:      value,
		MemoryType: memoryType,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	f.records = append(f.records, rec)
	return &f.records[len(f.records)-1], true, nil
}

func (f *fakeRepo) DeleteMatching(_ context.Context, userID, pattern string) ([]Record, error) {
	p := strings.ToLower(pattern)
	var removed, kept []Record
	for _, r := range f.records {
		if r.UserID == userID &&
			(strings.Contains(strings.ToLower(r.Key), p) ||
				strings.Contains(strings.ToLower(string(r.Value)), p)) {
			removed = append(removed, r)
		} else {
			kept = append(kept, r)
		}
	}
	f.records = kept
	return removed, nil
}

func (f *fakeRepo) Search(_ context.Context, userID, query string, limit int) ([]Record, error) {
	q := strings.ToLower(query)
	var found []Record
	for _, r := range f.records {
		if len(found) >= limit {
			break
		}
		if r.UserID != userID {
			continue
		}
		if r.MemoryType != TypeLongTerm && r.MemoryType != TypeEntity {
			continue
		}
		if strings.Contains(strings.ToLower(r.Key), q) ||
			strings.Contains(strings.ToLower(string(r.Value)), q) {
			found = append(found, r)
		}
	}
	return found, nil
}

func (f *fakeRepo) ListByUser(_ context.Context, userID, memoryType string) ([]Record, error) {
	var found []Record
	for _, r := range f.records {
		if r.UserID == userID && (memoryType == "" || r.MemoryType == memoryType) {
			found = append(found, r)
		}
	}
	return found, nil
}

func (f *fakeRepo) GetByKey(_ context.Context, userID, key string) (*Record, error) {
	for i := range f.records {
		r := &f.records[i]
		if r.UserID == userID && r.Key == key {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) DeleteByID(_ context.Context, userID string, id uuid.UUID) error {
	for i, r := range f.records {
		if r.UserID == userID && r.ID == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (f *fakeRepo) DeleteByKey(_ context.Context, userID, key string) error {
	deleted := false
	var kept []Record
	for _, r := range f.records {
		if r.UserID == userID && r.Key == key {
			deleted = true
			continue
		}
		kept = append(kept, r)
	}
	if !deleted {
		return ErrNotFound
	}
	f.records = kept
	return nil
}

func seedRecord(t *testing.T, repo *fakeRepo, userID, key, memoryType string, value any) Record {
	t.Helper()
	data, err := json.Marshal(value)
	require.NoError(t, err)
	rec, _, err := repo.Upsert(context.Background(), userID, key, memoryType, data)
	require.NoError(t, err)
	return *rec
}

func TestService_Save(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to long_term", func(t *testing.T) {
		repo := &fakeRepo{}
		svc := NewService(repo)

		rec, created, err := svc.Save(ctx, &SaveRequest{UserID: "u1", Key: "name", Value: "Alice"})
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, TypeLongTerm, rec.MemoryType)
		assert.Equal(t, json.RawMessage(`"Alice"`), rec.Value)
	})

	t.Run("second save updates in place", func(t *testing.T) {
		repo := &fakeRepo{}
		svc := NewService(repo)

		_, created, err := svc.Save(ctx, &SaveRequest{UserID: "u1", Key: "name", Value: "Alice"})
		require.NoError(t, err)
		assert.True(t, created)

		rec, created, err := svc.Save(ctx, &SaveRequest{UserID: "u1", Key: "name", Value: "Bob"})
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, json.RawMessage(`"Bob"`), rec.Value)
		assert.Len(t, repo.records, 1)
	})

	t.Run("structured values round-trip as json", func(t *testing.T) {
		repo := &fakeRepo{}
		svc := NewService(repo)

		rec, _, err := svc.Save(ctx, &SaveRequest{
			UserID: "u1",
			Key:    "preferences",
			Value:  map[string]any{"theme": "dark"},
		})
		require.NoError(t, err)
		assert.JSONEq(t, `{"theme":"dark"}`, string(rec.Value))
	})
}

func TestService_Get(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	svc := NewService(repo)
	seedRecord(t, repo, "u1", "name", TypeLongTerm, "Alice")
	seedRecord(t, repo, "u1", "台北101", TypeEntity, "地標")

	t.Run("by key returns one record", func(t *testing.T) {
		records, err := svc.Get(ctx, "u1", "name", "")
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "name", records[0].Key)
	})

	t.Run("missing key returns empty", func(t *testing.T) {
		records, err := svc.Get(ctx, "u1", "nope", "")
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("no key lists all", func(t *testing.T) {
		records, err := svc.Get(ctx, "u1", "", "")
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("type filter applies", func(t *testing.T) {
		records, err := svc.Get(ctx, "u1", "", TypeEntity)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "台北101", records[0].Key)
	})
}

func TestService_Search(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	svc := NewService(repo)
	for i := 0; i < 15; i++ {
		seedRecord(t, repo, "u1", "note-"+uuid.NewString(), TypeLongTerm, "coffee note")
	}

	t.Run("limit defaults to 10", func(t *testing.T) {
		records, err := svc.Search(ctx, &SearchRequest{UserID: "u1", Query: "coffee"})
		require.NoError(t, err)
		assert.Len(t, records, 10)
	})

	t.Run("explicit limit respected", func(t *testing.T) {
		records, err := svc.Search(ctx, &SearchRequest{UserID: "u1", Query: "coffee", Limit: 3})
		require.NoError(t, err)
		assert.Len(t, records, 3)
	})
}

func TestService_Profile(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	svc := NewService(repo)

	seedRecord(t, repo, "u1", "name", TypeLongTerm, "Alice")
	seedRecord(t, repo, "u1", "favorite_food", TypeLongTerm, "牛排")
	seedRecord(t, repo, "u1", "Location", TypeLongTerm, "台北")
	seedRecord(t, repo, "u1", "random_note", TypeLongTerm, "not profile material")
	seedRecord(t, repo, "u1", "interest_name", TypeEntity, "skipped, wrong type")

	profile, err := svc.Profile(ctx, "u1")
	require.NoError(t, err)

	assert.Len(t, profile, 3)
	assert.Equal(t, json.RawMessage(`"Alice"`), profile["name"])
	assert.Equal(t, json.RawMessage(`"牛排"`), profile["favorite_food"])
	assert.Contains(t, profile, "Location")
	assert.NotContains(t, profile, "random_note")
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("by id", func(t *testing.T) {
		repo := &fakeRepo{}
		svc := NewService(repo)
		rec := seedRecord(t, repo, "u1", "name", TypeLongTerm, "Alice")

		require.NoError(t, svc.DeleteByID(ctx, "u1", rec.ID))
		assert.Empty(t, repo.records)

		assert.ErrorIs(t, svc.DeleteByID(ctx, "u1", rec.ID), ErrNotFound)
	})

	t.Run("by key", func(t *testing.T) {
		repo := &fakeRepo{}
		svc := NewService(repo)
		seedRecord(t, repo, "u1", "name", TypeLongTerm, "Alice")

		require.NoError(t, svc.DeleteByKey(ctx, "u1", "name"))
		assert.ErrorIs(t, svc.DeleteByKey(ctx, "u1", "name"), ErrNotFound)
	})

	t.Run("id scoped to user", func(t *testing.T) {
		repo := &fakeRepo{}
		svc := NewService(repo)
		rec := seedRecord(t, repo, "u1", "name", TypeLongTerm, "Alice")

		assert.ErrorIs(t, svc.DeleteByID(ctx, "u2", rec.ID), ErrNotFound)
		assert.Len(t, repo.records, 1)
	})
}
