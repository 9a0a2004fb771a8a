package repositoryImp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"waira/pkg/document/repository"
)

const (
	fieldCreatedAt = "createdAt"
	fieldUpdatedAt = "updatedAt"
)

type firestoreStore struct{ client *firestore.Client }

// NewFirestore stores each collection as a Firestore collection. Server
// timestamps fill createdAt/updatedAt the way the web client wrote them.
func NewFirestore(client *firestore.Client) repository.Store {
	return &firestoreStore{client: client}
}

func toMap(data any) (map[string]any, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	m := map[string]any{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("document must be an object: %w", err)
	}
	return m, nil
}

func fromDoc(ds *firestore.DocumentSnapshot) (repository.Snapshot, error) {
	return snapshotOf(ds.Ref.ID, ds.CreateTime, ds.UpdateTime, ds.Data())
}

func snapshotOf(id string, created, updated time.Time, data map[string]any) (repository.Snapshot, error) {
	snap := repository.Snapshot{ID: id, CreatedAt: created, UpdatedAt: updated}
	if t, ok := data[fieldCreatedAt].(time.Time); ok {
		snap.CreatedAt = t
	}
	if t, ok := data[fieldUpdatedAt].(time.Time); ok {
		snap.UpdatedAt = t
	}
	delete(data, fieldCreatedAt)
	delete(data, fieldUpdatedAt)
	b, err := json.Marshal(sanitize(data))
	if err != nil {
		return repository.Snapshot{}, err
	}
	snap.Data = b
	return snap, nil
}

// sanitize replaces NaN and infinite numbers with null. Firestore stores them
// but JSON cannot carry them.
func sanitize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = sanitize(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = sanitize(e)
		}
		return t
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil
		}
		return t
	default:
		return v
	}
}

func (s *firestoreStore) Create(ctx context.Context, collection string, data any) (repository.Snapshot, error) {
	m, err := toMap(data)
	if err != nil {
		return repository.Snapshot{}, err
	}
	m[fieldCreatedAt] = firestore.ServerTimestamp
	m[fieldUpdatedAt] = firestore.ServerTimestamp
	ref := s.client.Collection(collection).NewDoc()
	wr, err := ref.Create(ctx, m)
	if err != nil {
		return repository.Snapshot{}, fmt.Errorf("create %s: %w", collection, err)
	}
	delete(m, fieldCreatedAt)
	delete(m, fieldUpdatedAt)
	b, _ := json.Marshal(m)
	return repository.Snapshot{ID: ref.ID, Data: b, CreatedAt: wr.UpdateTime, UpdatedAt: wr.UpdateTime}, nil
}

func (s *firestoreStore) Set(ctx context.Context, collection, id string, data any) error {
	m, err := toMap(data)
	if err != nil {
		return err
	}
	m[fieldUpdatedAt] = firestore.ServerTimestamp
	if _, err := s.client.Collection(collection).Doc(id).Set(ctx, m); err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *firestoreStore) Get(ctx context.Context, collection, id string) (repository.Snapshot, error) {
	ds, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return repository.Snapshot{}, repository.ErrNotFound
	}
	if err != nil {
		return repository.Snapshot{}, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return fromDoc(ds)
}

func (s *firestoreStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	m, err := toMap(fields)
	if err != nil {
		return err
	}
	updates := make([]firestore.Update, 0, len(m)+1)
	for k, v := range m {
		updates = append(updates, firestore.Update{Path: k, Value: v})
	}
	updates = append(updates, firestore.Update{Path: fieldUpdatedAt, Value: firestore.ServerTimestamp})
	_, err = s.client.Collection(collection).Doc(id).Update(ctx, updates)
	if status.Code(err) == codes.NotFound {
		return repository.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *firestoreStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *firestoreStore) Query(ctx context.Context, collection string, filters ...repository.Filter) ([]repository.Snapshot, error) {
	q := s.client.Collection(collection).Query
	for _, f := range filters {
		q = q.Where(f.Field, "==", f.Value)
	}
	docs, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	out := make([]repository.Snapshot, 0, len(docs))
	for _, ds := range docs {
		snap, err := fromDoc(ds)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
