package repositoryImp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"waira/entities"
	"waira/pkg/document/repository"
)

type sqliteStore struct{ db *gorm.DB }

// NewSQLite keeps every collection in the documents table.
func NewSQLite(db *gorm.DB) repository.Store { return &sqliteStore{db: db} }

func encode(data any) (datatypes.JSON, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return datatypes.JSON(b), nil
}

func snapshot(d entities.Document) repository.Snapshot {
	return repository.Snapshot{ID: d.ID, Data: json.RawMessage(d.Data), CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt}
}

func (s *sqliteStore) Create(ctx context.Context, collection string, data any) (repository.Snapshot, error) {
	b, err := encode(data)
	if err != nil {
		return repository.Snapshot{}, err
	}
	doc := entities.Document{Collection: collection, ID: uuid.NewString(), Data: b}
	if err := s.db.WithContext(ctx).Create(&doc).Error; err != nil {
		return repository.Snapshot{}, fmt.Errorf("create %s: %w", collection, err)
	}
	return snapshot(doc), nil
}

func (s *sqliteStore) Set(ctx context.Context, collection, id string, data any) error {
	b, err := encode(data)
	if err != nil {
		return err
	}
	doc := entities.Document{Collection: collection, ID: id, Data: b}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&doc).Error
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *sqliteStore) Get(ctx context.Context, collection, id string) (repository.Snapshot, error) {
	var doc entities.Document
	err := s.db.WithContext(ctx).Where("collection = ? AND id = ?", collection, id).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repository.Snapshot{}, repository.ErrNotFound
	}
	if err != nil {
		return repository.Snapshot{}, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return snapshot(doc), nil
}

func (s *sqliteStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	set := datatypes.JSONSet("data")
	for k, v := range fields {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", k, err)
		}
		set = set.Set(k, gorm.Expr("JSON(?)", string(b)))
	}
	res := s.db.WithContext(ctx).Model(&entities.Document{}).
		Where("collection = ? AND id = ?", collection, id).
		UpdateColumns(map[string]any{"data": set, "updated_at": time.Now()})
	if res.Error != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *sqliteStore) Delete(ctx context.Context, collection, id string) error {
	err := s.db.WithContext(ctx).Where("collection = ? AND id = ?", collection, id).Delete(&entities.Document{}).Error
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *sqliteStore) Query(ctx context.Context, collection string, filters ...repository.Filter) ([]repository.Snapshot, error) {
	q := s.db.WithContext(ctx).Where("collection = ?", collection)
	for _, f := range filters {
		q = q.Where(datatypes.JSONQuery("data").Equals(f.Value, f.Field))
	}
	var docs []entities.Document
	if err := q.Order("created_at asc, id asc").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	out := make([]repository.Snapshot, 0, len(docs))
	for _, d := range docs {
		out = append(out, snapshot(d))
	}
	return out, nil
}
