package documents

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"careroster/internal/domain/people"
)

type StoreAPI interface {
	ListByUser(ctx context.Context, userID string, kind people.Kind) ([]Document, error)
	Get(ctx context.Context, id string, kind people.Kind) (*Document, error)
	Create(ctx context.Context, doc *Document) error
	Save(ctx context.Context, doc *Document) error
}

type Store struct {
	DB *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) ListByUser(ctx context.Context, userID string, kind people.Kind) ([]Document, error) {
	var docs []Document
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND owner_kind = ?", userID, kind).
		Order("created_at DESC").
		Find(&docs).Error
	return docs, err
}

func (s *Store) Get(ctx context.Context, id string, kind people.Kind) (*Document, error) {
	var doc Document
	err := s.DB.WithContext(ctx).Where("id = ? AND owner_kind = ?", id, kind).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, people.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *Store) Create(ctx context.Context, doc *Document) error {
	return s.DB.WithContext(ctx).Create(doc).Error
}

func (s *Store) Save(ctx context.Context, doc *Document) error {
	return s.DB.WithContext(ctx).Save(doc).Error
}
