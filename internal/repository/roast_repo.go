package repository

import (
	"RoastMe/internal/model"
	"RoastMe/internal/pkg/database"
	"RoastMe/internal/pkg/util"
	"context"
	"slices"

	"github.com/jinzhu/copier"
)

type RoastRepo interface {
	CreateRoast(ctx context.Context, roast *model.Roast) error
	GetRoastByID(ctx context.Context, id string) (*model.Roast, error)
	GetRecentRoasts(ctx context.Context, limit int) ([]*model.Roast, error)
	CountRoasts(ctx context.Context) (int, error)
}

type RoastRepoImpl struct {
	db *database.DB
}

func NewRoastRepo(db *database.DB) RoastRepo {
	return &RoastRepoImpl{db: db}
}

// CreateRoast 追加记录并推进当日计数，ID 为空或已存在时重新生成
func (s *RoastRepoImpl) CreateRoast(ctx context.Context, roast *model.Roast) error {
	stored, err := cloneRoast(roast)
	if err != nil {
		return err
	}
	return s.db.Update(func(doc *database.Document) error {
		for stored.ID == "" || roastExists(doc, stored.ID) {
			stored.ID = util.NewRoastID()
		}
		roast.ID = stored.ID
		doc.Roasts = append(doc.Roasts, stored)
		doc.Stats.Advance(s.db.Now().Format(model.DailyStatsDateLayout))
		return nil
	})
}

// GetRoastByID 不存在时返回 nil, nil
func (s *RoastRepoImpl) GetRoastByID(ctx context.Context, id string) (*model.Roast, error) {
	var found *model.Roast
	err := s.db.View(func(doc *database.Document) error {
		// 倒序查找，保证同 ID 时取最近一次写入
		for i := len(doc.Roasts) - 1; i >= 0; i-- {
			if doc.Roasts[i].ID == id {
				var err error
				found, err = cloneRoast(doc.Roasts[i])
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// GetRecentRoasts 最新的在前
func (s *RoastRepoImpl) GetRecentRoasts(ctx context.Context, limit int) ([]*model.Roast, error) {
	var roasts []*model.Roast
	err := s.db.View(func(doc *database.Document) error {
		n := len(doc.Roasts)
		if limit <= 0 || limit > n {
			limit = n
		}
		roasts = make([]*model.Roast, 0, limit)
		for i := n - 1; i >= n-limit; i-- {
			r, err := cloneRoast(doc.Roasts[i])
			if err != nil {
				return err
			}
			roasts = append(roasts, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return roasts, nil
}

func (s *RoastRepoImpl) CountRoasts(ctx context.Context) (int, error) {
	var count int
	err := s.db.View(func(doc *database.Document) error {
		count = len(doc.Roasts)
		return nil
	})
	return count, err
}

func roastExists(doc *database.Document, id string) bool {
	for _, r := range doc.Roasts {
		if r.ID == id {
			return true
		}
	}
	return false
}

// cloneRoast 返回与存储互不共享的副本
func cloneRoast(src *model.Roast) (*model.Roast, error) {
	dst := &model.Roast{}
	if err := copier.Copy(dst, src); err != nil {
		return nil, err
	}
	dst.Points = slices.Clone(src.Points)
	return dst, nil
}
