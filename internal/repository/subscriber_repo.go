package repository

import (
	"RoastMe/internal/model"
	"RoastMe/internal/pkg/database"
	"RoastMe/internal/pkg/util"
	"context"
	"strings"

	"github.com/jinzhu/copier"
)

type SubscriberRepo interface {
	CreateSubscriber(ctx context.Context, subscriber *model.Subscriber) (*model.Subscriber, bool, error)
	GetSubscriberByCode(ctx context.Context, code string) (*model.Subscriber, error)
	GetSubscriberByEmail(ctx context.Context, email string) (*model.Subscriber, error)
	CountReferrals(ctx context.Context, code string) (int, error)
	CountSubscribers(ctx context.Context) (int, error)
}

type SubscriberRepoImpl struct {
	db *database.DB
}

func NewSubscriberRepo(db *database.DB) SubscriberRepo {
	return &SubscriberRepoImpl{db: db}
}

// CreateSubscriber 邮箱已存在时返回已有记录且 created 为 false，不会重复写入
func (s *SubscriberRepoImpl) CreateSubscriber(ctx context.Context, subscriber *model.Subscriber) (*model.Subscriber, bool, error) {
	var result *model.Subscriber
	created := false

	err := s.db.Update(func(doc *database.Document) error {
		if existing := findByEmail(doc, subscriber.Email); existing != nil {
			var err error
			result, err = cloneSubscriber(existing)
			return err
		}

		stored, err := cloneSubscriber(subscriber)
		if err != nil {
			return err
		}
		for stored.Code == "" || findByCode(doc, stored.Code) != nil {
			stored.Code = util.NewReferralCode()
		}
		doc.Subscribers = append(doc.Subscribers, stored)
		created = true

		result, err = cloneSubscriber(stored)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return result, created, nil
}

// GetSubscriberByCode 不存在时返回 nil, nil
func (s *SubscriberRepoImpl) GetSubscriberByCode(ctx context.Context, code string) (*model.Subscriber, error) {
	var found *model.Subscriber
	err := s.db.View(func(doc *database.Document) error {
		if sub := findByCode(doc, code); sub != nil {
			var err error
			found, err = cloneSubscriber(sub)
			return err
		}
		return nil
	})
	return found, err
}

// GetSubscriberByEmail 不存在时返回 nil, nil
func (s *SubscriberRepoImpl) GetSubscriberByEmail(ctx context.Context, email string) (*model.Subscriber, error) {
	var found *model.Subscriber
	err := s.db.View(func(doc *database.Document) error {
		if sub := findByEmail(doc, email); sub != nil {
			var err error
			found, err = cloneSubscriber(sub)
			return err
		}
		return nil
	})
	return found, err
}

// CountReferrals 统计 referrer 为 code 的订阅者数量
func (s *SubscriberRepoImpl) CountReferrals(ctx context.Context, code string) (int, error) {
	count := 0
	err := s.db.View(func(doc *database.Document) error {
		for _, sub := range doc.Subscribers {
			if sub.Referrer != nil && *sub.Referrer == code {
				count++
			}
		}
		return nil
	})
	return count, err
}

func (s *SubscriberRepoImpl) CountSubscribers(ctx context.Context) (int, error) {
	var count int
	err := s.db.View(func(doc *database.Document) error {
		count = len(doc.Subscribers)
		return nil
	})
	return count, err
}

func findByEmail(doc *database.Document, email string) *model.Subscriber {
	for _, sub := range doc.Subscribers {
		if strings.EqualFold(sub.Email, email) {
			return sub
		}
	}
	return nil
}

func findByCode(doc *database.Document, code string) *model.Subscriber {
	for _, sub := range doc.Subscribers {
		if sub.Code == code {
			return sub
		}
	}
	return nil
}

func cloneSubscriber(src *model.Subscriber) (*model.Subscriber, error) {
	dst := &model.Subscriber{}
	if err := copier.Copy(dst, src); err != nil {
		return nil, err
	}
	if src.Referrer != nil {
		referrer := *src.Referrer
		dst.Referrer = &referrer
	}
	return dst, nil
}
