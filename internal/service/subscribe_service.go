package service

import (
	"RoastMe/internal/api/dto"
	"RoastMe/internal/model"
	"RoastMe/internal/pkg/util"
	"RoastMe/internal/repository"
	"context"
	"errors"
	log "log/slog"
	"strings"
	"time"
)

const (
	subscribedMessage        = "Subscribed! Share your referral code to climb the list."
	alreadySubscribedMessage = "You're already subscribed. Here's your referral code again."
)

type SubscribeService interface {
	Subscribe(ctx context.Context, dto *dto.SubscribeDTO) (*dto.SubscribeResultDTO, error)
	GetReferralStats(ctx context.Context, code string) (*dto.ReferralStatsDTO, error)
}

type SubscribeServiceImpl struct {
	subscriberRepo repository.SubscriberRepo
}

func NewSubscribeService(subscriberRepo repository.SubscriberRepo) SubscribeService {
	return &SubscribeServiceImpl{subscriberRepo: subscriberRepo}
}

// Subscribe 同一邮箱重复订阅返回同一个推荐码
func (s *SubscribeServiceImpl) Subscribe(ctx context.Context, subscribeDTO *dto.SubscribeDTO) (*dto.SubscribeResultDTO, error) {
	subscribeDTO.Email = strings.TrimSpace(subscribeDTO.Email)
	subscribeDTO.Referrer = strings.TrimSpace(subscribeDTO.Referrer)
	if err := util.ValidateDTO(subscribeDTO); err != nil {
		var fieldErr *util.FieldError
		if errors.As(err, &fieldErr) && fieldErr.Field == "Referrer" {
			return nil, ErrParamInvalid
		}
		return nil, ErrEmailInvalid
	}

	sub, created, err := registerSubscriber(ctx, s.subscriberRepo, subscribeDTO.Email, subscribeDTO.Referrer)
	if err != nil {
		return nil, err
	}
	message := subscribedMessage
	if !created {
		message = alreadySubscribedMessage
	}
	return &dto.SubscribeResultDTO{Message: message, ReferralCode: sub.Code}, nil
}

func (s *SubscribeServiceImpl) GetReferralStats(ctx context.Context, code string) (*dto.ReferralStatsDTO, error) {
	code = normalizeCode(code)
	if code == "" {
		return nil, ErrReferralNotFound
	}
	sub, err := s.subscriberRepo.GetSubscriberByCode(ctx, code)
	if err != nil {
		log.ErrorContext(ctx, "查询推荐码失败", "err", err)
		return nil, UnExpectedError
	}
	if sub == nil {
		return nil, ErrReferralNotFound
	}
	count, err := s.subscriberRepo.CountReferrals(ctx, code)
	if err != nil {
		log.ErrorContext(ctx, "统计推荐人数失败", "err", err)
		return nil, UnExpectedError
	}
	return &dto.ReferralStatsDTO{ReferredCount: count}, nil
}

// registerSubscriber 订阅接口和吐槽接口共用；推荐码不校验是否存在
func registerSubscriber(ctx context.Context, repo repository.SubscriberRepo, email, referrer string) (*model.Subscriber, bool, error) {
	sub, created, err := repo.CreateSubscriber(ctx, &model.Subscriber{
		Email:     strings.ToLower(email),
		Referrer:  util.PtrString(normalizeCode(referrer)),
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		log.ErrorContext(ctx, "保存订阅者失败", "err", err)
		return nil, false, UnExpectedError
	}
	if created {
		log.InfoContext(ctx, "新订阅者", "code", sub.Code, "referred", sub.Referrer != nil)
	}
	return sub, created, nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
