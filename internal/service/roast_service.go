package service

import (
	"RoastMe/internal/api/dto"
	"RoastMe/internal/model"
	"RoastMe/internal/pkg/fetcher"
	"RoastMe/internal/pkg/llm"
	"RoastMe/internal/pkg/util"
	"RoastMe/internal/repository"
	"context"
	"errors"
	log "log/slog"
	"strings"
	"time"
)

const RecentRoastsLimit = 20

// PageSnapshotter url 类型吐槽的页面摘要来源，可为 nil
type PageSnapshotter interface {
	Snapshot(ctx context.Context, rawURL string) (*fetcher.Snapshot, error)
}

type RoastService interface {
	GenerateRoast(ctx context.Context, dto *dto.GenerateRoastDTO) (*dto.RoastDTO, error)
	GetRoast(ctx context.Context, id string) (*model.Roast, error)
	GetRecentRoasts(ctx context.Context) ([]*model.Roast, error)
}

type RoastServiceImpl struct {
	roastRepo      repository.RoastRepo
	subscriberRepo repository.SubscriberRepo
	socialSvc      SocialService
	generator      llm.Generator
	snapshotter    PageSnapshotter
}

func NewRoastService(
	roastRepo repository.RoastRepo,
	subscriberRepo repository.SubscriberRepo,
	socialSvc SocialService,
	generator llm.Generator,
	snapshotter PageSnapshotter,
) RoastService {
	return &RoastServiceImpl{
		roastRepo:      roastRepo,
		subscriberRepo: subscriberRepo,
		socialSvc:      socialSvc,
		generator:      generator,
		snapshotter:    snapshotter,
	}
}

// GenerateRoast 校验输入 → 调用生成链 → 落盘并推进当日计数 → 登记邮箱 → 附带社交数据
func (s *RoastServiceImpl) GenerateRoast(ctx context.Context, roastDTO *dto.GenerateRoastDTO) (*dto.RoastDTO, error) {
	if err := normalizeRoastInput(roastDTO); err != nil {
		return nil, err
	}

	req := llm.RoastRequest{Type: roastDTO.Type, Content: roastDTO.Content}
	if roastDTO.Type == model.RoastTypeURL {
		req.Context = s.pageContext(ctx, roastDTO.Content)
	}

	result, err := s.generator.Generate(ctx, req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			log.InfoContext(ctx, "客户端已断开，放弃生成", "err", err)
			return nil, ErrRequestCanceled
		}
		log.ErrorContext(ctx, "吐槽生成失败", "err", err)
		return nil, ErrGenerationUnavailable
	}

	roast := &model.Roast{
		ID:        util.NewRoastID(),
		Type:      roastDTO.Type,
		Content:   roastDTO.Content,
		Title:     result.Roast.Title,
		Points:    result.Roast.Points,
		Score:     result.Roast.Score,
		Verdict:   result.Roast.Verdict,
		CreatedAt: time.Now().UTC(),
	}
	if err = s.roastRepo.CreateRoast(ctx, roast); err != nil {
		log.ErrorContext(ctx, "保存吐槽失败", "err", err)
		return nil, UnExpectedError
	}
	log.InfoContext(ctx, "吐槽已生成", "id", roast.ID, "type", roast.Type, "source", result.Source, "score", roast.Score)

	if roastDTO.Email != "" {
		// 吐槽已经落盘，登记失败只记录日志
		_, _, _ = registerSubscriber(ctx, s.subscriberRepo, roastDTO.Email, roastDTO.Referrer)
	}

	social, err := s.socialSvc.GetSocialProof(ctx)
	if err != nil {
		log.WarnContext(ctx, "读取社交数据失败", "err", err)
		social = nil
	}
	return &dto.RoastDTO{Roast: roast, Social: social}, nil
}

func (s *RoastServiceImpl) GetRoast(ctx context.Context, id string) (*model.Roast, error) {
	if !strings.HasPrefix(id, util.RoastIDPrefix) {
		return nil, ErrRoastNotFound
	}
	roast, err := s.roastRepo.GetRoastByID(ctx, id)
	if err != nil {
		log.ErrorContext(ctx, "查询吐槽失败", "err", err)
		return nil, UnExpectedError
	}
	if roast == nil {
		return nil, ErrRoastNotFound
	}
	return roast, nil
}

// GetRecentRoasts 最近 20 条，最新的在前
func (s *RoastServiceImpl) GetRecentRoasts(ctx context.Context) ([]*model.Roast, error) {
	roasts, err := s.roastRepo.GetRecentRoasts(ctx, RecentRoastsLimit)
	if err != nil {
		log.ErrorContext(ctx, "读取最近吐槽失败", "err", err)
		return nil, UnExpectedError
	}
	return roasts, nil
}

func (s *RoastServiceImpl) pageContext(ctx context.Context, rawURL string) string {
	if s.snapshotter == nil {
		return ""
	}
	snap, err := s.snapshotter.Snapshot(ctx, rawURL)
	if err != nil {
		log.WarnContext(ctx, "页面快照失败，忽略", "url", rawURL, "err", err)
		return ""
	}
	return snap.Summary()
}

// normalizeRoastInput 去掉首尾空白、补默认类型后校验，失败时不会触发任何网络或存储操作
func normalizeRoastInput(roastDTO *dto.GenerateRoastDTO) error {
	roastDTO.Content = strings.TrimSpace(roastDTO.Content)
	roastDTO.Type = strings.ToLower(strings.TrimSpace(roastDTO.Type))
	if roastDTO.Type == "" {
		roastDTO.Type = model.RoastTypeDescription
	}
	roastDTO.Email = strings.TrimSpace(roastDTO.Email)
	roastDTO.Referrer = strings.TrimSpace(roastDTO.Referrer)

	err := util.ValidateDTO(roastDTO)
	if err == nil {
		return nil
	}
	var fieldErr *util.FieldError
	if !errors.As(err, &fieldErr) {
		return ErrParamInvalid
	}
	switch fieldErr.Field {
	case "Content":
		return ErrContentInvalid
	case "Type":
		return ErrTypeInvalid
	case "Email":
		return ErrEmailInvalid
	default:
		return ErrParamInvalid
	}
}
