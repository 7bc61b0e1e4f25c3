package dto

import "RoastMe/internal/model"

// GenerateRoastDTO POST /api/roast 请求体
type GenerateRoastDTO struct {
	Type     string `json:"type" validate:"omitempty,oneof=url description tweet"`
	Content  string `json:"content" validate:"required,min=3,max=2000"`
	Email    string `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Referrer string `json:"referrer,omitempty" validate:"omitempty,max=64"`
}

// RoastDTO 生成结果：记录本身加社交数据
type RoastDTO struct {
	*model.Roast
	Social *SocialProofDTO `json:"social,omitempty"`
}
