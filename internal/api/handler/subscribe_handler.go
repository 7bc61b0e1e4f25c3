package handler

import (
	"RoastMe/internal/api/dto"
	"RoastMe/internal/pkg/response"
	"RoastMe/internal/service"

	"github.com/gin-gonic/gin"
)

type SubscribeHandler struct {
	subscribeSvc service.SubscribeService
}

func NewSubscribeHandler(subscribeSvc service.SubscribeService) *SubscribeHandler {
	return &SubscribeHandler{subscribeSvc: subscribeSvc}
}

// Subscribe POST /api/subscribe
func (s *SubscribeHandler) Subscribe(c *gin.Context) {
	var subscribeDTO dto.SubscribeDTO
	if err := c.ShouldBindJSON(&subscribeDTO); err != nil {
		response.Error(c, service.ErrEmailInvalid)
		return
	}
	result, err := s.subscribeSvc.Subscribe(c.Request.Context(), &subscribeDTO)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func (s *SubscribeHandler) GetReferralStats(c *gin.Context) {
	stats, err := s.subscribeSvc.GetReferralStats(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats)
}
