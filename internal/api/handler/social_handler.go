package handler

import (
	"RoastMe/internal/pkg/response"
	"RoastMe/internal/service"

	"github.com/gin-gonic/gin"
)

type SocialHandler struct {
	socialSvc service.SocialService
}

func NewSocialHandler(socialSvc service.SocialService) *SocialHandler {
	return &SocialHandler{socialSvc: socialSvc}
}

func (s *SocialHandler) GetSocialProof(c *gin.Context) {
	proof, err := s.socialSvc.GetSocialProof(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, proof)
}

func (s *SocialHandler) GetTrending(c *gin.Context) {
	trending, err := s.socialSvc.GetTrending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, trending)
}
