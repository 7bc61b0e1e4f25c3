package handler

import (
	"RoastMe/internal/api/dto"
	"RoastMe/internal/pkg/response"
	"RoastMe/internal/service"

	"github.com/gin-gonic/gin"
)

type RoastHandler struct {
	roastSvc service.RoastService
}

func NewRoastHandler(roastSvc service.RoastService) *RoastHandler {
	return &RoastHandler{roastSvc: roastSvc}
}

// GenerateRoast POST /api/roast
func (s *RoastHandler) GenerateRoast(c *gin.Context) {
	var roastDTO dto.GenerateRoastDTO
	if err := c.ShouldBindJSON(&roastDTO); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	roast, err := s.roastSvc.GenerateRoast(c.Request.Context(), &roastDTO)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, roast)
}

func (s *RoastHandler) GetRoast(c *gin.Context) {
	roast, err := s.roastSvc.GetRoast(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, roast)
}

func (s *RoastHandler) GetRecentRoasts(c *gin.Context) {
	roasts, err := s.roastSvc.GetRecentRoasts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, roasts)
}
