package response

import (
	"RoastMe/internal/api/dto"
	"RoastMe/internal/service"
	log "log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Success 成功返回，直接输出数据本身
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Fail 失败返回 {error}，并终止后续处理
func Fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, dto.ErrorResponse{Error: message})
}

// Error 按错误类型映射状态码，未登记的错误统一 500 并记录
func Error(c *gin.Context, err error) {
	code, ok := service.ErrorStatus(err)
	if !ok {
		log.ErrorContext(c.Request.Context(), "Error", "err", err)
		Fail(c, http.StatusInternalServerError, service.UnExpectedError.Error())
		return
	}
	Fail(c, code, err.Error())
}
