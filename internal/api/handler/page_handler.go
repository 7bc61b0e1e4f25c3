package handler

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed web/index.html
var indexHTML []byte

type PageHandler struct{}

func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

// Index 单页前端
func (s *PageHandler) Index(c *gin.Context) {
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}
