package api

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
)

//go:embed openapi.json
var openAPIDocument []byte

const openAPIPath = "/docs/openapi.json"

type DocsHandler struct{}

func NewDocsHandler() *DocsHandler {
	return &DocsHandler{}
}

func (h *DocsHandler) Register(router *gin.RouterGroup) {
	router.GET(openAPIPath, h.document)
	router.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL(openAPIPath))))
}

func (h *DocsHandler) document(c *gin.Context) {
	c.Data(http.StatusOK, "application/json", openAPIDocument)
}
