package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arllen133/blogcms/internal/service"
)

// PublicHandler serves sanitized, read-only content.
type PublicHandler struct {
	reader *service.Reader
}

func NewPublicHandler(reader *service.Reader) *PublicHandler {
	return &PublicHandler{reader: reader}
}

func (h *PublicHandler) ListPosts(c *gin.Context) {
	posts, err := h.reader.ListPosts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *PublicHandler) GetPost(c *gin.Context) {
	post, err := h.reader.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PublicHandler) ListCategories(c *gin.Context) {
	categories, err := h.reader.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}
