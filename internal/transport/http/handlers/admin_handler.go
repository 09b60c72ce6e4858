package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arllen133/blogcms/internal/service"
)

// AdminHandler passes mutations through to the content service. It checks
// request shape only; business rules live in the service.
type AdminHandler struct {
	content *service.ContentService
}

func NewAdminHandler(content *service.ContentService) *AdminHandler {
	return &AdminHandler{content: content}
}

// categoryIds must be present; an empty array clears the post's categories.
type postReq struct {
	Title         string   `json:"title" binding:"required"`
	Content       string   `json:"content" binding:"required"`
	CoverImageURL string   `json:"coverImageURL" binding:"required"`
	CategoryIDs   []string `json:"categoryIds" binding:"required,dive,required"`
}

func (r postReq) input() service.PostInput {
	return service.PostInput{
		Title:         r.Title,
		Content:       r.Content,
		CoverImageURL: r.CoverImageURL,
		CategoryIDs:   r.CategoryIDs,
	}
}

type categoryReq struct {
	Name string `json:"name" binding:"required"`
}

func (h *AdminHandler) CreatePost(c *gin.Context) {
	var req postReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, &req, err)
		return
	}
	post, err := h.content.CreatePost(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// GetPost returns the stored content unsanitized, for the editor.
func (h *AdminHandler) GetPost(c *gin.Context) {
	post, err := h.content.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *AdminHandler) UpdatePost(c *gin.Context) {
	var req postReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, &req, err)
		return
	}
	post, err := h.content.UpdatePost(c.Request.Context(), c.Param("id"), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *AdminHandler) DeletePost(c *gin.Context) {
	if err := h.content.DeletePost(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) CreateCategory(c *gin.Context) {
	var req categoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, &req, err)
		return
	}
	category, err := h.content.CreateCategory(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *AdminHandler) GetCategory(c *gin.Context) {
	category, err := h.content.GetCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *AdminHandler) UpdateCategory(c *gin.Context) {
	var req categoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, &req, err)
		return
	}
	category, err := h.content.UpdateCategory(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *AdminHandler) DeleteCategory(c *gin.Context) {
	if err := h.content.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
