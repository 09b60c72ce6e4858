package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/arllen133/blogcms/internal/service"
	"github.com/arllen133/blogcms/internal/transport/http/handlers"
)

type Router = *gin.Engine

// NewRouter mounts the public read routes under /api and the admin
// mutation routes under /api/admin. Access control for the admin group is
// left to the surrounding infrastructure.
func NewRouter(content *service.ContentService, reader *service.Reader, logger *slog.Logger) Router {
	r := gin.New()
	r.Use(gin.Recovery(), handlers.RequestLogger(logger))

	public := handlers.NewPublicHandler(reader)
	admin := handlers.NewAdminHandler(content)

	api := r.Group("/api")
	api.GET("/posts", public.ListPosts)
	api.GET("/posts/:id", public.GetPost)
	api.GET("/categories", public.ListCategories)

	adm := api.Group("/admin")
	adm.POST("/posts", admin.CreatePost)
	adm.GET("/posts/:id", admin.GetPost)
	adm.PUT("/posts/:id", admin.UpdatePost)
	adm.DELETE("/posts/:id", admin.DeletePost)
	adm.POST("/categories", admin.CreateCategory)
	adm.GET("/categories/:id", admin.GetCategory)
	adm.PUT("/categories/:id", admin.UpdateCategory)
	adm.DELETE("/categories/:id", admin.DeleteCategory)

	r.NoRoute(handlers.NotFound)
	return r
}
