package routes

import (
	"net/http"

	"ideas-jar/src/interface/handler"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SetupRoutes sets up all API routes
func SetupRoutes(r *gin.Engine, ideaHandler *handler.IdeaHandler, systemHandler *handler.SystemHandler, logger *logrus.Logger) {
	r.HandleMethodNotAllowed = true
	// /ideas/search/a%2Fb は "a/b" として検索
	r.UseRawPath = true
	r.UnescapePathValues = true

	// NoRouteハンドラー（404）
	r.NoRoute(func(c *gin.Context) {
		logger.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"uri":       c.Request.RequestURI,
			"client_ip": c.ClientIP(),
		}).Warn("404: ルートが見つかりません")
		c.JSON(http.StatusNotFound, handler.ErrorResponseDTO{Code: handler.CodeNotFound, Error: "Route not found"})
	})

	// NoMethodハンドラー（405）
	r.NoMethod(func(c *gin.Context) {
		logger.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"uri":       c.Request.RequestURI,
			"client_ip": c.ClientIP(),
		}).Warn("405: サポートされていないメソッド")
		c.JSON(http.StatusMethodNotAllowed, handler.ErrorResponseDTO{Code: handler.CodeValidation, Error: "Method not allowed"})
	})

	r.GET("/", systemHandler.Welcome)
	r.GET("/health", systemHandler.Health)
	r.GET("/stats", ideaHandler.Stats)

	ideas := r.Group("/ideas")
	{
		ideas.GET("/search", ideaHandler.SearchIdeas)        // GET /ideas/search?q=
		ideas.GET("/search/:query", ideaHandler.SearchIdeas) // GET /ideas/search/{query}

		ideas.GET("", ideaHandler.ListIdeas)                // GET /ideas
		ideas.POST("", ideaHandler.CreateIdea)              // POST /ideas
		ideas.GET("/:id", ideaHandler.GetIdea)              // GET /ideas/{id}
		ideas.PUT("/:id", ideaHandler.UpdateIdea)           // PUT /ideas/{id}
		ideas.DELETE("/:id", ideaHandler.DeleteIdea)        // DELETE /ideas/{id}
		ideas.POST("/:id/improve", ideaHandler.ImproveIdea) // POST /ideas/{id}/improve
	}
}
