package handler

import (
	"net/http"

	"ideas-jar/src/domain"
	"ideas-jar/src/usecase"
	"ideas-jar/src/validator"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// IdeaHandler handles HTTP requests for idea operations
type IdeaHandler struct {
	ideaUsecase usecase.IdeaUsecase
	validator   *validator.CustomValidator
	logger      *logrus.Logger
}

// NewIdeaHandler creates a new idea handler
func NewIdeaHandler(ideaUsecase usecase.IdeaUsecase, v *validator.CustomValidator, logger *logrus.Logger) *IdeaHandler {
	return &IdeaHandler{
		ideaUsecase: ideaUsecase,
		validator:   v,
		logger:      logger,
	}
}

// ListIdeas retrieves ideas with pagination and optional priority filter
func (h *IdeaHandler) ListIdeas(c *gin.Context) {
	var query IdeaListQueryDTO
	if err := c.ShouldBindQuery(&query); err != nil {
		h.badRequest(c, "Invalid query parameters", err)
		return
	}
	if err := h.validator.Validate(query); err != nil {
		h.badRequest(c, "Invalid query parameters", err)
		return
	}

	ideas, err := h.ideaUsecase.ListIdeas(c.Request.Context(), usecase.ListIdeasRequest{
		Skip:     query.Skip,
		Limit:    query.Limit,
		Priority: query.Priority,
	})
	if err != nil {
		h.respondError(c, err, "Failed to get ideas", logrus.Fields{})
		return
	}

	c.JSON(http.StatusOK, toIdeaResponseDTOs(ideas))
}

// GetIdea retrieves an idea by ID
func (h *IdeaHandler) GetIdea(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	idea, err := h.ideaUsecase.GetIdea(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "Failed to get idea", logrus.Fields{"idea_id": id})
		return
	}

	c.JSON(http.StatusOK, toIdeaResponseDTO(idea))
}

// SearchIdeas searches ideas by content.
// The term comes from the :query path segment or, failing that, the q query parameter.
func (h *IdeaHandler) SearchIdeas(c *gin.Context) {
	term := c.Param("query")
	if term == "" {
		term = c.Query("q")
	}

	ideas, err := h.ideaUsecase.SearchIdeas(c.Request.Context(), term)
	if err != nil {
		h.respondError(c, err, "Failed to search ideas", logrus.Fields{"query": term})
		return
	}

	c.JSON(http.StatusOK, toIdeaResponseDTOs(ideas))
}

// CreateIdea creates a new idea
func (h *IdeaHandler) CreateIdea(c *gin.Context) {
	var req CreateIdeaRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request format", err)
		return
	}
	if err := h.validator.Validate(req); err != nil {
		h.badRequest(c, "Failed to create idea", err)
		return
	}

	idea, err := h.ideaUsecase.CreateIdea(c.Request.Context(), usecase.CreateIdeaRequest{
		Content:  req.Content,
		IsVoice:  req.IsVoice,
		Priority: req.Priority,
	})
	if err != nil {
		h.respondError(c, err, "Failed to create idea", logrus.Fields{})
		return
	}

	c.JSON(http.StatusCreated, toIdeaResponseDTO(idea))
}

// UpdateIdea replaces an idea's content, voice flag and priority
func (h *IdeaHandler) UpdateIdea(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req UpdateIdeaRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request format", err)
		return
	}
	if err := h.validator.Validate(req); err != nil {
		h.badRequest(c, "Failed to update idea", err)
		return
	}

	idea, err := h.ideaUsecase.UpdateIdea(c.Request.Context(), id, usecase.UpdateIdeaRequest{
		Content:  req.Content,
		IsVoice:  req.IsVoice,
		Priority: req.Priority,
	})
	if err != nil {
		h.respondError(c, err, "Failed to update idea", logrus.Fields{"idea_id": id})
		return
	}

	c.JSON(http.StatusOK, toIdeaResponseDTO(idea))
}

// ImproveIdea fills improved_text for an idea
func (h *IdeaHandler) ImproveIdea(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	idea, err := h.ideaUsecase.ImproveIdea(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "Failed to improve idea", logrus.Fields{"idea_id": id})
		return
	}

	c.JSON(http.StatusOK, toIdeaResponseDTO(idea))
}

// DeleteIdea permanently deletes an idea
func (h *IdeaHandler) DeleteIdea(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.ideaUsecase.DeleteIdea(c.Request.Context(), id); err != nil {
		h.respondError(c, err, "Failed to delete idea", logrus.Fields{"idea_id": id})
		return
	}

	c.JSON(http.StatusOK, MessageResponseDTO{Message: "Idea deleted successfully"})
}

// Stats returns aggregate statistics over all ideas
func (h *IdeaHandler) Stats(c *gin.Context) {
	stats, err := h.ideaUsecase.Stats(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to get stats", logrus.Fields{})
		return
	}

	c.JSON(http.StatusOK, toStatsResponseDTO(stats))
}

func (h *IdeaHandler) parseID(c *gin.Context) (int, bool) {
	id, err := h.validator.ParseID(c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Invalid idea ID", logrus.Fields{"idea_id": c.Param("id")})
		return 0, false
	}
	return id, true
}

func (h *IdeaHandler) badRequest(c *gin.Context, summary string, err error) {
	h.logger.WithError(err).WithField("uri", c.Request.RequestURI).Warn("不正なリクエスト")
	c.JSON(http.StatusBadRequest, ErrorResponseDTO{
		Code:    CodeValidation,
		Error:   summary,
		Message: err.Error(),
	})
}

// respondError maps domain errors onto HTTP status codes.
// Store error details are logged but not returned to the caller.
func (h *IdeaHandler) respondError(c *gin.Context, err error, summary string, fields logrus.Fields) {
	switch {
	case domain.IsValidation(err):
		h.badRequest(c, summary, err)
	case domain.IsNotFound(err):
		h.logger.WithFields(fields).Info("アイデアが見つかりません")
		c.JSON(http.StatusNotFound, ErrorResponseDTO{
			Code:    CodeNotFound,
			Error:   "Idea not found",
			Message: err.Error(),
		})
	default:
		h.logger.WithError(err).WithFields(fields).Error(summary)
		c.JSON(http.StatusInternalServerError, ErrorResponseDTO{
			Code:    CodeStore,
			Error:   summary,
			Message: "Database error",
		})
	}
}
