package admin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lephan/quokka/internal/dto"
	"github.com/lephan/quokka/internal/service"
	"github.com/rs/zerolog/log"
)

type AdminQuestionController struct {
	questionService service.QuestionService
}

func NewAdminQuestionController(questionService service.QuestionService) *AdminQuestionController {
	return &AdminQuestionController{questionService: questionService}
}

// CreateTopic godoc
// @Summary (Admin) Create a topic
// @Tags Admin - Topics & Questions
// @Accept json
// @Produce json
// @Param topic_data body dto.TopicCreateDTO true "Topic data"
// @Success 201 {object} dto.TopicResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Router /admin/topics [post]
func (c *AdminQuestionController) CreateTopic(ctx *gin.Context) {
	var req dto.TopicCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	topic, err := c.questionService.CreateTopic(req)
	if err != nil {
		log.Error().Err(err).Msg("Admin CreateTopic: Service error")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Failed to create topic", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusCreated, topic)
}

// GetAllTopics godoc
// @Summary (Admin) List topics with question counts
// @Tags Admin - Topics & Questions
// @Produce json
// @Success 200 {array} dto.TopicResponseDTO
// @Failure 500 {object} dto.ErrorResponse
// @Router /admin/topics [get]
func (c *AdminQuestionController) GetAllTopics(ctx *gin.Context) {
	topics, err := c.questionService.GetAllTopics()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to retrieve topics", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, topics)
}

// DeleteTopic godoc
// @Summary (Admin) Delete a topic
// @Tags Admin - Topics & Questions
// @Produce json
// @Param topic_id path int true "Topic ID"
// @Success 204 "Deleted"
// @Failure 400 {object} dto.ErrorResponse "Invalid Topic ID format"
// @Failure 404 {object} dto.ErrorResponse "Topic not found"
// @Router /admin/topics/{topic_id} [delete]
func (c *AdminQuestionController) DeleteTopic(ctx *gin.Context) {
	topicID, err := strconv.ParseUint(ctx.Param("topic_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid Topic ID format"})
		return
	}
	if err := c.questionService.DeleteTopic(uint(topicID)); err != nil {
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
		return
	}
	ctx.Status(http.StatusNoContent)
}

// CreateQuestion godoc
// @Summary (Admin) Create a question
// @Description Create a question of any variant. Variant fields must match the type tag.
// @Tags Admin - Topics & Questions
// @Accept json
// @Produce json
// @Param question_data body dto.QuestionCreateDTO true "Question data"
// @Success 201 {object} dto.QuestionResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Router /admin/questions [post]
func (c *AdminQuestionController) CreateQuestion(ctx *gin.Context) {
	var req dto.QuestionCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Admin CreateQuestion: Failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	question, err := c.questionService.CreateQuestion(req)
	if err != nil {
		log.Error().Err(err).Msg("Admin CreateQuestion: Service error")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Failed to create question", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusCreated, question)
}

// GetQuestion godoc
// @Summary (Admin) Get a question with its variant data
// @Tags Admin - Topics & Questions
// @Produce json
// @Param question_id path int true "Question ID"
// @Success 200 {object} dto.QuestionResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid Question ID format"
// @Failure 404 {object} dto.ErrorResponse "Question not found"
// @Router /admin/questions/{question_id} [get]
func (c *AdminQuestionController) GetQuestion(ctx *gin.Context) {
	questionID, err := strconv.ParseUint(ctx.Param("question_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid Question ID format"})
		return
	}
	question, err := c.questionService.GetQuestion(uint(questionID))
	if err != nil {
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, question)
}

// GetQuestionsByTopic godoc
// @Summary (Admin) List questions for a topic
// @Tags Admin - Topics & Questions
// @Produce json
// @Param topic_id path int true "Topic ID"
// @Success 200 {array} dto.QuestionResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid Topic ID format"
// @Failure 500 {object} dto.ErrorResponse
// @Router /admin/topics/{topic_id}/questions [get]
func (c *AdminQuestionController) GetQuestionsByTopic(ctx *gin.Context) {
	topicID, err := strconv.ParseUint(ctx.Param("topic_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid Topic ID format"})
		return
	}
	questions, err := c.questionService.GetQuestionsByTopic(uint(topicID))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to retrieve questions", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, questions)
}

// DeleteQuestion godoc
// @Summary (Admin) Delete a question
// @Tags Admin - Topics & Questions
// @Produce json
// @Param question_id path int true "Question ID"
// @Success 204 "Deleted"
// @Failure 400 {object} dto.ErrorResponse "Invalid Question ID format"
// @Failure 404 {object} dto.ErrorResponse "Question not found"
// @Router /admin/questions/{question_id} [delete]
func (c *AdminQuestionController) DeleteQuestion(ctx *gin.Context) {
	questionID, err := strconv.ParseUint(ctx.Param("question_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid Question ID format"})
		return
	}
	if err := c.questionService.DeleteQuestion(uint(questionID)); err != nil {
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
		return
	}
	ctx.Status(http.StatusNoContent)
}

// GenerateQuestions godoc
// @Summary (Admin) Generate questions with the AI tutor
// @Description Drafts questions for a topic via the AI collaborator, validates them, and persists the usable ones flagged ai_generated.
// @Tags Admin - Topics & Questions
// @Accept json
// @Produce json
// @Param generation_request body dto.GenerateQuestionsDTO true "Generation parameters"
// @Success 201 {array} dto.QuestionResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 502 {object} dto.ErrorResponse "AI generation failed"
// @Router /admin/questions/generate [post]
func (c *AdminQuestionController) GenerateQuestions(ctx *gin.Context) {
	var req dto.GenerateQuestionsDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	questions, err := c.questionService.GenerateQuestions(ctx.Request.Context(), req)
	if err != nil {
		log.Error().Err(err).Uint("topicID", req.TopicID).Msg("Admin GenerateQuestions: Service error")
		ctx.JSON(http.StatusBadGateway, dto.ErrorResponse{Message: "Question generation failed", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusCreated, questions)
}
