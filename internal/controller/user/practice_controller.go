package user

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lephan/quokka/internal/dto"
	"github.com/lephan/quokka/internal/evaluator"
	"github.com/lephan/quokka/internal/service"
	"github.com/rs/zerolog/log"
)

type PracticeController struct {
	practiceService service.PracticeService
	feedbackService service.FeedbackService
}

func NewPracticeController(practiceService service.PracticeService, feedbackService service.FeedbackService) *PracticeController {
	return &PracticeController{
		practiceService: practiceService,
		feedbackService: feedbackService,
	}
}

// StartSession godoc
// @Summary (User) Start a practice session
// @Description Loads a question queue from explicit ids, a topic, personalized recommendations, or the default set — in that priority order.
// @Tags User - Practice
// @Accept json
// @Produce json
// @Param session_request body dto.StartSessionDTO true "Question source"
// @Success 201 {object} dto.SessionResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input or no questions available"
// @Router /practice/sessions [post]
func (c *PracticeController) StartSession(ctx *gin.Context) {
	var req dto.StartSessionDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	session, err := c.practiceService.StartSession(req)
	if err != nil {
		log.Error().Err(err).Msg("StartSession: Service error")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Failed to start session", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusCreated, session)
}

// GetSession godoc
// @Summary (User) Get a practice session snapshot
// @Tags User - Practice
// @Produce json
// @Param session_id path string true "Session ID"
// @Success 200 {object} dto.SessionResponseDTO
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /practice/sessions/{session_id} [get]
func (c *PracticeController) GetSession(ctx *gin.Context) {
	session, err := c.practiceService.GetSession(ctx.Param("session_id"))
	if err != nil {
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, session)
}

// SubmitAnswer godoc
// @Summary (User) Submit an answer for the current question
// @Description Evaluates locally, records the answer, reports progress in the background, and returns feedback plus any remediation offer.
// @Tags User - Practice
// @Accept json
// @Produce json
// @Param session_id path string true "Session ID"
// @Param answer body dto.SubmitAnswerDTO true "Submitted answer"
// @Success 200 {object} dto.AnswerFeedbackDTO
// @Failure 400 {object} dto.ErrorResponse "Shape mismatch or non-current question"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /practice/sessions/{session_id}/answers [post]
func (c *PracticeController) SubmitAnswer(ctx *gin.Context) {
	var req dto.SubmitAnswerDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	feedback, err := c.practiceService.SubmitAnswer(ctx.Request.Context(), ctx.Param("session_id"), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
		case errors.Is(err, evaluator.ErrAnswerShape),
			errors.Is(err, evaluator.ErrUnsupportedQuestionType),
			errors.Is(err, service.ErrNotCurrentQuestion):
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
		default:
			log.Error().Err(err).Str("sessionID", ctx.Param("session_id")).Msg("SubmitAnswer: Service error")
			ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to submit answer", Details: []string{err.Error()}})
		}
		return
	}
	ctx.JSON(http.StatusOK, feedback)
}

// Advance godoc
// @Summary (User) Move to the next or previous question
// @Description Clamps at the queue bounds and clears any staged remediation offer.
// @Tags User - Practice
// @Accept json
// @Produce json
// @Param session_id path string true "Session ID"
// @Param direction body dto.AdvanceDTO true "next or previous"
// @Success 200 {object} dto.SessionResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid direction"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /practice/sessions/{session_id}/advance [post]
func (c *PracticeController) Advance(ctx *gin.Context) {
	var req dto.AdvanceDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	session, err := c.practiceService.Advance(ctx.Param("session_id"), req.Direction)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
			return
		}
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, session)
}

// AcceptRemediation godoc
// @Summary (User) Accept a staged remediation question
// @Description Appends the offered question to the queue and jumps to it.
// @Tags User - Practice
// @Accept json
// @Produce json
// @Param session_id path string true "Session ID"
// @Param remediation body dto.AcceptRemediationDTO true "Accepted question"
// @Success 200 {object} dto.SessionResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Question is not staged"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /practice/sessions/{session_id}/remediation [post]
func (c *PracticeController) AcceptRemediation(ctx *gin.Context) {
	var req dto.AcceptRemediationDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	session, err := c.practiceService.AcceptRemediation(ctx.Param("session_id"), req.QuestionID)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
			return
		}
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, session)
}

// GetStats godoc
// @Summary (User) Get session statistics
// @Tags User - Practice
// @Produce json
// @Param session_id path string true "Session ID"
// @Success 200 {object} dto.SessionStatsDTO
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /practice/sessions/{session_id}/stats [get]
func (c *PracticeController) GetStats(ctx *gin.Context) {
	stats, err := c.practiceService.Stats(ctx.Param("session_id"))
	if err != nil {
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, stats)
}

// GetHint godoc
// @Summary (User) Fetch the next hint for a question
// @Description Returns hint number previous_hint_count+1. The caller accumulates hints and serializes requests.
// @Tags User - Practice
// @Accept json
// @Produce json
// @Param question_id path int true "Question ID"
// @Param hint_request body dto.HintRequestDTO true "Hints already received"
// @Success 200 {object} dto.HintResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid Question ID format"
// @Failure 502 {object} dto.ErrorResponse "Hint service unavailable"
// @Router /practice/questions/{question_id}/hint [post]
func (c *PracticeController) GetHint(ctx *gin.Context) {
	questionID, err := strconv.ParseUint(ctx.Param("question_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid Question ID format"})
		return
	}
	var req dto.HintRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	hint, err := c.feedbackService.Hint(ctx.Request.Context(), uint(questionID), req.PreviousHintCount)
	if err != nil {
		log.Warn().Err(err).Uint64("questionID", questionID).Msg("GetHint: hint unavailable")
		ctx.JSON(http.StatusBadGateway, dto.ErrorResponse{Message: "Hint is unavailable", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, hint)
}
