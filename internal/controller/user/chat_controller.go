package user

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lephan/quokka/internal/dto"
	"github.com/lephan/quokka/internal/service"
	"github.com/rs/zerolog/log"
)

type ChatController struct {
	chatService service.ChatService
}

func NewChatController(chatService service.ChatService) *ChatController {
	return &ChatController{chatService: chatService}
}

// SendMessage godoc
// @Summary (User) Send a chat message to the study assistant
// @Description One send may be in flight per user; concurrent sends are rejected with 409.
// @Tags User - Chat
// @Accept json
// @Produce json
// @Param message body dto.ChatSendDTO true "Message content"
// @Success 200 {object} dto.ChatExchangeDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 409 {object} dto.ErrorResponse "A send is already in flight"
// @Failure 502 {object} dto.ErrorResponse "Assistant unavailable"
// @Router /chat/messages [post]
func (c *ChatController) SendMessage(ctx *gin.Context) {
	var req dto.ChatSendDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	exchange, err := c.chatService.Send(ctx.Request.Context(), req.UserID, req.Content)
	if err != nil {
		if errors.Is(err, service.ErrSendInFlight) {
			ctx.JSON(http.StatusConflict, dto.ErrorResponse{Message: err.Error()})
			return
		}
		log.Warn().Err(err).Uint("userID", req.UserID).Msg("SendMessage: chat send failed")
		ctx.JSON(http.StatusBadGateway, dto.ErrorResponse{Message: "Assistant is unavailable", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, exchange)
}

// GetHistory godoc
// @Summary (User) Get the current chat conversation
// @Tags User - Chat
// @Produce json
// @Param user_id query int true "User ID"
// @Success 200 {array} dto.ChatMessageDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid User ID format"
// @Router /chat/messages [get]
func (c *ChatController) GetHistory(ctx *gin.Context) {
	userID, err := strconv.ParseUint(ctx.Query("user_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid User ID format in query"})
		return
	}
	ctx.JSON(http.StatusOK, c.chatService.History(uint(userID)))
}
