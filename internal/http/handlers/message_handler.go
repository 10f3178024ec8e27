// Webhook HTTP handlers.
//
// This file exposes the chat-platform webhook surface:
//   - POST /message   (one inbound chat message → one reply + keyboard)
//   - POST /friend    (idempotent user registration)
//   - GET  /keyboard  (static default keyboard)
//
// Handlers are transport-thin: they validate input, call the conversation
// router or directory service, and serialize the reply. Domain conditions
// are already chat replies when they get here; only malformed bodies and
// storage failures produce error envelopes.
package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sunrinpay/mealbot/internal/bot"
	"github.com/sunrinpay/mealbot/internal/domain"
)

//
// Service contracts (context-aware)
//

// Conversation is the message-routing contract consumed by the webhook
// handler. Implementations must honor the provided context.
type Conversation interface {
	// Handle interprets one inbound message and produces the reply.
	Handle(ctx context.Context, userKey, content string) (bot.Response, error)
}

// Directory is the registration contract consumed by the friend handler.
type Directory interface {
	// GetOrCreate idempotently registers a profile for userKey.
	GetOrCreate(ctx context.Context, userKey string) (*domain.User, error)
}

//
// Handler wiring
//

// Handlers groups the webhook endpoints. It depends on abstract contracts to
// keep transport concerns separate from conversation logic.
type Handlers struct {
	conv Conversation
	dir  Directory
}

// New constructs a Handlers instance bound to the given collaborators.
func New(conv Conversation, dir Directory) *Handlers {
	return &Handlers{conv: conv, dir: dir}
}

//
// DTOs
//

// MessageRequest is the JSON payload the chat platform posts per message.
type MessageRequest struct {
	// UserKey is the opaque identifier of the sender.
	UserKey string `json:"user_key" binding:"required" example:"53a14bc9d8a0b2d9"`
	// Content is the raw message text.
	Content string `json:"content" binding:"required" example:"급식메뉴"`
}

// FriendRequest is the JSON payload for user registration.
type FriendRequest struct {
	UserKey string `json:"user_key" example:"53a14bc9d8a0b2d9"`
}

//
// Handlers
//

// PostMessage godoc
// @ID          postMessage
// @Summary     Handle one chat message
// @Description Interprets the message against the sender's conversation state and returns one reply plus a keyboard.
// @Tags        Webhook
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.MessageRequest  true  "Inbound message"
// @Success     200  {object}  bot.Response
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /message [post]
func (h *Handlers) PostMessage(c *gin.Context) {
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user_key and content required")
		return
	}

	resp, err := h.conv.Handle(c.Request.Context(), req.UserKey, req.Content)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeReplyFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, resp)
}

// PostFriend godoc
// @ID          postFriend
// @Summary     Register a user
// @Description Idempotently creates a profile for the given user key. Duplicate registration succeeds.
// @Tags        Webhook
// @Accept      json
// @Produce     plain
// @Param       body  body  handlers.FriendRequest  false  "Registration payload (user_key also accepted as form field)"
// @Success     200  {string}  string  "SUCCESS"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /friend [post]
func (h *Handlers) PostFriend(c *gin.Context) {
	// The legacy platform posted form data here; newer callers send JSON.
	userKey := strings.TrimSpace(c.PostForm("user_key"))
	if userKey == "" {
		var req FriendRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			userKey = strings.TrimSpace(req.UserKey)
		}
	}
	if userKey == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user_key required")
		return
	}

	if _, err := h.dir.GetOrCreate(c.Request.Context(), userKey); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	c.String(http.StatusOK, "SUCCESS")
}

// GetKeyboard godoc
// @ID          getKeyboard
// @Summary     Default keyboard
// @Description Returns the static keyboard shown before any conversation starts.
// @Tags        Webhook
// @Produce     json
// @Success     200  {object}  bot.Keyboard
// @Router      /keyboard [get]
func (h *Handlers) GetKeyboard(c *gin.Context) {
	ok(c, http.StatusOK, bot.DefaultKeyboard())
}
