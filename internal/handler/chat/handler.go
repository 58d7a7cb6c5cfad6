package chat

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/mind-chat/backend/internal/middleware"
	"github.com/zhouzirui/mind-chat/backend/internal/service/companion"
	"github.com/zhouzirui/mind-chat/backend/internal/service/quota"
	"github.com/zhouzirui/mind-chat/backend/pkg/utils"
)

// Handler 聊天服务的HTTP处理器
type Handler struct {
	svc *companion.Service
}

// New 创建聊天处理器
func New(svc *companion.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleSendMessage)
	r.Get("/chat/history", h.handleHistory)
}

type sendRequest struct {
	Message string `json:"message"`
	Lang    string `json:"lang"`
	// DeviceID identifies an anonymous client that cannot set X-Device-ID.
	DeviceID string `json:"deviceId"`
}

type sendResponse struct {
	Response string `json:"response"`
	Limited  bool   `json:"limited,omitempty"`
}

// handleSendMessage 发送一条聊天消息。被配额静默拦截时返回 204。
func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var payload sendRequest
	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	lang := payload.Lang
	if lang == "" {
		lang = r.Header.Get("Accept-Language")
	}

	userID := middleware.UserFrom(r.Context())
	if userID == middleware.GuestUser {
		if id := middleware.DeviceUser(payload.DeviceID); id != "" {
			userID = id
		}
	}

	reply, err := h.svc.SendChatMessage(r.Context(), userID, payload.Message, lang)
	if err != nil {
		utils.RespondFailure(w, err, companion.IsValidation)
		return
	}
	if reply.Suppressed() {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	utils.RespondJSON(w, http.StatusOK, sendResponse{
		Response: reply.Text,
		Limited:  reply.Decision == quota.WarnOnce,
	})
}

// handleHistory 返回当前用户的全部聊天记录
func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.svc.ChatHistory(r.Context(), middleware.UserFrom(r.Context()))
	if err != nil {
		utils.RespondFailure(w, err, companion.IsValidation)
		return
	}
	utils.RespondJSON(w, http.StatusOK, history)
}
