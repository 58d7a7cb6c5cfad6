package journal

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/mind-chat/backend/internal/middleware"
	"github.com/zhouzirui/mind-chat/backend/internal/service/companion"
	"github.com/zhouzirui/mind-chat/backend/pkg/utils"
)

// Handler 日记相关的HTTP处理器
type Handler struct {
	svc *companion.Service
}

// New 创建日记处理器
func New(svc *companion.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes 注册日记路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/notes", h.handleSaveNote)
	r.Get("/notes", h.handleListNotes)
}

type saveRequest struct {
	Content string `json:"content"`
	// Date 为空表示今天（UTC）。
	Date string `json:"date"`
}

// handleSaveNote 保存日记并尝试识别当天情绪
func (h *Handler) handleSaveNote(w http.ResponseWriter, r *http.Request) {
	var payload saveRequest
	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svc.SaveNoteAndClassify(r.Context(), middleware.UserFrom(r.Context()), payload.Content, payload.Date)
	if err != nil {
		utils.RespondFailure(w, err, companion.IsValidation)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, result)
}

func (h *Handler) handleListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.svc.Notes(r.Context(), middleware.UserFrom(r.Context()), r.URL.Query().Get("date"))
	if err != nil {
		utils.RespondFailure(w, err, companion.IsValidation)
		return
	}
	utils.RespondJSON(w, http.StatusOK, notes)
}
