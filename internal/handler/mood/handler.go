package mood

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/mind-chat/backend/internal/middleware"
	"github.com/zhouzirui/mind-chat/backend/internal/model/mood"
	"github.com/zhouzirui/mind-chat/backend/internal/service/companion"
	"github.com/zhouzirui/mind-chat/backend/pkg/utils"
)

// Handler 情绪记录与统计的HTTP处理器
type Handler struct {
	svc *companion.Service
}

// New 创建情绪处理器
func New(svc *companion.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes 注册需要用户身份的情绪路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/moods", h.handleSaveMood)
	r.Get("/moods", h.handleListByMonth)
	r.Get("/moods/all", h.handleListAll)
	r.Get("/moods/stats", h.handleStats)
}

// RegisterPublicRoutes 注册无需用户身份的路由
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/moods/taxonomy", h.handleTaxonomy)
}

type saveRequest struct {
	companion.MoodInput
	Lang string `json:"lang"`
}

func (h *Handler) handleSaveMood(w http.ResponseWriter, r *http.Request) {
	var payload saveRequest
	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	lang := payload.Lang
	if lang == "" {
		lang = r.Header.Get("Accept-Language")
	}

	result, err := h.svc.SaveMoodDirect(r.Context(), middleware.UserFrom(r.Context()), payload.MoodInput, lang)
	if err != nil {
		utils.RespondFailure(w, err, companion.IsValidation)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, result)
}

// handleListByMonth 按月份查询，year 和 month 均为必填。
func (h *Handler) handleListByMonth(w http.ResponseWriter, r *http.Request) {
	year, err := intParam(r, "year")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	month, err := intParam(r, "month")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := h.svc.MoodsByMonth(r.Context(), middleware.UserFrom(r.Context()), year, month)
	if err != nil {
		utils.RespondFailure(w, err, companion.IsValidation)
		return
	}
	utils.RespondJSON(w, http.StatusOK, records)
}

func (h *Handler) handleListAll(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.AllMoods(r.Context(), middleware.UserFrom(r.Context()))
	if err != nil {
		utils.RespondFailure(w, err, companion.IsValidation)
		return
	}
	utils.RespondJSON(w, http.StatusOK, records)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.GetStatistics(r.Context(), middleware.UserFrom(r.Context()))
	if err != nil {
		utils.RespondFailure(w, err, companion.IsValidation)
		return
	}
	utils.RespondJSON(w, http.StatusOK, s)
}

type taxonomyEntry struct {
	Main mood.Main  `json:"main"`
	Subs []mood.Sub `json:"subs"`
}

func (h *Handler) handleTaxonomy(w http.ResponseWriter, _ *http.Request) {
	mains := mood.Mains()
	out := make([]taxonomyEntry, 0, len(mains))
	for _, m := range mains {
		out = append(out, taxonomyEntry{Main: m, Subs: mood.Subs(m)})
	}
	utils.RespondJSON(w, http.StatusOK, out)
}

func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("%s query parameter is required", name)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q", name, raw)
	}
	return v, nil
}
