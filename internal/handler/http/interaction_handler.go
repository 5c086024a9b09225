package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Deokive/BE-sub001/internal/domain/contract"
	"github.com/Deokive/BE-sub001/internal/handler/http/dto"
	"github.com/Deokive/BE-sub001/internal/handler/http/middleware"
	usecasecontract "github.com/Deokive/BE-sub001/internal/usecase/contract"
)

// InteractionHandlerInterface defines the handler methods for like, view and
// stats interactions.
type InteractionHandlerInterface interface {
	ToggleLikeHandler(*gin.Context)
	GetLikeStateHandler(*gin.Context)
	GetLikeCountHandler(*gin.Context)
	RegisterViewHandler(*gin.Context)
	GetStatsHandler(*gin.Context)
}

// Ensure InteractionHandler implements InteractionHandlerInterface
var _ InteractionHandlerInterface = (*InteractionHandler)(nil)

type InteractionHandler struct {
	likeUsecase  usecasecontract.ILikeUsecase
	viewUsecase  usecasecontract.IViewUsecase
	statsUsecase usecasecontract.IStatsUsecase
}

func NewInteractionHandler(likeUsecase usecasecontract.ILikeUsecase, viewUsecase usecasecontract.IViewUsecase, statsUsecase usecasecontract.IStatsUsecase) *InteractionHandler {
	return &InteractionHandler{
		likeUsecase:  likeUsecase,
		viewUsecase:  viewUsecase,
		statsUsecase: statsUsecase,
	}
}

// ToggleLikeHandler flips the authenticated actor's like on the entity and
// returns the new state. Cache-backend failures surface as 500: the like
// path is built on the cache layer and has no fallback.
func (h *InteractionHandler) ToggleLikeHandler(c *gin.Context) {
	domain, entityID, ok := entityParams(c)
	if !ok {
		return
	}
	actorID, ok := actorFromContext(c)
	if !ok {
		return
	}

	liked, err := h.likeUsecase.ToggleLike(c.Request.Context(), domain, entityID, actorID)
	if err != nil {
		ErrorHandler(c, http.StatusInternalServerError, err.Error())
		return
	}
	SuccessHandler(c, http.StatusOK, dto.LikeResponse{Liked: liked})
}

// GetLikeStateHandler reports whether the authenticated actor likes the entity.
func (h *InteractionHandler) GetLikeStateHandler(c *gin.Context) {
	domain, entityID, ok := entityParams(c)
	if !ok {
		return
	}
	actorID, ok := actorFromContext(c)
	if !ok {
		return
	}

	liked, err := h.likeUsecase.IsLiked(c.Request.Context(), domain, entityID, actorID)
	if err != nil {
		ErrorHandler(c, http.StatusInternalServerError, err.Error())
		return
	}
	SuccessHandler(c, http.StatusOK, dto.LikeResponse{Liked: liked})
}

// GetLikeCountHandler returns the live like count of the entity.
func (h *InteractionHandler) GetLikeCountHandler(c *gin.Context) {
	domain, entityID, ok := entityParams(c)
	if !ok {
		return
	}

	count, err := h.likeUsecase.GetLikeCount(c.Request.Context(), domain, entityID)
	if err != nil {
		ErrorHandler(c, http.StatusInternalServerError, err.Error())
		return
	}
	SuccessHandler(c, http.StatusOK, dto.LikeCountResponse{Count: count})
}

// RegisterViewHandler counts one view unless the viewer is inside the dedup
// window. Viewers can be anonymous: the identity falls back to the client IP.
func (h *InteractionHandler) RegisterViewHandler(c *gin.Context) {
	domain, entityID, ok := entityParams(c)
	if !ok {
		return
	}

	viewer := c.ClientIP()
	if userIDAny, exists := c.Get(middleware.UserIDKey); exists {
		if userID, ok := userIDAny.(string); ok && userID != "" {
			viewer = userID
		}
	}

	counted, err := h.viewUsecase.RegisterView(c.Request.Context(), domain, entityID, viewer)
	if err != nil {
		ErrorHandler(c, http.StatusInternalServerError, err.Error())
		return
	}
	SuccessHandler(c, http.StatusOK, dto.ViewResponse{Counted: counted})
}

// GetStatsHandler returns the reconciled aggregates (view count, like count,
// hot score) from the durable store. 404 until the entity has interactions.
func (h *InteractionHandler) GetStatsHandler(c *gin.Context) {
	domain, entityID, ok := entityParams(c)
	if !ok {
		return
	}

	stats, err := h.statsUsecase.GetStats(c.Request.Context(), domain, entityID)
	if err != nil {
		if errors.Is(err, contract.ErrStatsNotFound) {
			ErrorHandler(c, http.StatusNotFound, err.Error())
			return
		}
		ErrorHandler(c, http.StatusInternalServerError, err.Error())
		return
	}
	SuccessHandler(c, http.StatusOK, stats)
}

func actorFromContext(c *gin.Context) (string, bool) {
	userIDAny, exists := c.Get(middleware.UserIDKey)
	if !exists {
		ErrorHandler(c, http.StatusUnauthorized, "User not authenticated")
		return "", false
	}
	userID, ok := userIDAny.(string)
	if !ok || userID == "" {
		ErrorHandler(c, http.StatusBadRequest, "Invalid user ID format in token")
		return "", false
	}
	return userID, true
}
