package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/estate_go_server/internal/api/middleware"
	"github.com/qs3c/estate_go_server/internal/model/dto"
	"github.com/qs3c/estate_go_server/internal/pkg/response"
	"github.com/qs3c/estate_go_server/internal/service"
)

type SubscriptionHandler struct {
	subService *service.SubscriptionService
}

func NewSubscriptionHandler(subService *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		subService: subService,
	}
}

// ListPlans 套餐列表
// GET /api/v1/subscription/plans
func (h *SubscriptionHandler) ListPlans(c *gin.Context) {
	plans, err := h.subService.ListPlans()
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, plans)
}

// Verify 校验购买并激活订阅
// POST /api/v1/subscription/verify
func (h *SubscriptionHandler) Verify(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req dto.VerifySubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	sub, period, err := h.subService.Activate(c.Request.Context(), userID, req.ProductID, req.PurchaseToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownPlan):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrDuplicateToken):
			response.DuplicateError(c, err.Error())
		case errors.Is(err, service.ErrVerificationFailed):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	resp := &dto.VerifySubscriptionResponse{
		Status: "valid",
		PlanID: period.PlanID,
	}
	if sub.ExpiresAt != nil {
		resp.ExpiryTimeMs = sub.ExpiresAt.UnixMilli()
		resp.ExpiresAt = sub.ExpiresAt.Format(time.RFC3339)
	}
	response.Success(c, resp)
}
