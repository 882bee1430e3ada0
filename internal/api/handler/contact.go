package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/estate_go_server/internal/api/middleware"
	"github.com/qs3c/estate_go_server/internal/pkg/delivery"
	"github.com/qs3c/estate_go_server/internal/pkg/response"
	"github.com/qs3c/estate_go_server/internal/service"
)

type ContactHandler struct {
	contactService *service.ContactService
	authService    *service.AuthService
	gateway        *delivery.Gateway
}

func NewContactHandler(contactService *service.ContactService, authService *service.AuthService, gateway *delivery.Gateway) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
		authService:    authService,
		gateway:        gateway,
	}
}

// Reveal 解锁联系方式
// GET /api/v1/listings/:id/contact
func (h *ContactHandler) Reveal(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}
	userID, _ := middleware.GetUserID(c)

	reveal, err := h.contactService.Reveal(userID, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrListingNotFound):
			// 未过审房源与不存在的房源不可区分
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrQuotaExhausted):
			response.QuotaError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	// 通知尽力而为，不阻塞也不影响解锁结果
	if h.gateway != nil {
		if user, err := h.authService.GetUserByID(userID); err == nil {
			notice := delivery.ContactRevealNotice{
				CustomerEmail: user.Email,
				CustomerPhone: user.Phone,
				AdNumber:      reveal.AdNumber,
				OwnerName:     reveal.OwnerName,
				OwnerPhone:    reveal.Phone,
				OwnerEmail:    reveal.Email,
				CompanyName:   reveal.CompanyName,
			}
			go h.gateway.NotifyContactReveal(notice)
		}
	}

	response.Success(c, reveal)
}
