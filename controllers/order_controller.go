package controllers

import (
	"context"
	"encoding/json"

	"furniture-shop/middleware"
	"furniture-shop/models"
	"furniture-shop/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const IdempotencyHeader = "Idempotency-Key"

type IdempotencyStore interface {
	Key(sessionID, requestKey string) string
	Claim(ctx context.Context, key string) (bool, error)
	Complete(ctx context.Context, key string, body []byte) error
	Result(ctx context.Context, key string) ([]byte, error)
	Release(ctx context.Context, key string) error
}

type OrderController struct {
	checkout *services.CheckoutService
	idem     IdempotencyStore
	log      *zap.Logger
}

func NewOrderController(checkout *services.CheckoutService, idem IdempotencyStore, log *zap.Logger) *OrderController {
	return &OrderController{checkout: checkout, idem: idem, log: log}
}

// @Summary Checkout
// @Description Creates an order from the session cart. The cart is cleared only when the order was accepted.
// @Tags Orders
// @Accept json
// @Produce json
// @Param X-Cart-Session header string true "Cart session token"
// @Param Idempotency-Key header string false "Retry key"
// @Param request body models.CheckoutRequest true "Shipping details"
// @Success 201 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /checkout [post]
func (ctrl *OrderController) Checkout(c *gin.Context) {
	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	sessionID := middleware.SessionID(c)

	var key string
	if requestKey := c.GetHeader(IdempotencyHeader); requestKey != "" && ctrl.idem != nil {
		key = ctrl.idem.Key(sessionID, requestKey)
		claimed, err := ctrl.idem.Claim(ctx, key)
		if err != nil {
			respondError(c, ctrl.log, err)
			return
		}
		if !claimed {
			ctrl.replay(c, key)
			return
		}
	}

	receipt, intent, err := ctrl.checkout.PlaceOrder(ctx, sessionID, req.Customer)
	if err != nil {
		if key != "" {
			if rerr := ctrl.idem.Release(ctx, key); rerr != nil {
				ctrl.log.Warn("release idempotency key", zap.String("key", key), zap.Error(rerr))
			}
		}
		respondError(c, ctrl.log, err)
		return
	}

	body := gin.H{
		"success": true,
		"message": "Order created",
		"data": gin.H{
			"order_id":    receipt.OrderID,
			"session_url": receipt.SessionURL,
			"order":       intent,
		},
	}
	if key != "" {
		if raw, err := json.Marshal(body); err == nil {
			if err := ctrl.idem.Complete(ctx, key, raw); err != nil {
				ctrl.log.Warn("store idempotent response", zap.String("key", key), zap.Error(err))
			}
		}
	}
	c.JSON(201, body)
}

func (ctrl *OrderController) replay(c *gin.Context, key string) {
	raw, err := ctrl.idem.Result(c.Request.Context(), key)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	if raw == nil {
		c.JSON(409, gin.H{
			"success": false,
			"message": "Checkout already in progress",
		})
		return
	}
	c.Data(201, "application/json; charset=utf-8", raw)
}
