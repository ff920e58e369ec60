package httpserver

import (
	"net/http"

	"storefront/internal/service/order"

	"github.com/gin-gonic/gin"
)

func (h *handlers) listOrders(c *gin.Context) {
	orders, err := h.deps.OrderSvc.List(c.Request.Context(), userID(c), queryInt(c, "limit", 20), queryInt(c, "offset", 0))
	if err != nil {
		h.writeError(c, "order.list", err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponses(orders))
}

func (h *handlers) getOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	o, err := h.deps.OrderSvc.Get(c.Request.Context(), userID(c), id)
	if err != nil {
		h.writeError(c, "order.get", err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*o))
}

func (h *handlers) createOrder(c *gin.Context) {
	var req order.CheckoutInput
	if !bindJSON(c, &req) {
		return
	}
	o, err := h.deps.OrderSvc.Create(c.Request.Context(), userID(c), req)
	if err != nil {
		h.writeError(c, "order.create", err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(*o))
}

func (h *handlers) cancelOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	o, err := h.deps.OrderSvc.Cancel(c.Request.Context(), userID(c), id)
	if err != nil {
		h.writeError(c, "order.cancel", err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*o))
}

func (h *handlers) updateOrderStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req order.UpdateStatusInput
	if !bindJSON(c, &req) {
		return
	}
	o, err := h.deps.OrderSvc.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		h.writeError(c, "order.update_status", err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*o))
}
