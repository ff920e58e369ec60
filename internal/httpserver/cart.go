package httpserver

import (
	"net/http"

	"storefront/internal/service/cart"

	"github.com/gin-gonic/gin"
)

type updateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

func (h *handlers) getCart(c *gin.Context) {
	ct, err := h.deps.CartSvc.Get(c.Request.Context(), userID(c))
	if err != nil {
		h.writeError(c, "cart.get", err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(*ct))
}

func (h *handlers) addCartItem(c *gin.Context) {
	var req cart.AddItemInput
	if !bindJSON(c, &req) {
		return
	}
	ct, err := h.deps.CartSvc.AddItem(c.Request.Context(), userID(c), req)
	if err != nil {
		h.writeError(c, "cart.add_item", err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(*ct))
}

func (h *handlers) updateCartItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updateCartItemRequest
	if !bindJSON(c, &req) {
		return
	}
	ct, err := h.deps.CartSvc.UpdateItem(c.Request.Context(), userID(c), id, req.Quantity)
	if err != nil {
		h.writeError(c, "cart.update_item", err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(*ct))
}

func (h *handlers) removeCartItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	removed, err := h.deps.CartSvc.RemoveItem(c.Request.Context(), userID(c), id)
	if err != nil {
		h.writeError(c, "cart.remove_item", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func (h *handlers) clearCart(c *gin.Context) {
	n, err := h.deps.CartSvc.Clear(c.Request.Context(), userID(c))
	if err != nil {
		h.writeError(c, "cart.clear", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": n})
}
