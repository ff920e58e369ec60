package httpserver

import (
	"net/http"

	"storefront/internal/service/address"

	"github.com/gin-gonic/gin"
)

func (h *handlers) listAddresses(c *gin.Context) {
	list, err := h.deps.AddressSvc.List(c.Request.Context(), userID(c))
	if err != nil {
		h.writeError(c, "address.list", err)
		return
	}
	c.JSON(http.StatusOK, emptyIfNil(list))
}

func (h *handlers) createAddress(c *gin.Context) {
	var req address.Input
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.deps.AddressSvc.Create(c.Request.Context(), userID(c), req)
	if err != nil {
		h.writeError(c, "address.create", err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *handlers) getAddress(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	a, err := h.deps.AddressSvc.Get(c.Request.Context(), userID(c), id)
	if err != nil {
		h.writeError(c, "address.get", err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *handlers) updateAddress(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req address.Input
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.deps.AddressSvc.Update(c.Request.Context(), userID(c), id, req)
	if err != nil {
		h.writeError(c, "address.update", err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *handlers) deleteAddress(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.deps.AddressSvc.Delete(c.Request.Context(), userID(c), id); err != nil {
		h.writeError(c, "address.delete", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) setDefaultAddress(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	a, err := h.deps.AddressSvc.SetDefault(c.Request.Context(), userID(c), id)
	if err != nil {
		h.writeError(c, "address.set_default", err)
		return
	}
	c.JSON(http.StatusOK, a)
}
