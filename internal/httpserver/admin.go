package httpserver

import (
	"context"
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/service/category"
	"storefront/internal/service/shipping"

	"github.com/gin-gonic/gin"
)

func (h *handlers) publishProduct(c *gin.Context) {
	h.setProductStatus(c, "product.publish", h.deps.ProductSvc.Publish)
}

func (h *handlers) archiveProduct(c *gin.Context) {
	h.setProductStatus(c, "product.archive", h.deps.ProductSvc.Archive)
}

func (h *handlers) setProductStatus(c *gin.Context, op string, set func(ctx context.Context, id int64) (*domain.Product, error)) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := set(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, op, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) deleteProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.deps.ProductSvc.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, "product.delete", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) listAllCategories(c *gin.Context) {
	cats, err := h.deps.CategorySvc.ListAll(c.Request.Context())
	if err != nil {
		h.writeError(c, "category.list_all", err)
		return
	}
	c.JSON(http.StatusOK, emptyIfNil(cats))
}

func (h *handlers) createCategory(c *gin.Context) {
	var req category.Input
	if !bindJSON(c, &req) {
		return
	}
	cat, err := h.deps.CategorySvc.Create(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, "category.create", err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (h *handlers) updateCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req category.Input
	if !bindJSON(c, &req) {
		return
	}
	cat, err := h.deps.CategorySvc.Update(c.Request.Context(), id, req)
	if err != nil {
		h.writeError(c, "category.update", err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *handlers) deleteCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.deps.CategorySvc.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, "category.delete", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) listAllShippingOptions(c *gin.Context) {
	opts, err := h.deps.ShippingSvc.AllOptions(c.Request.Context())
	if err != nil {
		h.writeError(c, "shipping.all_options", err)
		return
	}
	c.JSON(http.StatusOK, emptyIfNil(opts))
}

func (h *handlers) createShippingOption(c *gin.Context) {
	var req shipping.OptionInput
	if !bindJSON(c, &req) {
		return
	}
	opt, err := h.deps.ShippingSvc.CreateOption(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, "shipping.create_option", err)
		return
	}
	c.JSON(http.StatusCreated, opt)
}

func (h *handlers) updateShippingOption(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req shipping.OptionInput
	if !bindJSON(c, &req) {
		return
	}
	opt, err := h.deps.ShippingSvc.UpdateOption(c.Request.Context(), id, req)
	if err != nil {
		h.writeError(c, "shipping.update_option", err)
		return
	}
	c.JSON(http.StatusOK, opt)
}

func (h *handlers) deleteShippingOption(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.deps.ShippingSvc.DeleteOption(c.Request.Context(), id); err != nil {
		h.writeError(c, "shipping.delete_option", err)
		return
	}
	c.Status(http.StatusNoContent)
}
