package httpserver

import (
	"net/http"
	"strconv"

	"storefront/internal/domain"
	"storefront/internal/service/product"

	"github.com/gin-gonic/gin"
)

func (h *handlers) listProducts(c *gin.Context) {
	f := domain.ProductFilter{
		CategorySlug: c.Query("category"),
		Search:       c.DefaultQuery("search", c.Query("q")),
		FeaturedOnly: c.Query("featured") == "true",
		Limit:        queryInt(c, "limit", 20),
		Offset:       queryInt(c, "offset", 0),
	}
	if v := c.Query("customizable"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customizable"})
			return
		}
		f.Customizable = &b
	}
	products, err := h.deps.ProductSvc.List(c.Request.Context(), f)
	if err != nil {
		h.writeError(c, "product.list", err)
		return
	}
	c.JSON(http.StatusOK, emptyIfNil(products))
}

func (h *handlers) getProduct(c *gin.Context) {
	p, err := h.deps.ProductSvc.Get(c.Request.Context(), c.Param("ref"), false)
	if err != nil {
		h.writeError(c, "product.get", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) createProduct(c *gin.Context) {
	var req product.CreateInput
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.deps.ProductSvc.Create(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, "product.create", err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *handlers) updateProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req product.UpdateInput
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.deps.ProductSvc.Update(c.Request.Context(), id, req)
	if err != nil {
		h.writeError(c, "product.update", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) listCategories(c *gin.Context) {
	cats, err := h.deps.CategorySvc.List(c.Request.Context())
	if err != nil {
		h.writeError(c, "category.list", err)
		return
	}
	c.JSON(http.StatusOK, emptyIfNil(cats))
}

func (h *handlers) listShippingOptions(c *gin.Context) {
	opts, err := h.deps.ShippingSvc.Options(c.Request.Context())
	if err != nil {
		h.writeError(c, "shipping.options", err)
		return
	}
	c.JSON(http.StatusOK, emptyIfNil(opts))
}

func (h *handlers) getShippingOption(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	opt, err := h.deps.ShippingSvc.Option(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, "shipping.option", err)
		return
	}
	c.JSON(http.StatusOK, opt)
}

func (h *handlers) shippingRates(c *gin.Context) {
	rates, err := h.deps.ShippingSvc.Rates(c.Query("country"), c.Query("postal_code"))
	if err != nil {
		h.writeError(c, "shipping.rates", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rates": rates})
}
