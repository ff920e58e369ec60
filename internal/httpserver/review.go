package httpserver

import (
	"net/http"

	"storefront/internal/service/review"

	"github.com/gin-gonic/gin"
)

func (h *handlers) relatedProducts(c *gin.Context) {
	products, err := h.deps.ProductSvc.Related(c.Request.Context(), c.Param("ref"), queryInt(c, "limit", 4))
	if err != nil {
		h.writeError(c, "product.related", err)
		return
	}
	c.JSON(http.StatusOK, emptyIfNil(products))
}

func (h *handlers) listReviews(c *gin.Context) {
	list, err := h.deps.ReviewSvc.List(c.Request.Context(), c.Param("ref"), queryInt(c, "limit", 20), queryInt(c, "offset", 0))
	if err != nil {
		h.writeError(c, "review.list", err)
		return
	}
	c.JSON(http.StatusOK, emptyIfNil(list))
}

func (h *handlers) createReview(c *gin.Context) {
	var req review.CreateInput
	if !bindJSON(c, &req) {
		return
	}
	rv, err := h.deps.ReviewSvc.Create(c.Request.Context(), userID(c), c.Param("ref"), req)
	if err != nil {
		h.writeError(c, "review.create", err)
		return
	}
	c.JSON(http.StatusCreated, rv)
}
