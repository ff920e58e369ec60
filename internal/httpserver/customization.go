package httpserver

import (
	"net/http"

	"storefront/internal/service/customization"

	"github.com/gin-gonic/gin"
)

func (h *handlers) saveCustomization(c *gin.Context) {
	var req customization.SaveInput
	if !bindJSON(c, &req) {
		return
	}
	saved, err := h.deps.CustomizationSvc.Save(c.Request.Context(), userID(c), req)
	if err != nil {
		h.writeError(c, "customization.save", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":            true,
		"customization_id":   saved.ID,
		"rendered_image_url": saved.RenderedImageURL,
	})
}

func (h *handlers) listCustomizations(c *gin.Context) {
	list, err := h.deps.CustomizationSvc.List(c.Request.Context(), userID(c))
	if err != nil {
		h.writeError(c, "customization.list", err)
		return
	}
	c.JSON(http.StatusOK, emptyIfNil(list))
}

func (h *handlers) getCustomization(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	got, err := h.deps.CustomizationSvc.Get(c.Request.Context(), userID(c), id)
	if err != nil {
		h.writeError(c, "customization.get", err)
		return
	}
	c.JSON(http.StatusOK, got)
}

func (h *handlers) generateImage(c *gin.Context) {
	var req customization.GenerateInput
	if !bindJSON(c, &req) {
		return
	}
	url, err := h.deps.CustomizationSvc.GenerateImage(c.Request.Context(), userID(c), req)
	if err != nil {
		h.writeError(c, "customization.generate_image", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "image_url": url})
}
