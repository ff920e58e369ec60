package httpserver

import (
	"net/http"

	"storefront/internal/service/auth"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h *handlers) register(c *gin.Context) {
	var req auth.RegisterInput
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.deps.AuthSvc.Register(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, "auth.register", err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	sess, err := h.deps.AuthSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, "auth.login", err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *handlers) refresh(c *gin.Context) {
	var req refreshRequest
	if !bindJSON(c, &req) {
		return
	}
	sess, err := h.deps.AuthSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.writeError(c, "auth.refresh", err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *handlers) logout(c *gin.Context) {
	var req refreshRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.deps.AuthSvc.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		h.writeError(c, "auth.logout", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) me(c *gin.Context) {
	u, err := h.deps.AuthSvc.Me(c.Request.Context(), userID(c))
	if err != nil {
		h.writeError(c, "auth.me", err)
		return
	}
	c.JSON(http.StatusOK, u)
}
