package handlers

import (
	"net/http"

	"github.com/electroitzone/report-dashboard/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service   *service.AuthService
	storeName string
}

func NewAuthHandler(service *service.AuthService, storeName string) *AuthHandler {
	return &AuthHandler{service: service, storeName: storeName}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login checks credentials against the store database.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondError(c, h.storeName, err)
		return
	}

	res, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, h.storeName, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
