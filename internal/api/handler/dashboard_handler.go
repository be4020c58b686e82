package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kisaanconnect/marketplace/internal/core/domain"
)

type DashboardHandler struct{}

func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{}
}

type dashboardResponse struct {
	Dashboard domain.Role `json:"dashboard"`
	Message   string      `json:"message"`
	Username  string      `json:"username"`
	ID        int64       `json:"id"`
}

// Farmer godoc
//
// @Summary      Farmer dashboard
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200   {object}  dashboardResponse
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /dashboard/farmer [get]
func (h *DashboardHandler) Farmer(c echo.Context) error {
	return h.render(c, domain.RoleFarmer)
}

// Consumer godoc
//
// @Summary      Consumer dashboard
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200   {object}  dashboardResponse
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /dashboard/consumer [get]
func (h *DashboardHandler) Consumer(c echo.Context) error {
	return h.render(c, domain.RoleConsumer)
}

func (h *DashboardHandler) render(c echo.Context, dashboard domain.Role) error {
	user, ok := c.Get("user").(*domain.User)
	if !ok || user == nil {
		return domain.ErrTokenInvalid
	}
	return c.JSON(http.StatusOK, dashboardResponse{
		Dashboard: dashboard,
		Message:   fmt.Sprintf("Welcome to your %s dashboard, %s!", dashboard, user.Username),
		Username:  user.Username,
		ID:        user.ID,
	})
}
