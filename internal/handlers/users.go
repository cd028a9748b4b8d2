package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"taskboard/backend/internal/services"
)

type UserHandler struct {
	db          *gorm.DB
	userService services.UserService
}

func NewUserHandler(db *gorm.DB, userService services.UserService) *UserHandler {
	return &UserHandler{db: db, userService: userService}
}

type UserSummary struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

// GetUsers lists all users so an admin can pick an assignee. Any
// authenticated principal may call it; only summary fields are exposed.
func (h *UserHandler) GetUsers(c *gin.Context) {
	if _, ok := principalFromContext(c); !ok {
		return
	}

	users, err := h.userService.ListUsers(h.db)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]UserSummary, 0, len(users))
	for _, user := range users {
		response = append(response, UserSummary{
			ID:        user.ID.String(),
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Email:     user.Email,
			Role:      user.Role,
		})
	}

	c.JSON(http.StatusOK, response)
}
