package users

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandlers provides HTTP handlers for user operations
type UserHandlers struct {
	userService UserService
	logger      *zap.Logger
}

// NewUserHandlers creates new user handlers
func NewUserHandlers(userService UserService, logger *zap.Logger) *UserHandlers {
	return &UserHandlers{
		userService: userService,
		logger:      logger,
	}
}

// RegisterRoutes registers all user routes on router
func (h *UserHandlers) RegisterRoutes(router gin.IRouter) {
	users := router.Group("/users")
	{
		users.GET("", h.ListUsers)
		users.POST("", h.CreateUser)
		users.GET("/search", h.SearchUsers)
		users.PUT("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)
	}
}

func (h *UserHandlers) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list users", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read users."})
		return
	}

	c.PureJSON(http.StatusOK, users)
}

func (h *UserHandlers) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := bindBody(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body."})
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), &req)
	if err != nil {
		if IsValidation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name and age are required. Age must be a number."})
			return
		}
		h.logger.Error("Failed to create user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save user."})
		return
	}

	h.logger.Info("User created", zap.Int64("user_id", user.ID))
	c.PureJSON(http.StatusCreated, user)
}

func (h *UserHandlers) UpdateUser(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID."})
		return
	}

	var req UpdateUserRequest
	if err := bindBody(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body."})
		return
	}

	user, err := h.userService.UpdateUser(c.Request.Context(), id, &req)
	if err != nil {
		switch {
		case IsValidation(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Provide at least name or age (number) to update."})
		case IsNotFound(err):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found."})
		default:
			h.logger.Error("Failed to update user", zap.Int64("user_id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user."})
		}
		return
	}

	c.PureJSON(http.StatusOK, user)
}

func (h *UserHandlers) DeleteUser(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID."})
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), id); err != nil {
		if IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found."})
			return
		}
		h.logger.Error("Failed to delete user", zap.Int64("user_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user."})
		return
	}

	h.logger.Info("User deleted", zap.Int64("user_id", id))
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully."})
}

func (h *UserHandlers) SearchUsers(c *gin.Context) {
	query := c.Query("name")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": `Query parameter "name" is required.`})
		return
	}

	users, err := h.userService.SearchUsers(c.Request.Context(), query)
	if err != nil {
		if IsValidation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": `Query parameter "name" is required.`})
			return
		}
		h.logger.Error("Failed to search users", zap.String("query", query), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search users."})
		return
	}

	c.PureJSON(http.StatusOK, users)
}

// bindBody decodes a JSON body into dst. An empty body decodes as {}.
func bindBody(c *gin.Context, dst interface{}) error {
	data, err := c.GetRawData()
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	return json.Unmarshal(data, dst)
}

func userID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
