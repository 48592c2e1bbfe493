package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"distributor-system/internal/database/models"
	"distributor-system/internal/utils"
)

const tokenTTL = 24 * time.Hour

const (
	ErrKindInvalidInput = "INVALID_INPUT"
	ErrKindUnauthorized = "UNAUTHORIZED"
	ErrKindDatabase     = "DATABASE_ERROR"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func successResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func errorResponse(kind, message string) APIResponse {
	return APIResponse{
		Success: false,
		Message: message,
		Error:   kind,
	}
}

type UserHandler struct {
	db *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Fullname string `json:"fullname" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(ErrKindInvalidInput, "Invalid request format"))
		return
	}

	pwHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(ErrKindDatabase, "Error hashing password"))
		return
	}

	user := models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(pwHash),
		Fullname: req.Fullname,
		IsActive: true,
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "unique") {
			c.JSON(http.StatusConflict, errorResponse(ErrKindInvalidInput, "Username or email already taken"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse(ErrKindDatabase, "Failed to create user"))
		return
	}

	c.JSON(http.StatusCreated, successResponse("User registered", user))
}

func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(ErrKindInvalidInput, "Invalid request format"))
		return
	}

	ctx := c.Request.Context()

	var user models.User
	if err := h.db.WithContext(ctx).Where("username = ?", req.Username).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusUnauthorized, errorResponse(ErrKindUnauthorized, "Invalid username or password"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse(ErrKindDatabase, "Database error"))
		return
	}

	if !user.IsActive {
		c.JSON(http.StatusUnauthorized, errorResponse(ErrKindUnauthorized, "Account is disabled"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, errorResponse(ErrKindUnauthorized, "Invalid username or password"))
		return
	}

	token, exp, err := utils.GenerateToken(user.ID, user.Username, tokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(ErrKindDatabase, "Failed to issue token"))
		return
	}

	now := time.Now()
	h.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Update("last_login", &now)

	c.JSON(http.StatusOK, successResponse("Login successful", gin.H{
		"token":      token,
		"expires_at": exp,
		"user":       user,
	}))
}
