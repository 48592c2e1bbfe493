package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"distributor-system/internal/database/models"
)

const (
	CATALOG_CACHE_PREFIX    = "catalog:"
	RETAILER_LIST_CACHE_KEY = "catalog:retailers"
	ITEM_LIST_CACHE_KEY     = "catalog:items"
	STOCK_LIST_CACHE_KEY    = "catalog:stock"
	CACHE_TTL_SHORT         = 5 * time.Minute
	CACHE_TTL_MEDIUM        = 30 * time.Minute
)

const (
	ErrKindInvalidInput     = "INVALID_INPUT"
	ErrKindRetailerNotFound = "RETAILER_NOT_FOUND"
	ErrKindItemNotFound     = "ITEM_NOT_FOUND"
	ErrKindDatabase         = "DATABASE_ERROR"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
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

type CatalogHandler struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewCatalogHandler(db *gorm.DB, redisClient *redis.Client) *CatalogHandler {
	return &CatalogHandler{
		db:    db,
		redis: redisClient,
	}
}

func (s *CatalogHandler) InvalidateCatalogCaches(ctx context.Context) {
	_ = s.redis.Del(ctx, RETAILER_LIST_CACHE_KEY, ITEM_LIST_CACHE_KEY, STOCK_LIST_CACHE_KEY)
}

// --- Requests ---

type CreateRetailerRequest struct {
	Shop        string `json:"shop" binding:"required"`
	Owner       string `json:"owner"`
	Phone       string `json:"phone"`
	CreditLimit string `json:"credit_limit"`
}

type CreateItemRequest struct {
	Name             string `json:"name" binding:"required"`
	HSNCode          string `json:"hsn_code"`
	ConversionFactor string `json:"conversion_factor" binding:"required"`
	Price            string `json:"price" binding:"required"`
	GSTRatePercent   string `json:"gst_rate_percent" binding:"required"`
}

// validateItemInput checks the decimal fields of a new item. The conversion
// factor must be strictly positive since piece quantities are divided by it.
func validateItemInput(conversionFactor, price, gstRate string) error {
	conv, err := decimal.NewFromString(conversionFactor)
	if err != nil {
		return errors.New("conversion_factor must be a decimal number")
	}
	if conv.Sign() <= 0 {
		return errors.New("conversion_factor must be greater than zero")
	}

	p, err := decimal.NewFromString(price)
	if err != nil {
		return errors.New("price must be a decimal number")
	}
	if p.Sign() < 0 {
		return errors.New("price must not be negative")
	}

	gst, err := decimal.NewFromString(gstRate)
	if err != nil {
		return errors.New("gst_rate_percent must be a decimal number")
	}
	if gst.Sign() < 0 {
		return errors.New("gst_rate_percent must not be negative")
	}

	return nil
}

func validateCreditLimit(creditLimit string) (string, error) {
	if creditLimit == "" {
		return "0.00", nil
	}
	limit, err := decimal.NewFromString(creditLimit)
	if err != nil {
		return "", errors.New("credit_limit must be a decimal number")
	}
	if limit.Sign() < 0 {
		return "", errors.New("credit_limit must not be negative")
	}
	return limit.StringFixed(2), nil
}

// --- Retailers ---

func (s *CatalogHandler) CreateRetailer(c *gin.Context) {
	var req CreateRetailerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(ErrKindInvalidInput, "Invalid request format"))
		return
	}

	creditLimit, err := validateCreditLimit(req.CreditLimit)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(ErrKindInvalidInput, err.Error()))
		return
	}

	retailer := models.Retailer{
		Shop:        req.Shop,
		Owner:       req.Owner,
		Phone:       req.Phone,
		CreditLimit: creditLimit,
	}

	if err := s.db.WithContext(c.Request.Context()).Create(&retailer).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(ErrKindDatabase, "Failed to create retailer"))
		return
	}

	s.InvalidateCatalogCaches(c.Request.Context())

	c.JSON(http.StatusCreated, successResponse("Retailer added", retailer))
}

func (s *CatalogHandler) ListRetailers(c *gin.Context) {
	ctx := c.Request.Context()

	if cached, err := s.redis.Get(ctx, RETAILER_LIST_CACHE_KEY).Result(); err == nil {
		var retailers []models.Retailer
		if err := json.Unmarshal([]byte(cached), &retailers); err == nil {
			c.JSON(http.StatusOK, successResponse("Retailers fetched", retailers))
			return
		}
	}

	var retailers []models.Retailer
	if err := s.db.WithContext(ctx).Order("id").Find(&retailers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(ErrKindDatabase, "Failed to list retailers"))
		return
	}

	if payload, err := json.Marshal(retailers); err == nil {
		s.redis.Set(ctx, RETAILER_LIST_CACHE_KEY, payload, CACHE_TTL_MEDIUM)
	}

	c.JSON(http.StatusOK, successResponse("Retailers fetched", retailers))
}

func (s *CatalogHandler) GetRetailer(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(ErrKindInvalidInput, "Invalid retailer id"))
		return
	}

	var retailer models.Retailer
	if err := s.db.WithContext(c.Request.Context()).Where("id = ?", id).First(&retailer).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, errorResponse(ErrKindRetailerNotFound, "Retailer not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse(ErrKindDatabase, "Database error"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Retailer fetched", retailer))
}

// --- Items ---

func (s *CatalogHandler) CreateItem(c *gin.Context) {
	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(ErrKindInvalidInput, "Invalid request format"))
		return
	}

	if err := validateItemInput(req.ConversionFactor, req.Price, req.GSTRatePercent); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(ErrKindInvalidInput, err.Error()))
		return
	}

	price, _ := decimal.NewFromString(req.Price)
	conv, _ := decimal.NewFromString(req.ConversionFactor)
	gst, _ := decimal.NewFromString(req.GSTRatePercent)

	item := models.Item{
		Name:             req.Name,
		HSNCode:          req.HSNCode,
		ConversionFactor: conv.String(),
		Price:            price.StringFixed(2),
		GSTRatePercent:   gst.String(),
		Stock:            "0",
	}

	if err := s.db.WithContext(c.Request.Context()).Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(ErrKindDatabase, "Failed to create item"))
		return
	}

	s.InvalidateCatalogCaches(c.Request.Context())

	c.JSON(http.StatusCreated, successResponse("Item added", item))
}

func (s *CatalogHandler) ListItems(c *gin.Context) {
	ctx := c.Request.Context()

	if cached, err := s.redis.Get(ctx, ITEM_LIST_CACHE_KEY).Result(); err == nil {
		var items []models.Item
		if err := json.Unmarshal([]byte(cached), &items); err == nil {
			c.JSON(http.StatusOK, successResponse("Items fetched", items))
			return
		}
	}

	var items []models.Item
	if err := s.db.WithContext(ctx).Order("id").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(ErrKindDatabase, "Failed to list items"))
		return
	}

	if payload, err := json.Marshal(items); err == nil {
		s.redis.Set(ctx, ITEM_LIST_CACHE_KEY, payload, CACHE_TTL_MEDIUM)
	}

	c.JSON(http.StatusOK, successResponse("Items fetched", items))
}

func (s *CatalogHandler) GetItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(ErrKindInvalidInput, "Invalid item id"))
		return
	}

	var item models.Item
	if err := s.db.WithContext(c.Request.Context()).Where("id = ?", id).First(&item).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, errorResponse(ErrKindItemNotFound, "Item not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse(ErrKindDatabase, "Database error"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Item fetched", item))
}

// --- Stock summary ---

type StockRow struct {
	ItemID int64  `json:"item_id"`
	Name   string `json:"name"`
	Stock  string `json:"stock"`
}

func (s *CatalogHandler) StockSummary(c *gin.Context) {
	ctx := c.Request.Context()

	if cached, err := s.redis.Get(ctx, STOCK_LIST_CACHE_KEY).Result(); err == nil {
		var rows []StockRow
		if err := json.Unmarshal([]byte(cached), &rows); err == nil {
			c.JSON(http.StatusOK, successResponse("Stock summary fetched", rows))
			return
		}
	}

	var rows []StockRow
	if err := s.db.WithContext(ctx).
		Model(&models.Item{}).
		Select("id AS item_id, name, stock").
		Order("id").
		Scan(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(ErrKindDatabase, "Failed to fetch stock summary"))
		return
	}

	if payload, err := json.Marshal(rows); err == nil {
		s.redis.Set(ctx, STOCK_LIST_CACHE_KEY, payload, CACHE_TTL_SHORT)
	}

	c.JSON(http.StatusOK, successResponse("Stock summary fetched", rows))
}
