package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"distributor-system/internal/database/models"
)

const (
	ErrKindInvalidInput     = "INVALID_INPUT"
	ErrKindRetailerNotFound = "RETAILER_NOT_FOUND"
	ErrKindItemNotFound     = "ITEM_NOT_FOUND"
	ErrKindOrderNotFound    = "ORDER_NOT_FOUND"
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

func successWithMetaResponse(message string, data interface{}, meta interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    meta,
	}
}

func errorResponse(kind, message string) APIResponse {
	return APIResponse{
		Success: false,
		Message: message,
		Error:   kind,
	}
}

type OrdersHandler struct {
	db *gorm.DB
}

func NewOrdersHandler(db *gorm.DB) *OrdersHandler {
	return &OrdersHandler{db: db}
}

// --- Requests ---

type OrderLineRequest struct {
	ItemID   int64  `json:"item_id" binding:"required"`
	Quantity string `json:"quantity" binding:"required"`
	Unit     string `json:"unit" binding:"required"`
}

type CreateOrderRequest struct {
	RetailerID int64              `json:"retailer_id" binding:"required"`
	Lines      []OrderLineRequest `json:"lines" binding:"required,min=1,dive"`
}

type ListOrdersQuery struct {
	Status   string `form:"status"`
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size,default=10"`
}

// parsePositiveQuantity parses a line quantity and rejects zero or
// negative values.
func parsePositiveQuantity(qty string) (decimal.Decimal, error) {
	q, err := decimal.NewFromString(qty)
	if err != nil {
		return decimal.Zero, errors.New("quantity must be a decimal number")
	}
	if q.Sign() <= 0 {
		return decimal.Zero, errors.New("quantity must be greater than zero")
	}
	return q, nil
}

func validateUnit(unit string) error {
	switch unit {
	case models.UnitBox, models.UnitPiece:
		return nil
	default:
		return errors.New("unit must be BOX or PCS")
	}
}

// --- Handlers ---

func (s *OrdersHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(ErrKindInvalidInput, "Invalid request format"))
		return
	}

	lines := make([]models.OrderLine, 0, len(req.Lines))
	for _, line := range req.Lines {
		qty, err := parsePositiveQuantity(line.Quantity)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse(ErrKindInvalidInput, err.Error()))
			return
		}
		if err := validateUnit(line.Unit); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse(ErrKindInvalidInput, err.Error()))
			return
		}
		lines = append(lines, models.OrderLine{
			ItemID:   line.ItemID,
			Quantity: qty.String(),
			Unit:     line.Unit,
		})
	}

	ctx := c.Request.Context()

	var retailer models.Retailer
	if err := s.db.WithContext(ctx).Where("id = ?", req.RetailerID).First(&retailer).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, errorResponse(ErrKindRetailerNotFound, "Retailer not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse(ErrKindDatabase, "Database error"))
		return
	}

	itemIDs := make([]int64, 0, len(lines))
	for _, line := range lines {
		itemIDs = append(itemIDs, line.ItemID)
	}

	var itemCount int64
	if err := s.db.WithContext(ctx).Model(&models.Item{}).
		Where("id IN ?", itemIDs).
		Distinct("id").
		Count(&itemCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(ErrKindDatabase, "Database error"))
		return
	}
	if itemCount != int64(len(uniqueIDs(itemIDs))) {
		c.JSON(http.StatusNotFound, errorResponse(ErrKindItemNotFound, "One or more items do not exist"))
		return
	}

	now := time.Now()
	order := models.Order{
		RetailerID: req.RetailerID,
		OrderDate:  &now,
		Status:     models.OrderStatusPending,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		for i := range lines {
			lines[i].OrderID = order.ID
		}
		if err := tx.Create(&lines).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(ErrKindDatabase, "Failed to create order"))
		return
	}

	order.OrderLines = lines

	c.JSON(http.StatusCreated, successResponse("Order booked", order))
}

func (s *OrdersHandler) ListOrders(c *gin.Context) {
	var query ListOrdersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(ErrKindInvalidInput, "Invalid query parameters"))
		return
	}

	if query.Status != "" &&
		query.Status != models.OrderStatusPending &&
		query.Status != models.OrderStatusApproved {
		c.JSON(http.StatusBadRequest, errorResponse(ErrKindInvalidInput, "status must be Pending or Approved"))
		return
	}

	ctx := c.Request.Context()

	dbQuery := s.db.WithContext(ctx).Model(&models.Order{}).Preload("OrderLines").Preload("Retailer")
	if query.Status != "" {
		dbQuery = dbQuery.Where("status = ?", query.Status)
	}

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(ErrKindDatabase, "Database error"))
		return
	}

	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}
	page := query.Page
	if page <= 0 {
		page = 1
	}

	var orders []models.Order
	offset := (page - 1) * pageSize
	if err := dbQuery.Order("id").Offset(offset).Limit(pageSize).Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(ErrKindDatabase, "Database error"))
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Orders fetched", orders, gin.H{
		"page":      page,
		"page_size": pageSize,
		"total":     total,
	}))
}

func (s *OrdersHandler) GetOrder(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(ErrKindInvalidInput, "Invalid order id"))
		return
	}

	var order models.Order
	if err := s.db.WithContext(c.Request.Context()).
		Preload("OrderLines.Item").
		Preload("Retailer").
		Where("id = ?", id).
		First(&order).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, errorResponse(ErrKindOrderNotFound, "Order not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse(ErrKindDatabase, "Database error"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Order fetched", order))
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
