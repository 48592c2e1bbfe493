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
	LEDGER_CACHE_PREFIX   = "ledger:"
	OUTSTANDING_CACHE_KEY = "ledger:outstanding"
	CACHE_TTL_SHORT       = 5 * time.Minute
)

const (
	ErrKindInvalidInput     = "INVALID_INPUT"
	ErrKindRetailerNotFound = "RETAILER_NOT_FOUND"
	ErrKindInvoiceNotFound  = "INVOICE_NOT_FOUND"
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

type LedgerHandler struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewLedgerHandler(db *gorm.DB, redisClient *redis.Client) *LedgerHandler {
	return &LedgerHandler{
		db:    db,
		redis: redisClient,
	}
}

func (s *LedgerHandler) InvalidateLedgerCaches(ctx context.Context) {
	_ = s.redis.Del(ctx, OUTSTANDING_CACHE_KEY)
}

// --- Payments ---

type RecordPaymentRequest struct {
	RetailerID int64  `json:"retailer_id" binding:"required"`
	InvoiceID  *int64 `json:"invoice_id,omitempty"`
	Amount     string `json:"amount" binding:"required"`
	Mode       string `json:"mode" binding:"required"`
}

type ListPaymentsQuery struct {
	RetailerID *int64 `form:"retailer_id,omitempty"`
	Page       int    `form:"page,default=1"`
	PageSize   int    `form:"page_size,default=10"`
}

func validatePaymentMode(mode string) error {
	switch mode {
	case models.PaymentModeCash, models.PaymentModeUPI, models.PaymentModeBank:
		return nil
	default:
		return errors.New("mode must be Cash, UPI, or Bank")
	}
}

func validatePaymentAmount(amount string) (string, error) {
	a, err := decimal.NewFromString(amount)
	if err != nil {
		return "", errors.New("amount must be a decimal number")
	}
	if a.Sign() <= 0 {
		return "", errors.New("amount must be greater than zero")
	}
	return a.StringFixed(2), nil
}

func (s *LedgerHandler) RecordPayment(c *gin.Context) {
	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(ErrKindInvalidInput, "Invalid request format"))
		return
	}

	if err := validatePaymentMode(req.Mode); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(ErrKindInvalidInput, err.Error()))
		return
	}

	amount, err := validatePaymentAmount(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(ErrKindInvalidInput, err.Error()))
		return
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

	// The optional invoice allocation must reference an invoice raised
	// against this retailer's own orders.
	if req.InvoiceID != nil {
		var invoice models.Invoice
		if err := s.db.WithContext(ctx).Preload("Order").
			Where("id = ?", *req.InvoiceID).First(&invoice).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, errorResponse(ErrKindInvoiceNotFound, "Invoice not found"))
				return
			}
			c.JSON(http.StatusInternalServerError, errorResponse(ErrKindDatabase, "Database error"))
			return
		}
		if invoice.Order == nil || invoice.Order.RetailerID != req.RetailerID {
			c.JSON(http.StatusBadRequest, errorResponse(ErrKindInvalidInput, "Invoice does not belong to this retailer"))
			return
		}
	}

	now := time.Now()
	payment := models.Payment{
		RetailerID: req.RetailerID,
		InvoiceID:  req.InvoiceID,
		Amount:     amount,
		Mode:       req.Mode,
		PayDate:    &now,
	}

	if err := s.db.WithContext(ctx).Create(&payment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(ErrKindDatabase, "Failed to record payment"))
		return
	}

	s.InvalidateLedgerCaches(ctx)

	c.JSON(http.StatusCreated, successResponse("Payment saved", payment))
}

func (s *LedgerHandler) ListPayments(c *gin.Context) {
	var query ListPaymentsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(ErrKindInvalidInput, "Invalid query parameters"))
		return
	}

	ctx := c.Request.Context()

	dbQuery := s.db.WithContext(ctx).Model(&models.Payment{}).Preload("Retailer")
	if query.RetailerID != nil {
		dbQuery = dbQuery.Where("retailer_id = ?", *query.RetailerID)
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

	var payments []models.Payment
	offset := (page - 1) * pageSize
	if err := dbQuery.Order("id").Offset(offset).Limit(pageSize).Find(&payments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(ErrKindDatabase, "Database error"))
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Payments fetched", payments, gin.H{
		"page":      page,
		"page_size": pageSize,
		"total":     total,
	}))
}

// --- Outstanding ---

type OutstandingRow struct {
	RetailerID  int64  `json:"retailer_id"`
	Shop        string `json:"shop"`
	Invoiced    string `json:"invoiced"`
	Paid        string `json:"paid"`
	Outstanding string `json:"outstanding"`
}

type outstandingAggregate struct {
	RetailerID int64
	Shop       string
	Invoiced   string
	Paid       string
}

// netOutstanding subtracts total paid from total invoiced. Empty strings
// stand in for SQL aggregates over zero rows and count as zero.
func netOutstanding(invoiced, paid string) (string, error) {
	inv := decimal.Zero
	if invoiced != "" {
		d, err := decimal.NewFromString(invoiced)
		if err != nil {
			return "", err
		}
		inv = d
	}

	p := decimal.Zero
	if paid != "" {
		d, err := decimal.NewFromString(paid)
		if err != nil {
			return "", err
		}
		p = d
	}

	return inv.Sub(p).StringFixed(2), nil
}

const outstandingReportQuery = `
SELECT r.id AS retailer_id,
       r.shop AS shop,
       COALESCE(inv.invoiced, 0)::text AS invoiced,
       COALESCE(pay.paid, 0)::text AS paid
FROM retailers r
LEFT JOIN (
    SELECT o.retailer_id, SUM(CAST(i.total AS numeric)) AS invoiced
    FROM invoices i
    JOIN orders o ON o.id = i.order_id
    GROUP BY o.retailer_id
) inv ON inv.retailer_id = r.id
LEFT JOIN (
    SELECT p.retailer_id, SUM(CAST(p.amount AS numeric)) AS paid
    FROM payments p
    GROUP BY p.retailer_id
) pay ON pay.retailer_id = r.id
`

func (s *LedgerHandler) outstandingRows(ctx context.Context, retailerID *int64) ([]OutstandingRow, error) {
	query := outstandingReportQuery
	args := []interface{}{}
	if retailerID != nil {
		query += " WHERE r.id = ?"
		args = append(args, *retailerID)
	}
	query += " ORDER BY r.id"

	var aggregates []outstandingAggregate
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&aggregates).Error; err != nil {
		return nil, err
	}

	rows := make([]OutstandingRow, 0, len(aggregates))
	for _, agg := range aggregates {
		outstanding, err := netOutstanding(agg.Invoiced, agg.Paid)
		if err != nil {
			return nil, err
		}
		rows = append(rows, OutstandingRow{
			RetailerID:  agg.RetailerID,
			Shop:        agg.Shop,
			Invoiced:    formatAmount(agg.Invoiced),
			Paid:        formatAmount(agg.Paid),
			Outstanding: outstanding,
		})
	}
	return rows, nil
}

func formatAmount(s string) string {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return "0.00"
	}
	return d.StringFixed(2)
}

func (s *LedgerHandler) OutstandingReport(c *gin.Context) {
	ctx := c.Request.Context()

	if cached, err := s.redis.Get(ctx, OUTSTANDING_CACHE_KEY).Result(); err == nil {
		var rows []OutstandingRow
		if err := json.Unmarshal([]byte(cached), &rows); err == nil {
			c.JSON(http.StatusOK, successResponse("Outstanding report fetched", rows))
			return
		}
	}

	rows, err := s.outstandingRows(ctx, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(ErrKindDatabase, "Failed to compute outstanding report"))
		return
	}

	if payload, err := json.Marshal(rows); err == nil {
		s.redis.Set(ctx, OUTSTANDING_CACHE_KEY, payload, CACHE_TTL_SHORT)
	}

	c.JSON(http.StatusOK, successResponse("Outstanding report fetched", rows))
}

func (s *LedgerHandler) RetailerOutstanding(c *gin.Context) {
	retailerID, err := strconv.ParseInt(c.Param("retailerId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(ErrKindInvalidInput, "Invalid retailer id"))
		return
	}

	ctx := c.Request.Context()

	var retailer models.Retailer
	if err := s.db.WithContext(ctx).Where("id = ?", retailerID).First(&retailer).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, errorResponse(ErrKindRetailerNotFound, "Retailer not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse(ErrKindDatabase, "Database error"))
		return
	}

	rows, err := s.outstandingRows(ctx, &retailerID)
	if err != nil || len(rows) == 0 {
		c.JSON(http.StatusInternalServerError, errorResponse(ErrKindDatabase, "Failed to compute outstanding"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Outstanding fetched", rows[0]))
}
