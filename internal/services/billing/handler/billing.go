package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"distributor-system/internal/database/models"
	"distributor-system/internal/documents"
)

const (
	// Keys owned by the catalog and ledger handlers; approval mutates stock
	// and the invoiced totals, so both views go stale here.
	ITEM_LIST_CACHE_KEY   = "catalog:items"
	STOCK_LIST_CACHE_KEY  = "catalog:stock"
	OUTSTANDING_CACHE_KEY = "ledger:outstanding"
)

const (
	ErrKindInvalidInput         = "INVALID_INPUT"
	ErrKindOrderNotFound        = "ORDER_NOT_FOUND"
	ErrKindOrderAlreadyApproved = "ORDER_ALREADY_APPROVED"
	ErrKindItemNotFound         = "ITEM_NOT_FOUND"
	ErrKindInvoiceNotFound      = "INVOICE_NOT_FOUND"
	ErrKindInsufficientStock    = "INSUFFICIENT_STOCK"
	ErrKindDatabase             = "DATABASE_ERROR"
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

type BillingHandler struct {
	db                 *gorm.DB
	redis              *redis.Client
	emitter            *documents.Emitter
	allowNegativeStock bool
}

func NewBillingHandler(db *gorm.DB, redisClient *redis.Client, emitter *documents.Emitter, allowNegativeStock bool) *BillingHandler {
	return &BillingHandler{
		db:                 db,
		redis:              redisClient,
		emitter:            emitter,
		allowNegativeStock: allowNegativeStock,
	}
}

func (s *BillingHandler) InvalidateBillingCaches(ctx context.Context) {
	_ = s.redis.Del(ctx, ITEM_LIST_CACHE_KEY, STOCK_LIST_CACHE_KEY, OUTSTANDING_CACHE_KEY)
}

func newInvoiceNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return "INV-" + now.Format("20060102") + "-" + suffix
}

// ApproveOrder turns a Pending order into an Approved one: prices every
// line in coarse units, decrements stock, writes the invoice, and flips
// the order status. All reads and writes run inside one transaction, so
// a failing line leaves nothing mutated.
func (s *BillingHandler) ApproveOrder(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(ErrKindInvalidInput, "Invalid order id"))
		return
	}

	ctx := c.Request.Context()

	var invoice models.Invoice
	var view documents.InvoiceView

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Preload("OrderLines").Preload("Retailer").
			Where("id = ?", orderID).First(&order).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return errOrderNotFound
			}
			return err
		}

		if order.Status != models.OrderStatusPending {
			return errOrderAlreadyApproved
		}

		items, err := loadItems(tx, order.OrderLines)
		if err != nil {
			return err
		}

		comp, err := computeInvoice(order.OrderLines, items)
		if err != nil {
			return err
		}

		for itemID, delta := range comp.StockDeltas {
			item := items[itemID]
			stock, err := decimalFromStored(item.Stock)
			if err != nil {
				return err
			}
			newStock := stock.Sub(delta)
			if !s.allowNegativeStock && newStock.Sign() < 0 {
				return errInsufficientStock
			}
			if err := tx.Model(&models.Item{}).Where("id = ?", itemID).
				Update("stock", newStock.String()).Error; err != nil {
				return err
			}
		}

		now := time.Now()
		invoice = models.Invoice{
			InvoiceNumber: newInvoiceNumber(now),
			OrderID:       order.ID,
			Taxable:       comp.Taxable.StringFixed(2),
			GST:           comp.GST.StringFixed(2),
			Total:         comp.Total.StringFixed(2),
			InvoiceDate:   &now,
		}
		if err := tx.Create(&invoice).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).
			Update("status", models.OrderStatusApproved).Error; err != nil {
			return err
		}

		view = buildInvoiceView(invoice, order, comp)
		return nil
	})

	if txErr != nil {
		switch {
		case errors.Is(txErr, errOrderNotFound):
			c.JSON(http.StatusNotFound, errorResponse(ErrKindOrderNotFound, "Order not found"))
		case errors.Is(txErr, errOrderAlreadyApproved):
			c.JSON(http.StatusConflict, errorResponse(ErrKindOrderAlreadyApproved, "Order already approved"))
		case errors.Is(txErr, errItemNotFound):
			c.JSON(http.StatusNotFound, errorResponse(ErrKindItemNotFound, "One or more order items no longer exist"))
		case errors.Is(txErr, errInsufficientStock):
			c.JSON(http.StatusConflict, errorResponse(ErrKindInsufficientStock, "Not enough stock to approve this order"))
		case errors.Is(txErr, errInvalidLine):
			c.JSON(http.StatusBadRequest, errorResponse(ErrKindInvalidInput, txErr.Error()))
		default:
			c.JSON(http.StatusInternalServerError, errorResponse(ErrKindDatabase, "Failed to approve order"))
		}
		return
	}

	s.InvalidateBillingCaches(ctx)

	documentPath := ""
	if path, err := s.emitter.Emit(view); err != nil {
		// Approval is already committed; the artifact can be re-rendered
		// from the invoice download endpoint.
		log.Printf("Failed to render invoice document %s: %v", invoice.InvoiceNumber, err)
	} else {
		documentPath = path
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Order approved and invoiced", invoice, gin.H{
		"document_path": documentPath,
	}))
}

func (s *BillingHandler) ListInvoices(c *gin.Context) {
	page, pageSize := paginationParams(c)

	ctx := c.Request.Context()

	query := s.db.WithContext(ctx).Model(&models.Invoice{}).Preload("Order.Retailer")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(ErrKindDatabase, "Database error"))
		return
	}

	var invoices []models.Invoice
	offset := (page - 1) * pageSize
	if err := query.Order("id").Offset(offset).Limit(pageSize).Find(&invoices).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(ErrKindDatabase, "Database error"))
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Invoices fetched", invoices, gin.H{
		"page":      page,
		"page_size": pageSize,
		"total":     total,
	}))
}

func (s *BillingHandler) GetInvoice(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(ErrKindInvalidInput, "Invalid invoice id"))
		return
	}

	var invoice models.Invoice
	if err := s.db.WithContext(c.Request.Context()).
		Preload("Order.Retailer").
		Preload("Order.OrderLines.Item").
		Where("id = ?", id).
		First(&invoice).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, errorResponse(ErrKindInvoiceNotFound, "Invoice not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse(ErrKindDatabase, "Database error"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Invoice fetched", invoice))
}

// DownloadInvoiceDocument serves the rendered invoice artifact,
// re-rendering it from the stored order if the file is missing.
func (s *BillingHandler) DownloadInvoiceDocument(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(ErrKindInvalidInput, "Invalid invoice id"))
		return
	}

	var invoice models.Invoice
	if err := s.db.WithContext(c.Request.Context()).
		Preload("Order.Retailer").
		Preload("Order.OrderLines.Item").
		Where("id = ?", id).
		First(&invoice).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, errorResponse(ErrKindInvoiceNotFound, "Invoice not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse(ErrKindDatabase, "Database error"))
		return
	}

	if !s.emitter.Exists(invoice.InvoiceNumber) {
		if invoice.Order == nil {
			c.JSON(http.StatusInternalServerError, errorResponse(ErrKindDatabase, "Invoice order is missing"))
			return
		}

		items := make(map[int64]models.Item, len(invoice.Order.OrderLines))
		for _, line := range invoice.Order.OrderLines {
			if line.Item != nil {
				items[line.ItemID] = *line.Item
			}
		}

		comp, err := computeInvoice(invoice.Order.OrderLines, items)
		if err != nil {
			c.JSON(http.StatusInternalServerError, errorResponse(ErrKindDatabase, "Failed to rebuild invoice document"))
			return
		}

		if _, err := s.emitter.Emit(buildInvoiceView(invoice, *invoice.Order, comp)); err != nil {
			c.JSON(http.StatusInternalServerError, errorResponse(ErrKindDatabase, "Failed to render invoice document"))
			return
		}
	}

	path := s.emitter.Path(invoice.InvoiceNumber)
	c.FileAttachment(path, filepath.Base(path))
}

// --- helpers ---

func loadItems(tx *gorm.DB, lines []models.OrderLine) (map[int64]models.Item, error) {
	ids := make([]int64, 0, len(lines))
	seen := make(map[int64]struct{}, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.ItemID]; ok {
			continue
		}
		seen[line.ItemID] = struct{}{}
		ids = append(ids, line.ItemID)
	}

	var items []models.Item
	if err := tx.Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}

	byID := make(map[int64]models.Item, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, errItemNotFound
		}
	}

	return byID, nil
}

func buildInvoiceView(invoice models.Invoice, order models.Order, comp *invoiceComputation) documents.InvoiceView {
	retailer := documents.RetailerView{}
	if order.Retailer != nil {
		retailer = documents.RetailerView{
			Shop:  order.Retailer.Shop,
			Owner: order.Retailer.Owner,
			Phone: order.Retailer.Phone,
		}
	}

	lines := make([]documents.LineView, 0, len(comp.Lines))
	for _, lc := range comp.Lines {
		lines = append(lines, documents.LineView{
			Item:         lc.Item.Name,
			HSNCode:      lc.Item.HSNCode,
			Quantity:     lc.Line.Quantity,
			Unit:         lc.Line.Unit,
			CanonicalQty: lc.Canonical.String(),
			Amount:       lc.Amount.StringFixed(2),
			Tax:          lc.Tax.StringFixed(2),
		})
	}

	date := time.Now()
	if invoice.InvoiceDate != nil {
		date = *invoice.InvoiceDate
	}

	return documents.InvoiceView{
		Number:   invoice.InvoiceNumber,
		Retailer: retailer,
		Date:     date,
		Lines:    lines,
		Taxable:  invoice.Taxable,
		GST:      invoice.GST,
		Total:    invoice.Total,
	}
}

func paginationParams(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page <= 0 {
		page = 1
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if err != nil || pageSize <= 0 {
		pageSize = 10
	}
	return page, pageSize
}
