package documents

import "time"

// InvoiceView is the deterministic input used for invoice rendering.
type InvoiceView struct {
	Number   string
	Retailer RetailerView
	Date     time.Time
	Lines    []LineView
	Taxable  string
	GST      string
	Total    string
}

type RetailerView struct {
	Shop  string
	Owner string
	Phone string
}

type LineView struct {
	Item         string
	HSNCode      string
	Quantity     string
	Unit         string
	CanonicalQty string
	Amount       string
	Tax          string
}

type Renderer interface {
	RenderHTML(view InvoiceView) ([]byte, error)
}
