package documents

import (
	"bytes"
	"html/template"
)

const invoiceTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>TAX INVOICE {{.Number}}</title>
<style>
body { font-family: sans-serif; margin: 40px; }
h1 { font-size: 20px; }
table { border-collapse: collapse; width: 100%; margin-top: 16px; }
th, td { border: 1px solid #444; padding: 6px 10px; text-align: right; }
th:first-child, td:first-child { text-align: left; }
.totals td { font-weight: bold; }
.meta { margin: 2px 0; }
</style>
</head>
<body>
<h1>TAX INVOICE</h1>
<p class="meta">Invoice No: {{.Number}}</p>
<p class="meta">Retailer: {{.Retailer.Shop}}</p>
<p class="meta">Date: {{.Date.Format "2006-01-02"}}</p>
<table>
<tr><th>Item</th><th>HSN</th><th>Qty</th><th>Unit</th><th>Boxes</th><th>Amount</th><th>GST</th></tr>
{{range .Lines}}
<tr><td>{{.Item}}</td><td>{{.HSNCode}}</td><td>{{.Quantity}}</td><td>{{.Unit}}</td><td>{{.CanonicalQty}}</td><td>{{.Amount}}</td><td>{{.Tax}}</td></tr>
{{end}}
<tr class="totals"><td colspan="5">Taxable</td><td colspan="2">{{.Taxable}}</td></tr>
<tr class="totals"><td colspan="5">GST</td><td colspan="2">{{.GST}}</td></tr>
<tr class="totals"><td colspan="5">Total Amount</td><td colspan="2">&#8377; {{.Total}}</td></tr>
</table>
</body>
</html>
`

type HTMLRenderer struct {
	tmpl *template.Template
}

func NewHTMLRenderer() (*HTMLRenderer, error) {
	tmpl, err := template.New("invoice").Parse(invoiceTemplate)
	if err != nil {
		return nil, err
	}
	return &HTMLRenderer{tmpl: tmpl}, nil
}

func (r *HTMLRenderer) RenderHTML(view InvoiceView) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, view); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
