package documents

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleView() InvoiceView {
	return InvoiceView{
		Number: "INV-20260828-ABCD1234",
		Retailer: RetailerView{
			Shop:  "Sharma General Store",
			Owner: "R. Sharma",
			Phone: "9876543210",
		},
		Date: time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
		Lines: []LineView{
			{
				Item:         "Washing Soap",
				HSNCode:      "3401",
				Quantity:     "48",
				Unit:         "PCS",
				CanonicalQty: "2",
				Amount:       "200.00",
				Tax:          "10.00",
			},
		},
		Taxable: "200.00",
		GST:     "10.00",
		Total:   "210.00",
	}
}

func TestHTMLRenderer(t *testing.T) {
	renderer, err := NewHTMLRenderer()
	require.NoError(t, err)

	content, err := renderer.RenderHTML(sampleView())
	require.NoError(t, err)

	html := string(content)
	assert.Contains(t, html, "TAX INVOICE")
	assert.Contains(t, html, "INV-20260828-ABCD1234")
	assert.Contains(t, html, "Sharma General Store")
	assert.Contains(t, html, "2026-08-28")
	assert.Contains(t, html, "210.00")
}

func TestEmitterWritesArtifact(t *testing.T) {
	renderer, err := NewHTMLRenderer()
	require.NoError(t, err)

	dir := t.TempDir()
	emitter, err := NewEmitter(renderer, dir)
	require.NoError(t, err)

	view := sampleView()
	path, err := emitter.Emit(view)
	require.NoError(t, err)

	assert.Equal(t, emitter.Path(view.Number), path)
	assert.True(t, emitter.Exists(view.Number))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), view.Number)
}

func TestEmitterExistsIsFalseBeforeEmit(t *testing.T) {
	renderer, err := NewHTMLRenderer()
	require.NoError(t, err)

	emitter, err := NewEmitter(renderer, t.TempDir())
	require.NoError(t, err)

	assert.False(t, emitter.Exists("INV-00000000-NONE"))
}
