package documents

import (
	"fmt"
	"os"
	"path/filepath"
)

// Emitter renders invoice views and persists the artifacts under a
// configured directory so they can be downloaded later.
type Emitter struct {
	renderer Renderer
	dir      string
}

func NewEmitter(renderer Renderer, dir string) (*Emitter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create invoice directory: %w", err)
	}
	return &Emitter{renderer: renderer, dir: dir}, nil
}

func (e *Emitter) Emit(view InvoiceView) (string, error) {
	content, err := e.renderer.RenderHTML(view)
	if err != nil {
		return "", err
	}

	path := e.Path(view.Number)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (e *Emitter) Path(invoiceNumber string) string {
	return filepath.Join(e.dir, "INV_"+invoiceNumber+".html")
}

func (e *Emitter) Exists(invoiceNumber string) bool {
	_, err := os.Stat(e.Path(invoiceNumber))
	return err == nil
}
