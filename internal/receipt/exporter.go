// Package receipt renders finalized receipts to documents and events.
package receipt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/template"

	"github.com/abgdnv/storefront/internal/cart"
	"github.com/abgdnv/storefront/internal/checkout"
	"github.com/shopspring/decimal"
)

var documentTemplate = template.Must(template.New("receipt").Funcs(template.FuncMap{
	"money":   func(d decimal.Decimal) string { return "$" + d.StringFixed(2) },
	"amount":  func(l cart.Line) decimal.Decimal { return l.Amount() },
	"rounded": func(t cart.Totals) cart.Totals { return t.Rounded() },
}).Parse(`Purchase Receipt
Receipt: {{.ID}}
Date: {{.IssuedAt.Format "2006-01-02 15:04:05 MST"}}

Customer: {{.Customer.Name}}
Email: {{.Customer.Email}}
Address: {{.Customer.Address}}

Products:
{{range .Lines}}  {{.Product.Name}} x{{.Quantity}} - {{money (amount .)}}
{{end}}{{with rounded .Totals}}
Subtotal: {{money .Subtotal}}
Tax (21%): {{money .Tax}}
Total: {{money .Total}}
{{end}}`))

// Render writes the text document of r.
func Render(w io.Writer, r checkout.Receipt) error {
	return documentTemplate.Execute(w, r)
}

// FileExporter writes one text document per receipt into a directory.
type FileExporter struct {
	dir string
}

func NewFileExporter(dir string) *FileExporter {
	return &FileExporter{dir: dir}
}

// Path returns the file the receipt is written to.
func (e *FileExporter) Path(r checkout.Receipt) string {
	return filepath.Join(e.dir, fmt.Sprintf("receipt_%s.txt", r.ID))
}

func (e *FileExporter) Export(_ context.Context, r checkout.Receipt) (err error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create receipt directory: %w", err)
	}
	f, err := os.Create(e.Path(r))
	if err != nil {
		return fmt.Errorf("failed to create receipt file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close receipt file: %w", cerr)
		}
	}()
	if err := Render(f, r); err != nil {
		return fmt.Errorf("failed to render receipt: %w", err)
	}
	return nil
}

// Fanout runs every exporter and joins their errors.
type Fanout []checkout.Exporter

func (f Fanout) Export(ctx context.Context, r checkout.Receipt) error {
	var errs []error
	for _, e := range f {
		if err := e.Export(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
