package pdf

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	quotesvc "angebot_backend/internal/quotes/service"
)

//go:embed templates/proposal.html
var proposalTemplate string

// Renderer turns a resolved quote into a proposal PDF. It satisfies the
// quotes service's PDFRenderer port.
type Renderer struct {
	client  *GotenbergClient
	baseURL string
	tmpl    *template.Template
}

var _ quotesvc.PDFRenderer = (*Renderer)(nil)

// NewRenderer creates a proposal renderer. baseURL is used for the QR code
// that links the printed document back to the online quote.
func NewRenderer(client *GotenbergClient, baseURL string) (*Renderer, error) {
	tmpl, err := template.New("proposal").Funcs(template.FuncMap{
		"euro": formatEuro,
	}).Parse(proposalTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse proposal template: %w", err)
	}
	return &Renderer{client: client, baseURL: baseURL, tmpl: tmpl}, nil
}

type moduleRow struct {
	Name         string
	Quantity     int
	OverrideNote string
}

type templateData struct {
	CustomerName        string
	ProjectTitle        string
	ValidUntil          string
	DeliveryMode        string
	Status              string
	Modules             []moduleRow
	Countries           []string
	BasePrice           int64
	DiscountPercent     int64
	PricePerCountry     int64
	GrandTotal          int64
	CountryCount        int
	CompanyIntroduction string
	MethodologyText     string
	CustomerIntroText   string
	QRCodeDataURI       template.URL
}

// RenderQuotePDF renders the proposal document.
func (r *Renderer) RenderQuotePDF(ctx context.Context, data quotesvc.RenderData) ([]byte, error) {
	html, err := r.buildHTML(data)
	if err != nil {
		return nil, err
	}
	return r.client.ConvertHTML(ctx, html, DefaultContentOpts())
}

// buildHTML executes the proposal template for a quote.
func (r *Renderer) buildHTML(data quotesvc.RenderData) ([]byte, error) {
	q := data.Quote

	modules := make([]moduleRow, len(data.ModuleLinks))
	for i, link := range data.ModuleLinks {
		row := moduleRow{Quantity: link.Quantity}
		if name, ok := data.ModuleNames[link.ModuleID]; ok {
			row.Name = name
		} else {
			row.Name = "Unbekannter Baustein"
		}
		if link.OverrideType != nil && link.OverrideValue != nil {
			switch *link.OverrideType {
			case "direct":
				row.OverrideNote = fmt.Sprintf("Sonderpreis %s", formatEuro(*link.OverrideValue))
			case "percent":
				row.OverrideNote = fmt.Sprintf("Anpassung %d %%", *link.OverrideValue)
			}
		}
		modules[i] = row
	}

	qrURI, err := r.quoteQRCode(q.ID.String())
	if err != nil {
		return nil, err
	}

	td := templateData{
		CustomerName:        q.CustomerName,
		ProjectTitle:        q.ProjectTitle,
		ValidUntil:          q.ValidUntil.Format("02.01.2006"),
		DeliveryMode:        deliveryModeLabel(q.DeliveryMode),
		Status:              q.Status,
		Modules:             modules,
		Countries:           data.CountryNames,
		BasePrice:           q.BasePrice,
		DiscountPercent:     q.DiscountPercent,
		PricePerCountry:     q.PricePerCountry,
		GrandTotal:          q.GrandTotal,
		CountryCount:        q.CountryCount,
		CompanyIntroduction: deref(q.CompanyIntroduction),
		MethodologyText:     deref(q.MethodologyText),
		CustomerIntroText:   deref(q.CustomerIntroText),
		QRCodeDataURI:       qrURI,
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, td); err != nil {
		return nil, fmt.Errorf("execute proposal template: %w", err)
	}
	return buf.Bytes(), nil
}

// quoteQRCode encodes the online quote URL as a PNG data URI.
func (r *Renderer) quoteQRCode(quoteID string) (template.URL, error) {
	link := strings.TrimSuffix(r.baseURL, "/") + "/quotes/" + quoteID
	png, err := qrcode.Encode(link, qrcode.Medium, 160)
	if err != nil {
		return "", fmt.Errorf("encode qr code: %w", err)
	}
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png)), nil
}

func deliveryModeLabel(mode string) string {
	if mode == "framework-contract" {
		return "Rahmenvertrag"
	}
	return "Einmalige Lieferung"
}

// formatEuro renders a whole-euro amount with dot thousands separators,
// e.g. 13824 → "13.824 €".
func formatEuro(amount int64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	digits := fmt.Sprintf("%d", amount)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}

	out := b.String() + " €"
	if negative {
		out = "-" + out
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
