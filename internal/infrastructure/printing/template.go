package printing

import (
	"html/template"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// newLabelTemplate parses the fixed single-page label layout
func newLabelTemplate() (*template.Template, error) {
	titleCaser := cases.Title(language.English)
	funcMap := template.FuncMap{
		"upper": strings.ToUpper,
		"title": titleCaser.String,
		"money": formatMoney,
	}
	return template.New("label").Funcs(funcMap).Parse(labelTemplate)
}

// formatMoney renders a loosely-typed amount with two decimal places
func formatMoney(v any, currency string) string {
	d := toDecimal(v)
	if currency == "" {
		return d.StringFixed(2)
	}
	return d.StringFixed(2) + " " + currency
}

func toDecimal(v any) decimal.Decimal {
	switch n := v.(type) {
	case decimal.Decimal:
		return n
	case float64:
		return decimal.NewFromFloat(n)
	case int64:
		return decimal.NewFromInt(n)
	case int:
		return decimal.NewFromInt(int64(n))
	case string:
		d, err := decimal.NewFromString(n)
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

const labelTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<style>
  body { font-family: Arial, sans-serif; font-size: 11px; margin: 0; }
  .label { width: 100%; }
  .header { border-bottom: 2px solid #000; padding-bottom: 4px; margin-bottom: 6px; }
  .header h1 { font-size: 16px; margin: 0; }
  .block { border: 1px solid #000; padding: 6px; margin-bottom: 6px; }
  .block h2 { font-size: 11px; margin: 0 0 4px 0; text-transform: uppercase; }
  .summary td { padding: 2px 8px 2px 0; }
  .tracking { font-size: 14px; font-weight: bold; letter-spacing: 1px; }
</style>
</head>
<body>
<div class="label">
  <div class="header">
    <h1>{{.ShippingNumber}}</h1>
    {{if .CourierName}}<div>{{title .CourierName}}</div>{{end}}
  </div>

  <div class="block">
    <h2>From</h2>
    <div>{{.FromName}}</div>
    <div>{{.FromAddress}}</div>
    <div>{{.FromCity}} {{upper .FromCountry}}</div>
    <div>{{.FromPhone}}</div>
  </div>

  <div class="block">
    <h2>To</h2>
    <div>{{.ToName}}</div>
    <div>{{.ToAddress}}</div>
    <div>{{.ToCity}} {{upper .ToCountry}}</div>
    <div>{{.ToPhone}}</div>
  </div>

  <table class="summary">
    {{if .TrackingNumber}}<tr><td>Tracking</td><td class="tracking">{{.TrackingNumber}}</td></tr>{{end}}
    {{if .Weight}}<tr><td>Weight</td><td>{{.Weight}}</td></tr>{{end}}
    <tr><td>Cost</td><td>{{money .Cost .Currency}}</td></tr>
    {{if .PaymentMethod}}<tr><td>Payment</td><td>{{title .PaymentMethod}}</td></tr>{{end}}
  </table>
</div>
</body>
</html>`
