// internal/workers/communication/send-stock-alert/alert.go
package sendstockalert

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"inventory-workers/internal/inventory/analytics"
)

var templates = map[string]string{
	"subject":  "Alerta de inventario {{session}}: {{expiredCount}} vencidos, {{lowStockCount}} por reponer",
	"expired":  "Productos vencidos ({{expiredCount}}), perdida {{expiredLoss}} ({{expiredLossBs}}):",
	"lowStock": "Productos por reponer ({{lowStockCount}}), inversion {{investment}} ({{investmentBs}}):",
	"sms":      "Inventario {{session}}: {{expiredCount}} vencidos ({{expiredLoss}}), {{lowStockCount}} por reponer ({{investment}})",
}

// alert is the rendered content of one stock notification.
type alert struct {
	Subject       string
	Body          string
	SMS           string
	ExpiredCount  int
	LowStockCount int
}

func (a *alert) empty() bool {
	return a.ExpiredCount == 0 && a.LowStockCount == 0
}

// digest identifies the alert content for deduplication.
func (a *alert) digest() string {
	sum := sha256.Sum256([]byte(a.Body))
	return hex.EncodeToString(sum[:8])
}

func buildAlert(session string, expired *analytics.LossReport, low *analytics.ReplenishmentReport, maxLines int) *alert {
	p := message.NewPrinter(language.Spanish)
	a := &alert{}
	data := map[string]interface{}{"session": session}

	if expired != nil {
		a.ExpiredCount = len(expired.Items)
		data["expiredLoss"] = p.Sprintf("$%.2f", expired.Total)
		data["expiredLossBs"] = p.Sprintf("%.2f BS", expired.Converted)
	}
	if low != nil {
		a.LowStockCount = len(low.Items)
		data["investment"] = p.Sprintf("$%.2f", low.Total)
		data["investmentBs"] = p.Sprintf("%.2f BS", low.Converted)
	}
	data["expiredCount"] = a.ExpiredCount
	data["lowStockCount"] = a.LowStockCount

	var body strings.Builder
	if a.ExpiredCount > 0 {
		body.WriteString(renderTemplate(p, templates["expired"], data))
		body.WriteString("\n")
		for i, item := range expired.Items {
			if i == maxLines {
				body.WriteString(p.Sprintf("- ... y %d mas\n", a.ExpiredCount-maxLines))
				break
			}
			line := p.Sprintf("- %s: %.0f uds, perdida $%.2f", item.Product, item.CurrentStock, item.Loss)
			if item.ExpiryDate != nil {
				line += ", vencio " + item.ExpiryDate.Format("2006-01-02")
			}
			body.WriteString(line + "\n")
		}
	}
	if a.LowStockCount > 0 {
		if body.Len() > 0 {
			body.WriteString("\n")
		}
		body.WriteString(renderTemplate(p, templates["lowStock"], data))
		body.WriteString("\n")
		for i, item := range low.Items {
			if i == maxLines {
				body.WriteString(p.Sprintf("- ... y %d mas\n", a.LowStockCount-maxLines))
				break
			}
			line := p.Sprintf("- %s: %.0f de %.0f uds, faltan %.0f", item.Product, item.CurrentStock, item.MinimumStock, item.Needed)
			if item.Location != "" {
				line += " (" + item.Location + ")"
			}
			body.WriteString(line + "\n")
		}
	}

	a.Subject = renderTemplate(p, templates["subject"], data)
	a.Body = body.String()
	a.SMS = renderTemplate(p, templates["sms"], data)
	return a
}

// renderTemplate replaces {{key}} placeholders and drops unknown ones.
func renderTemplate(p *message.Printer, tmpl string, data map[string]interface{}) string {
	result := tmpl
	for k, v := range data {
		result = strings.ReplaceAll(result, "{{"+k+"}}", p.Sprint(v))
	}
	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		result = result[:start] + result[start+end+2:]
	}
	return result
}
