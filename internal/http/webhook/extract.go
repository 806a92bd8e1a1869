package webhook

import (
	"github.com/apexpay/payouter/internal/invoice"
)

// Historical integration attempts used different field names for the same
// logical values, so extraction is an ordered list of fallbacks per field.
// The rules are policy: extend them here, not ad hoc in the handler.
var (
	idFields     = []string{"invoiceId", "id", "invoice_id"}
	statusFields = []string{"status", "state"}
	typeFields   = []string{"type", "kind"}
)

// extract pulls a reconciliation notification out of an arbitrary processor
// payload. ok is false when the invoice id or status cannot be found.
func extract(payload map[string]any) (invoice.ReconcileParams, bool) {
	params := invoice.ReconcileParams{
		InvoiceID: firstString(payload, idFields),
		Status:    invoice.Status(firstString(payload, statusFields)),
		Payload:   invoice.Meta(payload),
	}

	if params.InvoiceID == "" || params.Status == "" {
		return invoice.ReconcileParams{}, false
	}

	switch firstString(payload, typeFields) {
	case string(invoice.TypePayout):
		params.Type = invoice.TypePayout
	case string(invoice.TypePayIn):
		params.Type = invoice.TypePayIn
	default:
		// No explicit type: the presence of a payout field implies a
		// disbursement, absence implies a collection.
		if _, ok := payload["payout"]; ok {
			params.Type = invoice.TypePayout
		} else {
			params.Type = invoice.TypePayIn
		}
	}

	if amount, ok := payload["amount"].(float64); ok {
		params.Amount = amount
	}

	if currency, ok := payload["currency"].(string); ok {
		params.Currency = currency
	}

	return params, true
}

func firstString(payload map[string]any, keys []string) string {
	for _, key := range keys {
		if v, ok := payload[key].(string); ok && v != "" {
			return v
		}
	}

	return ""
}
