package finance

import "wellness-ops-backend/models"

// Entry is the slice of a service entry the rules read.
type Entry struct {
	BasePrice         float64
	GSTAmount         float64
	TotalAmount       float64
	PaymentReceivedBy string
	CustomerPhone     string
	TherapyType       string
	Date              string
}

// EntriesFrom projects stored service entries, preserving order.
func EntriesFrom(services []models.ServiceEntry) []Entry {
	out := make([]Entry, len(services))
	for i, s := range services {
		out[i] = Entry{
			BasePrice:         s.BasePrice,
			GSTAmount:         s.GSTAmount,
			TotalAmount:       s.TotalAmount,
			PaymentReceivedBy: s.PaymentReceivedBy,
			CustomerPhone:     s.CustomerPhone,
			TherapyType:       s.TherapyType,
			Date:              s.Date,
		}
	}
	return out
}
