package finance

import (
	"wellness-ops-backend/models"

	"github.com/shopspring/decimal"
)

// SettlementNote explains the sign of SettlementBalance.
const SettlementNote = "Positive = business owes hotel, Negative = hotel owes business"

// Totals are sums over a set of service entries.
type Totals struct {
	BaseSales        decimal.Decimal
	GST              decimal.Decimal
	Sales            decimal.Decimal
	HotelReceived    decimal.Decimal
	BusinessReceived decimal.Decimal
}

// SumEntries adds up base, GST and total amounts, splitting totals by who received payment.
func SumEntries(entries []Entry) Totals {
	t := Totals{
		BaseSales:        decimal.Zero,
		GST:              decimal.Zero,
		Sales:            decimal.Zero,
		HotelReceived:    decimal.Zero,
		BusinessReceived: decimal.Zero,
	}
	for _, e := range entries {
		total := decimal.NewFromFloat(e.TotalAmount)
		t.BaseSales = t.BaseSales.Add(decimal.NewFromFloat(e.BasePrice))
		t.GST = t.GST.Add(decimal.NewFromFloat(e.GSTAmount))
		t.Sales = t.Sales.Add(total)
		switch e.PaymentReceivedBy {
		case models.ReceivedByHotel:
			t.HotelReceived = t.HotelReceived.Add(total)
		case models.ReceivedByBusiness:
			t.BusinessReceived = t.BusinessReceived.Add(total)
		}
	}
	return t
}

// Settlement is the monthly revenue split between the business and a property.
type Settlement struct {
	RevenueSharePercentage float64 `json:"revenue_share_percentage"`
	TotalBaseSales         float64 `json:"total_base_sales"`
	TotalGST               float64 `json:"total_gst"`
	HotelShare             float64 `json:"hotel_share"`
	BusinessShare          float64 `json:"business_share"`
	HotelReceived          float64 `json:"hotel_received"`
	BusinessReceived       float64 `json:"business_received"`
	SettlementBalance      float64 `json:"settlement_balance"`
}

// ComputeSettlement splits base sales by sharePct and nets the business share
// against what the business actually received. A positive balance means the
// business owes the hotel.
func ComputeSettlement(sharePct float64, entries []Entry) Settlement {
	t := SumEntries(entries)
	ratio := decimal.NewFromFloat(sharePct).Div(hundred)

	hotelShare := t.BaseSales.Mul(ratio)
	businessShare := t.BaseSales.Mul(decimal.NewFromInt(1).Sub(ratio))
	balance := t.BusinessReceived.Sub(businessShare)

	return Settlement{
		RevenueSharePercentage: sharePct,
		TotalBaseSales:         t.BaseSales.Round(2).InexactFloat64(),
		TotalGST:               t.GST.Round(2).InexactFloat64(),
		HotelShare:             hotelShare.Round(2).InexactFloat64(),
		BusinessShare:          businessShare.Round(2).InexactFloat64(),
		HotelReceived:          t.HotelReceived.Round(2).InexactFloat64(),
		BusinessReceived:       t.BusinessReceived.Round(2).InexactFloat64(),
		SettlementBalance:      balance.Round(2).InexactFloat64(),
	}
}
