package finance

// Dashboard aggregates a set of service entries.
type Dashboard struct {
	TotalBaseSales     float64 `json:"total_base_sales"`
	TotalGST           float64 `json:"total_gst"`
	TotalSales         float64 `json:"total_sales"`
	HotelReceived      float64 `json:"hotel_received"`
	BusinessReceived   float64 `json:"business_received"`
	CustomerCount      int     `json:"customer_count"`
	MostPopularTherapy string  `json:"most_popular_therapy"`
	TotalServices      int     `json:"total_services"`
}

// ComputeDashboard counts distinct customers by phone and picks the most
// frequent therapy type; on a tie the type seen first wins.
func ComputeDashboard(entries []Entry) Dashboard {
	t := SumEntries(entries)

	phones := make(map[string]struct{})
	counts := make(map[string]int)
	var order []string
	for _, e := range entries {
		phones[e.CustomerPhone] = struct{}{}
		if _, seen := counts[e.TherapyType]; !seen {
			order = append(order, e.TherapyType)
		}
		counts[e.TherapyType]++
	}

	popular := "N/A"
	best := 0
	for _, therapy := range order {
		if counts[therapy] > best {
			best = counts[therapy]
			popular = therapy
		}
	}

	return Dashboard{
		TotalBaseSales:     t.BaseSales.Round(2).InexactFloat64(),
		TotalGST:           t.GST.Round(2).InexactFloat64(),
		TotalSales:         t.Sales.Round(2).InexactFloat64(),
		HotelReceived:      t.HotelReceived.Round(2).InexactFloat64(),
		BusinessReceived:   t.BusinessReceived.Round(2).InexactFloat64(),
		CustomerCount:      len(phones),
		MostPopularTherapy: popular,
		TotalServices:      len(entries),
	}
}
