package order

import "papeleria-be/internal/product"

// WholesaleThreshold is the retail grand total at and above which a
// wholesale account's order is re-priced using wholesale unit prices.
// The boundary is inclusive.
const WholesaleThreshold int64 = 140000

// repriceLines snapshots every line's unit price from the catalog and
// recomputes line totals. Returns the grand total.
func repriceLines(lines []Line, catalog map[uint]*product.Product, wholesale bool) int64 {
	var total int64
	for i := range lines {
		p := catalog[lines[i].ProductID]

		unit := p.Price
		if wholesale {
			unit = p.WholesalePrice
		}

		lines[i].UnitPrice = unit
		lines[i].LineTotal = unit * int64(lines[i].Quantity)
		total += lines[i].LineTotal
	}
	return total
}

// priceOrder runs the retail pricing pass and, for wholesale accounts whose
// retail total meets the threshold, the wholesale pass over every line.
// Reports whether the discount was applied.
func priceOrder(lines []Line, catalog map[uint]*product.Product, wholesaleAccount bool) (int64, bool) {
	total := repriceLines(lines, catalog, false)

	if wholesaleAccount && total >= WholesaleThreshold {
		total = repriceLines(lines, catalog, true)
		return total, true
	}

	return total, false
}

func sumLineTotals(lines []Line) int64 {
	var total int64
	for i := range lines {
		total += lines[i].LineTotal
	}
	return total
}
