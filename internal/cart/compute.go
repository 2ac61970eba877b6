package cart

import "github.com/shopspring/decimal"

// taxScale is the number of decimal places totals and tax are rounded to.
const taxScale = 2

// recomputeTotals re-derives every line subtotal from its pinned price and
// current quantity, then the cart total (including shipping cost when present)
// and the tax at the given flat rate. Runs after every mutation so the
// invariant total == sum(subtotals) + shipping.cost always holds in the
// persisted document.
func recomputeTotals(c *Cart, taxRate decimal.Decimal) {
	total := decimal.Zero
	for i := range c.Items {
		c.Items[i].Subtotal = c.Items[i].Price.Mul(decimal.NewFromInt(int64(c.Items[i].Qty)))
		total = total.Add(c.Items[i].Subtotal)
	}
	if c.Shipping != nil {
		total = total.Add(c.Shipping.Cost)
	}
	c.Total = total
	c.Tax = total.Mul(taxRate).Round(taxScale)
}
