package domain

type ProductSnapshot struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"image_url,omitempty"`
	Stock    int     `json:"stock"`
}

type CartLine struct {
	ID        int64            `json:"id"`
	ProductID int64            `json:"product_id"`
	Quantity  int              `json:"quantity"`
	Product   *ProductSnapshot `json:"product,omitempty"`
}

// Subtotal is zero when the backend did not attach a product snapshot.
func (l CartLine) Subtotal() float64 {
	if l.Product == nil {
		return 0
	}
	return l.Product.Price * float64(l.Quantity)
}

type CartSummary struct {
	TotalAmount float64 `json:"total_amount"`
	ItemCount   int     `json:"item_count"`
}

// Summarize derives the cart summary from a line set.
func Summarize(lines []CartLine) CartSummary {
	var summary CartSummary
	for _, line := range lines {
		summary.TotalAmount += line.Subtotal()
		summary.ItemCount += line.Quantity
	}
	return summary
}
