package model

// Notification topics.
const (
	TopicStockUpdated  = "stock_updated"
	TopicLowStockAlert = "low_stock_alert"
)

// Event is a message published on the notification channel.
type Event struct {
	Topic   string
	Payload any
}

// StockUpdated is the payload of a stock_updated event.
type StockUpdated struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Stock int    `json:"stock"`
}

// LowStockAlert is the payload of a low_stock_alert event.
type LowStockAlert struct {
	ProductName string `json:"product_name"`
	Stock       int    `json:"stock"`
}

// StockEvents returns the events for a product whose stock just changed:
// always a stock_updated, plus a low_stock_alert when withAlert is set and
// the stock is below the alert threshold.
func StockEvents(p Product, withAlert bool) []Event {
	events := []Event{{
		Topic:   TopicStockUpdated,
		Payload: StockUpdated{ID: p.ID, Name: p.Name, Stock: p.Stock},
	}}
	if withAlert && p.IsLowStock() {
		events = append(events, Event{
			Topic:   TopicLowStockAlert,
			Payload: LowStockAlert{ProductName: p.Name, Stock: p.Stock},
		})
	}
	return events
}
