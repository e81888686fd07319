package messaging

// StockLowSubject carries notifications for products that dropped to or
// below their reorder level.
const StockLowSubject = "inventory.stock.low"
