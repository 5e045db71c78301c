package tgCallback

// Callbacks buttons uniques
const (
	// запросить подтверждение удаления, data = id покупки
	DeletePurchase string = "delete_purchase"
	// data = id покупки
	ConfirmDeletePurchase string = "confirm_delete"
	CancelDeletePurchase  string = "cancel_delete"
	// повторно отправить сохраненную форму
	RetryPurchase    string = "retry_purchase"
	CancelPurchase   string = "cancel_purchase"
	RefreshPortfolio string = "refresh_portfolio"
	// data = номер страницы портфеля
	PortfolioPage string = "portfolio_page"
)
