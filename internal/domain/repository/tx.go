package repository

// TxRepos repositorios ligados a una misma transacción. Lo que se haga con ellos
// se confirma o se revierte en bloque.
type TxRepos struct {
	Products       ProductRepository
	StockMovements StockMovementRepository
	Sales          SaleRepository
	CashSessions   CashSessionRepository
	Receivables    ReceivableRepository
	Audit          AuditRepository
	Customers      CustomerRepository
	TaxRates       TaxRateRepository
}
