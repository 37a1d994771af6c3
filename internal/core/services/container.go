package services

import (
	portsrepo "github.com/tradebooks/tradebooks_backend/internal/core/ports/repositories"
	portssvc "github.com/tradebooks/tradebooks_backend/internal/core/ports/services"
)

// NewContainer creates the service container with properly wired
// dependencies. Workflow services consume the master-data services rather
// than their repositories so company scoping happens once.
func NewContainer(repos *portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Account = NewAccountService(repos.AccountRepo)
	container.Ledger = NewLedgerService(repos.LedgerRepo, repos.AccountRepo)
	container.Vendor = NewVendorService(repos.VendorRepo)
	container.Customer = NewCustomerService(repos.CustomerRepo)
	container.Product = NewProductService(repos.ProductRepo, repos.VendorRepo)
	container.Batch = NewBatchService(repos.BatchRepo, repos.ProductRepo)

	container.Purchase = NewPurchaseService(
		repos.PurchaseRepo,
		repos.BatchRepo,
		repos.LedgerRepo,
		container.Account,
		container.Product,
		container.Vendor,
	)
	container.Sale = NewSaleService(
		repos.SaleRepo,
		repos.LedgerRepo,
		container.Account,
		container.Product,
		container.Customer,
	)

	return container
}
