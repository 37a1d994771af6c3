package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradebooks/tradebooks_backend/internal/apperrors"
	"github.com/tradebooks/tradebooks_backend/internal/core/domain"
	portsrepo "github.com/tradebooks/tradebooks_backend/internal/core/ports/repositories"
	portssvc "github.com/tradebooks/tradebooks_backend/internal/core/ports/services"
	"github.com/tradebooks/tradebooks_backend/internal/dto"
)

// saleService drives the sale workflow. Stock leaves through batch
// allocations recorded per item, and every return puts quantity back into
// the exact batches it came from.
type saleService struct {
	BaseService
	saleRepo    portsrepo.SaleRepositoryFacade
	ledgerRepo  portsrepo.LedgerReader
	accountSvc  portssvc.AccountReaderSvc
	productSvc  portssvc.ProductSvcFacade
	customerSvc portssvc.CustomerSvcFacade
}

// NewSaleService creates a new sale service.
func NewSaleService(
	saleRepo portsrepo.SaleRepositoryFacade,
	ledgerRepo portsrepo.LedgerReader,
	accountSvc portssvc.AccountReaderSvc,
	productSvc portssvc.ProductSvcFacade,
	customerSvc portssvc.CustomerSvcFacade,
) portssvc.SaleSvcFacade {
	return &saleService{
		saleRepo:    saleRepo,
		ledgerRepo:  ledgerRepo,
		accountSvc:  accountSvc,
		productSvc:  productSvc,
		customerSvc: customerSvc,
	}
}

var _ portssvc.SaleSvcFacade = (*saleService)(nil)

func (s *saleService) CreateSale(ctx context.Context, companyID string, req dto.CreateSaleRequest, userID string) (*domain.Sale, error) {
	if req.CustomerID != nil {
		if _, err := s.customerSvc.GetCustomerByID(ctx, companyID, *req.CustomerID); err != nil {
			return nil, fmt.Errorf("invalid customer: %w", err)
		}
	}

	now := time.Now().UTC()
	saleID := uuid.NewString()

	total := decimal.Zero
	items := make([]domain.SaleItem, len(req.Items))
	explicit := make(map[int][]domain.BatchAllocation)

	for i, itemReq := range req.Items {
		if itemReq.Quantity <= 0 {
			return nil, fmt.Errorf("item %d: quantity must be positive: %w", i, apperrors.ErrValidation)
		}
		if itemReq.UnitPrice.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("item %d: unit price must be positive: %w", i, apperrors.ErrValidation)
		}
		if _, err := s.productSvc.GetProductByID(ctx, companyID, itemReq.ProductID); err != nil {
			return nil, fmt.Errorf("item %d: invalid product: %w", i, err)
		}

		if len(itemReq.BatchAllocations) > 0 {
			var allocated int64
			allocs := make([]domain.BatchAllocation, len(itemReq.BatchAllocations))
			for j, a := range itemReq.BatchAllocations {
				allocs[j] = domain.BatchAllocation{BatchID: a.BatchID, QuantityTaken: a.Quantity}
				allocated += a.Quantity
			}
			if allocated != itemReq.Quantity {
				return nil, fmt.Errorf("item %d: batch allocations cover %d of %d units: %w",
					i, allocated, itemReq.Quantity, apperrors.ErrValidation)
			}
			explicit[i] = allocs
		}

		lineTotal := itemReq.UnitPrice.Mul(decimal.NewFromInt(itemReq.Quantity))
		total = total.Add(lineTotal)
		items[i] = domain.SaleItem{
			SaleItemID: uuid.NewString(),
			SaleID:     saleID,
			ProductID:  itemReq.ProductID,
			Quantity:   itemReq.Quantity,
			UnitPrice:  itemReq.UnitPrice,
			TotalPrice: lineTotal,
		}
	}

	debitCode, err := settlementAccountCode(req.PaymentType)
	if err != nil {
		return nil, err
	}
	debitAccount, err := s.accountSvc.GetAccountByCode(ctx, companyID, debitCode)
	if err != nil {
		return nil, fmt.Errorf("settlement account %s missing: %w", debitCode, err)
	}
	revenueAccount, err := s.accountSvc.GetAccountByCode(ctx, companyID, domain.CodeSalesRevenue)
	if err != nil {
		return nil, fmt.Errorf("sales revenue account missing: %w", err)
	}

	// Cash and bank sales collect immediately; cash-on-delivery stays in
	// receivables until collected.
	paid := decimal.Zero
	if req.PaymentType == domain.PaymentCash || req.PaymentType == domain.PaymentBank {
		paid = total
	}

	status := domain.SaleCompleted
	if req.Status == domain.SaleInProgress {
		status = domain.SaleInProgress
	}

	sale := domain.Sale{
		SaleID:      saleID,
		CompanyID:   companyID,
		SaleNumber:  fmt.Sprintf("SALE-%d", now.UnixMilli()),
		CustomerID:  req.CustomerID,
		Items:       items,
		TotalAmount: total,
		PaidAmount:  paid,
		Status:      status,
		PaymentType: req.PaymentType,
		Notes:       req.Notes,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	posting := newPosting(companyID, debitAccount.AccountID, revenueAccount.AccountID, total,
		fmt.Sprintf("Sale %s", sale.SaleNumber), now, userID, now)
	posting.SaleID = &saleID

	created, err := s.saleRepo.CreateSale(ctx, portsrepo.SaleCreateData{
		Sale:                sale,
		Items:               items,
		Posting:             posting,
		ExplicitAllocations: explicit,
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrInsufficientStock) {
			s.LogError(ctx, err, "Failed to create sale",
				slog.String("sale_id", saleID),
				slog.String("company_id", companyID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Sale created",
		slog.String("sale_id", created.SaleID),
		slog.String("sale_number", created.SaleNumber),
		slog.Int("items", len(items)),
		slog.String("total", total.String()))
	return created, nil
}

func (s *saleService) ReturnSale(ctx context.Context, companyID string, saleID string, req dto.ReturnSaleRequest, userID string) (*domain.Sale, error) {
	sale, err := s.GetSaleByID(ctx, companyID, saleID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if len(req.Items) == 0 {
		return s.fullReturn(ctx, sale, userID, now)
	}
	return s.partialReturn(ctx, sale, req, userID, now)
}

// fullReturn undoes the whole sale: every un-returned unit goes back to its
// source batch and the original posting is reversed. Only a sale nothing was
// returned from yet can be fully returned.
func (s *saleService) fullReturn(ctx context.Context, sale *domain.Sale, userID string, now time.Time) (*domain.Sale, error) {
	if sale.Status != domain.SaleCompleted && sale.Status != domain.SaleInProgress {
		return nil, fmt.Errorf("sale %s is %s: %w", sale.SaleNumber, sale.Status, apperrors.ErrConflict)
	}

	itemReturns := make([]portsrepo.SaleItemReturn, 0, len(sale.Items))
	for _, item := range sale.Items {
		qty := item.Quantity - item.ReturnedQuantity
		if qty <= 0 {
			continue
		}
		releases := make([]portsrepo.BatchRelease, 0, len(item.Allocations))
		for _, alloc := range item.Allocations {
			open := alloc.QuantityTaken - alloc.QuantityReturned
			if open > 0 {
				releases = append(releases, portsrepo.BatchRelease{BatchID: alloc.BatchID, Quantity: open})
			}
		}
		itemReturns = append(itemReturns, portsrepo.SaleItemReturn{
			SaleItemID: item.SaleItemID,
			Quantity:   qty,
			Releases:   releases,
		})
	}

	orig, err := s.findSalePosting(ctx, sale.SaleID)
	if err != nil {
		return nil, err
	}
	posting := mirrorOf(*orig, fmt.Sprintf("Full return of %s", sale.SaleNumber), userID, now)

	data := portsrepo.SaleReturnData{
		SaleID:    sale.SaleID,
		Items:     itemReturns,
		Posting:   posting,
		NewStatus: domain.SaleReturned,
	}
	if err := s.saleRepo.ReturnSale(ctx, data); err != nil {
		s.LogError(ctx, err, "Failed to process full return",
			slog.String("sale_id", sale.SaleID))
		return nil, err
	}

	s.LogInfo(ctx, "Sale fully returned",
		slog.String("sale_id", sale.SaleID),
		slog.String("sale_number", sale.SaleNumber))
	return s.GetSaleByID(ctx, sale.CompanyID, sale.SaleID)
}

// partialReturn returns a subset of items. Released units walk the item's
// allocations in order, and the posting carries only the returned amount:
// revenue is debited and the account the sale originally debited is credited.
func (s *saleService) partialReturn(ctx context.Context, sale *domain.Sale, req dto.ReturnSaleRequest, userID string, now time.Time) (*domain.Sale, error) {
	if !sale.Status.CanTransitionTo(domain.SalePartialReturn) {
		return nil, fmt.Errorf("sale %s is %s: %w", sale.SaleNumber, sale.Status, apperrors.ErrConflict)
	}

	itemsByID := make(map[string]*domain.SaleItem, len(sale.Items))
	for i := range sale.Items {
		itemsByID[sale.Items[i].SaleItemID] = &sale.Items[i]
	}

	returnedAmount := decimal.Zero
	itemReturns := make([]portsrepo.SaleItemReturn, 0, len(req.Items))
	returnedByItem := make(map[string]int64, len(req.Items))

	for _, itemReq := range req.Items {
		item, ok := itemsByID[itemReq.SaleItemID]
		if !ok {
			return nil, fmt.Errorf("sale item %s: %w", itemReq.SaleItemID, apperrors.ErrNotFound)
		}
		if returnedByItem[itemReq.SaleItemID] > 0 {
			return nil, fmt.Errorf("sale item %s listed twice: %w", itemReq.SaleItemID, apperrors.ErrValidation)
		}
		open := item.Quantity - item.ReturnedQuantity
		if itemReq.Quantity > open {
			return nil, fmt.Errorf("return of %d exceeds un-returned quantity %d for item %s: %w",
				itemReq.Quantity, open, itemReq.SaleItemID, apperrors.ErrValidation)
		}
		returnedByItem[itemReq.SaleItemID] = itemReq.Quantity

		// Walk allocations in order, releasing to each source batch until
		// the requested quantity is covered.
		left := itemReq.Quantity
		releases := make([]portsrepo.BatchRelease, 0, len(item.Allocations))
		for _, alloc := range item.Allocations {
			if left <= 0 {
				break
			}
			openAlloc := alloc.QuantityTaken - alloc.QuantityReturned
			if openAlloc <= 0 {
				continue
			}
			take := openAlloc
			if take > left {
				take = left
			}
			releases = append(releases, portsrepo.BatchRelease{BatchID: alloc.BatchID, Quantity: take})
			left -= take
		}
		if left > 0 {
			return nil, fmt.Errorf("allocations of item %s cannot cover return of %d: %w",
				itemReq.SaleItemID, itemReq.Quantity, apperrors.ErrConflict)
		}

		returnedAmount = returnedAmount.Add(item.UnitPrice.Mul(decimal.NewFromInt(itemReq.Quantity)))
		itemReturns = append(itemReturns, portsrepo.SaleItemReturn{
			SaleItemID: itemReq.SaleItemID,
			Quantity:   itemReq.Quantity,
			Releases:   releases,
		})
	}

	orig, err := s.findSalePosting(ctx, sale.SaleID)
	if err != nil {
		return nil, err
	}
	posting := newPosting(sale.CompanyID, orig.CreditAccountID, orig.DebitAccountID, returnedAmount,
		fmt.Sprintf("Partial return of %s", sale.SaleNumber), now, userID, now)
	saleID := sale.SaleID
	posting.SaleID = &saleID

	// When this return exhausts everything still out, the sale closes.
	newStatus := domain.SalePartialReturn
	allReturned := true
	for _, item := range sale.Items {
		if item.Quantity-item.ReturnedQuantity-returnedByItem[item.SaleItemID] > 0 {
			allReturned = false
			break
		}
	}
	if allReturned {
		newStatus = domain.SaleReturned
	}

	data := portsrepo.SaleReturnData{
		SaleID:    sale.SaleID,
		Items:     itemReturns,
		Posting:   posting,
		NewStatus: newStatus,
	}
	if err := s.saleRepo.ReturnSale(ctx, data); err != nil {
		s.LogError(ctx, err, "Failed to process partial return",
			slog.String("sale_id", sale.SaleID))
		return nil, err
	}

	s.LogInfo(ctx, "Sale partially returned",
		slog.String("sale_id", sale.SaleID),
		slog.String("sale_number", sale.SaleNumber),
		slog.String("returned_amount", returnedAmount.String()),
		slog.String("status", string(newStatus)))
	return s.GetSaleByID(ctx, sale.CompanyID, sale.SaleID)
}

// findSalePosting locates the sale's original revenue posting, skipping
// reversals and return postings that share the same origin link.
func (s *saleService) findSalePosting(ctx context.Context, saleID string) (*domain.Transaction, error) {
	txns, err := s.ledgerRepo.FindTransactionsByOrigin(ctx, portsrepo.TransactionOriginFilter{SaleID: &saleID})
	if err != nil {
		return nil, err
	}
	var orig *domain.Transaction
	for i := range txns {
		if txns[i].IsReversal() {
			continue
		}
		if orig == nil || txns[i].TransactionNumber < orig.TransactionNumber {
			orig = &txns[i]
		}
	}
	if orig == nil {
		return nil, fmt.Errorf("no posting found for sale %s: %w", saleID, apperrors.ErrNotFound)
	}
	return orig, nil
}

func (s *saleService) DeleteSale(ctx context.Context, companyID string, saleID string, userID string) error {
	sale, err := s.GetSaleByID(ctx, companyID, saleID)
	if err != nil {
		return err
	}

	postings, err := s.ledgerRepo.FindTransactionsByOrigin(ctx, portsrepo.TransactionOriginFilter{SaleID: &saleID})
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	reversals := make([]domain.Transaction, 0, len(postings))
	for _, txn := range postings {
		if txn.IsReversal() {
			continue
		}
		reversals = append(reversals, mirrorOf(txn,
			fmt.Sprintf("Reversal of #%d (sale %s deleted)", txn.TransactionNumber, sale.SaleNumber), userID, now))
	}

	if err := s.saleRepo.DeleteSale(ctx, saleID, reversals); err != nil {
		s.LogError(ctx, err, "Failed to delete sale",
			slog.String("sale_id", saleID))
		return err
	}

	s.LogInfo(ctx, "Sale deleted",
		slog.String("sale_id", saleID),
		slog.String("sale_number", sale.SaleNumber),
		slog.Int("reversals", len(reversals)))
	return nil
}

func (s *saleService) GetSaleByID(ctx context.Context, companyID string, saleID string) (*domain.Sale, error) {
	sale, err := s.saleRepo.FindSaleByID(ctx, saleID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find sale",
				slog.String("sale_id", saleID))
		}
		return nil, err
	}
	if sale.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}
	return sale, nil
}

func (s *saleService) ListSales(ctx context.Context, companyID string, limit int, offset int) ([]domain.Sale, error) {
	sales, err := s.saleRepo.ListSalesByCompany(ctx, companyID, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list sales",
			slog.String("company_id", companyID))
		return nil, err
	}
	if sales == nil {
		return []domain.Sale{}, nil
	}
	return sales, nil
}

func (s *saleService) ListSalesByCustomer(ctx context.Context, companyID string, customerID string) ([]domain.Sale, error) {
	if _, err := s.customerSvc.GetCustomerByID(ctx, companyID, customerID); err != nil {
		return nil, err
	}
	sales, err := s.saleRepo.ListSalesByCustomer(ctx, customerID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list customer sales",
			slog.String("customer_id", customerID))
		return nil, err
	}
	if sales == nil {
		return []domain.Sale{}, nil
	}
	return sales, nil
}
