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

// purchaseService drives the goods-received workflow: each purchase line
// becomes exactly one batch, and the whole document lands in the ledger as a
// single posting.
type purchaseService struct {
	BaseService
	purchaseRepo portsrepo.PurchaseRepositoryFacade
	batchRepo    portsrepo.BatchReader
	ledgerRepo   portsrepo.LedgerReader
	accountSvc   portssvc.AccountReaderSvc
	productSvc   portssvc.ProductSvcFacade
	vendorSvc    portssvc.VendorSvcFacade
}

// NewPurchaseService creates a new purchase service.
func NewPurchaseService(
	purchaseRepo portsrepo.PurchaseRepositoryFacade,
	batchRepo portsrepo.BatchReader,
	ledgerRepo portsrepo.LedgerReader,
	accountSvc portssvc.AccountReaderSvc,
	productSvc portssvc.ProductSvcFacade,
	vendorSvc portssvc.VendorSvcFacade,
) portssvc.PurchaseSvcFacade {
	return &purchaseService{
		purchaseRepo: purchaseRepo,
		batchRepo:    batchRepo,
		ledgerRepo:   ledgerRepo,
		accountSvc:   accountSvc,
		productSvc:   productSvc,
		vendorSvc:    vendorSvc,
	}
}

var _ portssvc.PurchaseSvcFacade = (*purchaseService)(nil)

// settlementAccountCode maps a payment type to the well-known account it
// settles against.
func settlementAccountCode(paymentType domain.PaymentType) (string, error) {
	switch paymentType {
	case domain.PaymentCash:
		return domain.CodeCash, nil
	case domain.PaymentBank:
		return domain.CodeBank, nil
	case domain.PaymentCredit:
		return domain.CodeAccountsPayable, nil
	case domain.PaymentCOD:
		return domain.CodeAccountsReceivable, nil
	default:
		return "", fmt.Errorf("unknown payment type %q: %w", paymentType, apperrors.ErrValidation)
	}
}

func (s *purchaseService) CreatePurchase(ctx context.Context, companyID string, req dto.CreatePurchaseRequest, userID string) (*domain.Purchase, error) {
	vendor, err := s.vendorSvc.GetVendorByID(ctx, companyID, req.VendorID)
	if err != nil {
		return nil, fmt.Errorf("invalid vendor: %w", err)
	}

	now := time.Now().UTC()
	purchaseID := uuid.NewString()

	total := decimal.Zero
	items := make([]domain.PurchaseItem, len(req.Items))
	batches := make([]domain.Batch, len(req.Items))
	batchNumbers := make(map[string]map[string]bool) // productID -> batch numbers in this request

	for i, itemReq := range req.Items {
		if itemReq.Quantity <= 0 {
			return nil, fmt.Errorf("item %d: quantity must be positive: %w", i, apperrors.ErrValidation)
		}
		if itemReq.UnitPrice.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("item %d: unit price must be positive: %w", i, apperrors.ErrValidation)
		}

		product, err := s.productSvc.GetProductByID(ctx, companyID, itemReq.ProductID)
		if err != nil {
			return nil, fmt.Errorf("item %d: invalid product: %w", i, err)
		}

		batchNumber := itemReq.BatchNumber
		if batchNumber == "" {
			batchNumber = fmt.Sprintf("BATCH-%s-%d", product.SKU, now.Unix())
		}
		if batchNumbers[product.ProductID] == nil {
			batchNumbers[product.ProductID] = make(map[string]bool)
		}
		if batchNumbers[product.ProductID][batchNumber] {
			return nil, fmt.Errorf("duplicate batch number %q for product %s: %w", batchNumber, product.SKU, apperrors.ErrDuplicate)
		}
		batchNumbers[product.ProductID][batchNumber] = true

		lineTotal := itemReq.UnitPrice.Mul(decimal.NewFromInt(itemReq.Quantity))
		total = total.Add(lineTotal)

		batchID := uuid.NewString()
		pid := purchaseID
		batches[i] = domain.Batch{
			BatchID:           batchID,
			ProductID:         product.ProductID,
			CompanyID:         companyID,
			BatchNumber:       batchNumber,
			Quantity:          itemReq.Quantity,
			AvailableQuantity: itemReq.Quantity,
			ManufacturingDate: itemReq.ManufacturingDate,
			ExpiryDate:        itemReq.ExpiryDate,
			PurchasePrice:     itemReq.UnitPrice,
			PurchaseID:        &pid,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
		items[i] = domain.PurchaseItem{
			PurchaseItemID: uuid.NewString(),
			PurchaseID:     purchaseID,
			ProductID:      product.ProductID,
			BatchID:        batchID,
			Quantity:       itemReq.Quantity,
			UnitPrice:      itemReq.UnitPrice,
			TotalPrice:     lineTotal,
		}
	}

	creditCode, err := settlementAccountCode(req.PaymentType)
	if err != nil {
		return nil, err
	}
	inventoryAccount, err := s.accountSvc.GetAccountByCode(ctx, companyID, domain.CodeInventory)
	if err != nil {
		return nil, fmt.Errorf("inventory account missing: %w", err)
	}
	creditAccount, err := s.accountSvc.GetAccountByCode(ctx, companyID, creditCode)
	if err != nil {
		return nil, fmt.Errorf("settlement account %s missing: %w", creditCode, err)
	}

	// Cash and bank purchases settle immediately; credit purchases start
	// fully outstanding.
	paid := decimal.Zero
	if req.PaymentType == domain.PaymentCash || req.PaymentType == domain.PaymentBank {
		paid = total
	}

	purchase := domain.Purchase{
		PurchaseID:     purchaseID,
		CompanyID:      companyID,
		PurchaseNumber: fmt.Sprintf("PUR-%d", now.UnixMilli()),
		VendorID:       vendor.VendorID,
		Items:          items,
		TotalAmount:    total,
		PaidAmount:     paid,
		Status:         domain.PurchaseCompleted,
		PaymentType:    req.PaymentType,
		Notes:          req.Notes,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	posting := newPosting(companyID, inventoryAccount.AccountID, creditAccount.AccountID, total,
		fmt.Sprintf("Purchase %s from %s", purchase.PurchaseNumber, vendor.Name), now, userID, now)
	posting.PurchaseID = &purchaseID

	created, err := s.purchaseRepo.CreatePurchase(ctx, portsrepo.PurchaseCreateData{
		Purchase: purchase,
		Items:    items,
		Batches:  batches,
		Posting:  posting,
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create purchase",
			slog.String("purchase_id", purchaseID),
			slog.String("company_id", companyID))
		return nil, err
	}

	s.LogInfo(ctx, "Purchase created",
		slog.String("purchase_id", created.PurchaseID),
		slog.String("purchase_number", created.PurchaseNumber),
		slog.String("vendor_id", vendor.VendorID),
		slog.Int("items", len(items)))
	return created, nil
}

func (s *purchaseService) AddPayment(ctx context.Context, companyID string, purchaseID string, req dto.AddPurchasePaymentRequest, userID string) (*domain.PurchasePayment, error) {
	purchase, err := s.GetPurchaseByID(ctx, companyID, purchaseID)
	if err != nil {
		return nil, err
	}

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("payment amount must be positive: %w", apperrors.ErrValidation)
	}
	remaining := purchase.RemainingBalance()
	if req.Amount.GreaterThan(remaining) {
		return nil, fmt.Errorf("payment %s exceeds remaining balance %s: %w",
			req.Amount.String(), remaining.String(), apperrors.ErrValidation)
	}

	creditCode, err := settlementAccountCode(req.PaymentType)
	if err != nil {
		return nil, err
	}
	if req.PaymentType != domain.PaymentCash && req.PaymentType != domain.PaymentBank {
		return nil, fmt.Errorf("payments settle in cash or bank only: %w", apperrors.ErrValidation)
	}
	payableAccount, err := s.accountSvc.GetAccountByCode(ctx, companyID, domain.CodeAccountsPayable)
	if err != nil {
		return nil, fmt.Errorf("payable account missing: %w", err)
	}
	creditAccount, err := s.accountSvc.GetAccountByCode(ctx, companyID, creditCode)
	if err != nil {
		return nil, fmt.Errorf("settlement account %s missing: %w", creditCode, err)
	}

	now := time.Now().UTC()
	payment := domain.PurchasePayment{
		PaymentID:   uuid.NewString(),
		PurchaseID:  purchaseID,
		Amount:      req.Amount,
		PaymentDate: req.PaymentDate,
		PaymentType: req.PaymentType,
		Notes:       req.Notes,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	posting := newPosting(companyID, payableAccount.AccountID, creditAccount.AccountID, req.Amount,
		fmt.Sprintf("Payment for %s", purchase.PurchaseNumber), req.PaymentDate, userID, now)
	posting.PurchaseID = &purchaseID

	saved, err := s.purchaseRepo.AddPayment(ctx, payment, posting)
	if err != nil {
		s.LogError(ctx, err, "Failed to add payment",
			slog.String("purchase_id", purchaseID),
			slog.String("payment_id", payment.PaymentID))
		return nil, err
	}

	s.LogInfo(ctx, "Payment recorded",
		slog.String("purchase_id", purchaseID),
		slog.String("payment_id", saved.PaymentID),
		slog.String("amount", saved.Amount.String()))
	return saved, nil
}

func (s *purchaseService) DeletePurchase(ctx context.Context, companyID string, purchaseID string, userID string) error {
	purchase, err := s.GetPurchaseByID(ctx, companyID, purchaseID)
	if err != nil {
		return err
	}

	// A purchase whose stock was partially sold can no longer be undone.
	for _, item := range purchase.Items {
		batch, err := s.batchRepo.FindBatchByID(ctx, item.BatchID)
		if err != nil {
			return err
		}
		if !batch.IsUntouched() {
			return fmt.Errorf("batch %s already has allocations: %w", batch.BatchNumber, apperrors.ErrConflict)
		}
	}

	postings, err := s.ledgerRepo.FindTransactionsByOrigin(ctx, portsrepo.TransactionOriginFilter{PurchaseID: &purchaseID})
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
			fmt.Sprintf("Reversal of #%d (purchase %s deleted)", txn.TransactionNumber, purchase.PurchaseNumber), userID, now))
	}

	if err := s.purchaseRepo.DeletePurchase(ctx, purchaseID, reversals); err != nil {
		s.LogError(ctx, err, "Failed to delete purchase",
			slog.String("purchase_id", purchaseID))
		return err
	}

	s.LogInfo(ctx, "Purchase deleted",
		slog.String("purchase_id", purchaseID),
		slog.String("purchase_number", purchase.PurchaseNumber),
		slog.Int("reversals", len(reversals)))
	return nil
}

func (s *purchaseService) GetPurchaseByID(ctx context.Context, companyID string, purchaseID string) (*domain.Purchase, error) {
	purchase, err := s.purchaseRepo.FindPurchaseByID(ctx, purchaseID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find purchase",
				slog.String("purchase_id", purchaseID))
		}
		return nil, err
	}
	if purchase.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}
	return purchase, nil
}

func (s *purchaseService) ListPurchases(ctx context.Context, companyID string, limit int, offset int) ([]domain.Purchase, error) {
	purchases, err := s.purchaseRepo.ListPurchasesByCompany(ctx, companyID, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list purchases",
			slog.String("company_id", companyID))
		return nil, err
	}
	if purchases == nil {
		return []domain.Purchase{}, nil
	}
	return purchases, nil
}

func (s *purchaseService) ListPurchasesByVendor(ctx context.Context, companyID string, vendorID string) ([]domain.Purchase, error) {
	if _, err := s.vendorSvc.GetVendorByID(ctx, companyID, vendorID); err != nil {
		return nil, err
	}
	purchases, err := s.purchaseRepo.ListPurchasesByVendor(ctx, vendorID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list vendor purchases",
			slog.String("vendor_id", vendorID))
		return nil, err
	}
	if purchases == nil {
		return []domain.Purchase{}, nil
	}
	return purchases, nil
}

func (s *purchaseService) ListPayments(ctx context.Context, companyID string, purchaseID string) ([]domain.PurchasePayment, error) {
	if _, err := s.GetPurchaseByID(ctx, companyID, purchaseID); err != nil {
		return nil, err
	}
	payments, err := s.purchaseRepo.ListPaymentsByPurchase(ctx, purchaseID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list payments",
			slog.String("purchase_id", purchaseID))
		return nil, err
	}
	if payments == nil {
		return []domain.PurchasePayment{}, nil
	}
	return payments, nil
}
