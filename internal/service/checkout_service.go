package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_storefront/internal/checkout"
	"github.com/GTDGit/gtd_storefront/internal/models"
	"github.com/GTDGit/gtd_storefront/internal/pricing"
	"github.com/GTDGit/gtd_storefront/internal/routes"
	"github.com/GTDGit/gtd_storefront/internal/store"
	"github.com/GTDGit/gtd_storefront/internal/utils"
)

// LedgerArchive durably records committed transactions.
type LedgerArchive interface {
	Archive(ctx context.Context, tx models.Transaction) error
}

// NopArchive accepts every transaction without storing it.
type NopArchive struct{}

func (NopArchive) Archive(context.Context, models.Transaction) error { return nil }

// CheckoutObserver receives checkout outcomes for metrics.
type CheckoutObserver interface {
	ObserveVoucherCheck(outcome string)
	ObserveSubmit(outcome string)
}

type nopObserver struct{}

func (nopObserver) ObserveVoucherCheck(string) {}
func (nopObserver) ObserveSubmit(string)       {}

// PaymentMethods returns the payment channel catalog. Bank transfers carry
// bankFee.
func PaymentMethods(bankFee int64) []models.PaymentMethod {
	return []models.PaymentMethod{
		{ID: "gopay", Name: "GoPay", Type: models.PaymentEWallet, Fee: 0},
		{ID: "ovo", Name: "OVO", Type: models.PaymentEWallet, Fee: 0},
		{ID: "dana", Name: "DANA", Type: models.PaymentEWallet, Fee: 0},
		{ID: "bca", Name: "BCA Virtual Account", Type: models.PaymentBankTransfer, Fee: bankFee},
		{ID: "mandiri", Name: "Mandiri Virtual Account", Type: models.PaymentBankTransfer, Fee: bankFee},
		{ID: "bni", Name: "BNI Virtual Account", Type: models.PaymentBankTransfer, Fee: bankFee},
	}
}

// CheckoutView is everything the checkout page renders.
type CheckoutView struct {
	checkout.View
	Product        models.Product         `json:"product"`
	Quote          pricing.Quote          `json:"quote"`
	PaymentMethods []models.PaymentMethod `json:"paymentMethods"`
	Prefill        map[string]string      `json:"prefill"`
}

// SubmitInput carries the checkout form.
type SubmitInput struct {
	Fields        map[string]string
	WhatsApp      string
	PaymentMethod string
}

// SubmitResult is a committed transaction and where to show it.
type SubmitResult struct {
	Transaction models.Transaction `json:"transaction"`
	Redirect    string             `json:"redirect"`
}

// CheckoutOptions configures a CheckoutService.
type CheckoutOptions struct {
	BankFee      int64
	VoucherDelay time.Duration
	Archive      LedgerArchive
	Observer     CheckoutObserver
	Clock        func() time.Time
}

// CheckoutService prices checkouts, checks vouchers and commits transactions.
type CheckoutService struct {
	catalog  *store.CatalogStore
	admin    *store.AdminStore
	sessions *checkout.Manager
	methods  []models.PaymentMethod
	delay    time.Duration
	archive  LedgerArchive
	observer CheckoutObserver
	clock    func() time.Time
}

// NewCheckoutService wires a CheckoutService.
func NewCheckoutService(catalog *store.CatalogStore, admin *store.AdminStore, sessions *checkout.Manager, opts CheckoutOptions) *CheckoutService {
	s := &CheckoutService{
		catalog:  catalog,
		admin:    admin,
		sessions: sessions,
		methods:  PaymentMethods(opts.BankFee),
		delay:    opts.VoucherDelay,
		archive:  opts.Archive,
		observer: opts.Observer,
		clock:    opts.Clock,
	}
	if s.archive == nil {
		s.archive = NopArchive{}
	}
	if s.observer == nil {
		s.observer = nopObserver{}
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	return s
}

// PaymentMethods returns the configured payment channels.
func (s *CheckoutService) PaymentMethods() []models.PaymentMethod {
	return slices.Clone(s.methods)
}

// Open starts a checkout of productID. phone is the signed-in customer's
// number, or empty for a guest.
func (s *CheckoutService) Open(productID int, phone string) (*CheckoutView, error) {
	if _, ok := s.catalog.GetProduct(productID); !ok {
		return nil, utils.ErrProductNotFound
	}
	sess := s.sessions.Open(productID, phone)
	log.Debug().Str("checkout_id", sess.ID).Int("product_id", productID).Msg("Checkout opened")
	return s.view(sess)
}

// View returns the current state of checkout id.
func (s *CheckoutService) View(id string) (*CheckoutView, error) {
	sess, ok := s.sessions.Get(id)
	if !ok {
		return nil, utils.ErrCheckoutNotFound
	}
	return s.view(sess)
}

// SelectPaymentMethod sets the payment channel of checkout id.
func (s *CheckoutService) SelectPaymentMethod(id, methodID string) (*CheckoutView, error) {
	sess, ok := s.sessions.Get(id)
	if !ok {
		return nil, utils.ErrCheckoutNotFound
	}
	pm, ok := s.method(methodID)
	if !ok {
		return nil, utils.ErrPaymentMethodNotFound
	}
	sess.SelectPaymentMethod(pm)
	return s.view(sess)
}

// ApplyVoucher checks code against the checkout's product after the
// configured lookup delay. A rejected code leaves the checkout without a
// discount and is not an error. A result superseded by a removal or a newer
// check while waiting is discarded.
func (s *CheckoutService) ApplyVoucher(ctx context.Context, id, code string) (*CheckoutView, error) {
	sess, ok := s.sessions.Get(id)
	if !ok {
		return nil, utils.ErrCheckoutNotFound
	}
	product, ok := s.catalog.GetProduct(sess.ProductID)
	if !ok {
		return nil, utils.ErrProductNotFound
	}
	price, err := pricing.ParsePrice(product.Price)
	if err != nil {
		return nil, fmt.Errorf("product %d price: %w", product.ID, err)
	}

	ticket, err := sess.Voucher.BeginCheck(code)
	switch {
	case errors.Is(err, checkout.ErrEmptyCode):
		ve := utils.NewValidationError()
		ve.Add("voucherCode", "voucher code is required")
		return nil, ve
	case errors.Is(err, checkout.ErrCheckInProgress):
		return nil, utils.ErrVoucherCheckRunning
	case err != nil:
		return nil, err
	}

	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			sess.Voucher.Abort(ticket)
			s.observer.ObserveVoucherCheck("aborted")
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	res := pricing.Resolve(s.admin.ListVouchers(), ticket.Code, product, price, s.clock())
	status, err := sess.Voucher.CompleteCheck(ticket, res)
	switch {
	case errors.Is(err, checkout.ErrStaleCheck):
		s.observer.ObserveVoucherCheck("stale")
		log.Debug().Str("checkout_id", id).Str("code", ticket.Code).Msg("Discarded superseded voucher check")
	case err != nil:
		return nil, err
	case status.State == checkout.VoucherApplied:
		s.observer.ObserveVoucherCheck("applied")
	default:
		s.observer.ObserveVoucherCheck(string(res.Reason))
		log.Info().Str("checkout_id", id).Str("code", ticket.Code).Str("reason", string(res.Reason)).Msg("Voucher rejected")
	}
	return s.view(sess)
}

// RemoveVoucher clears any voucher from checkout id.
func (s *CheckoutService) RemoveVoucher(id string) (*CheckoutView, error) {
	sess, ok := s.sessions.Get(id)
	if !ok {
		return nil, utils.ErrCheckoutNotFound
	}
	sess.Voucher.Remove()
	return s.view(sess)
}

// Submit validates the checkout form against the product's formConfig and
// commits a pending transaction. The ledger entry and voucher usage are
// reserved first and rolled back if archiving fails.
func (s *CheckoutService) Submit(ctx context.Context, id string, in SubmitInput) (*SubmitResult, error) {
	sess, ok := s.sessions.Get(id)
	if !ok {
		return nil, utils.ErrCheckoutNotFound
	}
	product, ok := s.catalog.GetProduct(sess.ProductID)
	if !ok {
		return nil, utils.ErrProductNotFound
	}
	price, err := pricing.ParsePrice(product.Price)
	if err != nil {
		return nil, fmt.Errorf("product %d price: %w", product.ID, err)
	}

	if in.PaymentMethod != "" {
		pm, ok := s.method(in.PaymentMethod)
		if !ok {
			return nil, utils.ErrPaymentMethodNotFound
		}
		sess.SelectPaymentMethod(pm)
	}
	fields, err := s.validateForm(product, sess, in)
	if err != nil {
		s.observer.ObserveSubmit("invalid")
		return nil, err
	}
	pm, _ := sess.PaymentMethod()

	voucher := sess.Voucher.Status()
	if voucher.State == checkout.VoucherChecking {
		return nil, utils.ErrVoucherCheckRunning
	}
	if voucher.State == checkout.VoucherApplied {
		res := pricing.Resolve(s.admin.ListVouchers(), voucher.Code, product, price, s.clock())
		if !res.Applied() || res.Discount != voucher.Discount {
			if err := recordVoucher(sess, voucher.Code, res); err != nil {
				return nil, err
			}
			s.observer.ObserveSubmit("voucher_changed")
			log.Info().Str("checkout_id", id).Str("code", voucher.Code).Str("reason", string(res.Reason)).Msg("Applied voucher changed before submit")
			if !res.Applied() && res.Voucher.Quota > 0 && res.Voucher.UsedCount >= res.Voucher.Quota {
				return nil, utils.ErrVoucherQuotaExhausted
			}
			return nil, utils.ErrVoucherChanged
		}
		v := res.Voucher.Clone()
		voucher.Voucher = &v
	}
	if !sess.MarkSubmitted() {
		return nil, utils.ErrAlreadySubmitted
	}

	quote := pricing.Compute(price, pm.Fee, voucher.Discount)
	whatsapp := utils.NormalizePhone(in.WhatsApp)
	owner := sess.Owner
	if owner == "" {
		owner = whatsapp
	}
	tx := models.Transaction{
		ID:                s.catalog.NextTransactionID(),
		Owner:             owner,
		Game:              product.Category,
		ProductID:         product.ID,
		ProductName:       product.Name,
		Amount:            quote.Total,
		OriginalAmount:    quote.Price,
		Fee:               quote.Fee,
		Discount:          quote.Discount,
		Status:            models.TrxPending,
		Date:              s.clock().In(utils.WIB).Format(time.RFC3339),
		GameAccount:       fields[models.FieldGameAccount],
		GameZone:          fields[models.FieldGameZone],
		GameServer:        fields[models.FieldGameServer],
		WhatsApp:          whatsapp,
		PaymentMethod:     pm.ID,
		PaymentMethodName: pm.Name,
		Fields:            fields,
	}

	// reserve
	var redeemed *models.Voucher
	if voucher.State == checkout.VoucherApplied && voucher.Voucher != nil {
		v, err := s.admin.RedeemVoucher(voucher.Voucher.ID)
		if err != nil {
			sess.Unsubmit()
			s.observer.ObserveSubmit("voucher_unavailable")
			if errors.Is(err, store.ErrQuotaExhausted) {
				return nil, utils.ErrVoucherQuotaExhausted
			}
			if errors.Is(err, store.ErrNotFound) {
				return nil, utils.ErrVoucherNotFound
			}
			return nil, err
		}
		redeemed = &v
		tx.VoucherCode = v.Code
	}
	s.catalog.AddTransaction(tx)

	// confirm
	if err := s.archive.Archive(ctx, tx); err != nil {
		log.Error().Err(err).Str("transaction_id", tx.ID).Msg("Failed to archive transaction, rolling back")
		if rmErr := s.catalog.RemoveTransaction(tx.ID); rmErr != nil {
			log.Error().Err(rmErr).Str("transaction_id", tx.ID).Msg("Failed to remove transaction during rollback")
		}
		if redeemed != nil {
			if relErr := s.admin.ReleaseVoucher(redeemed.ID); relErr != nil {
				log.Error().Err(relErr).Int("voucher_id", redeemed.ID).Msg("Failed to release voucher during rollback")
			}
		}
		sess.Unsubmit()
		s.observer.ObserveSubmit("failed")
		return nil, fmt.Errorf("archive transaction %s: %w", tx.ID, err)
	}

	s.sessions.Close(id)
	s.observer.ObserveSubmit("success")
	log.Info().
		Str("transaction_id", tx.ID).
		Int("product_id", product.ID).
		Int64("amount", tx.Amount).
		Str("voucher", tx.VoucherCode).
		Msg("Transaction created")

	return &SubmitResult{Transaction: tx, Redirect: routes.TransactionDetail(tx.ID)}, nil
}

// recordVoucher stores res as the outcome of a fresh check of code.
func recordVoucher(sess *checkout.Session, code string, res pricing.Resolution) error {
	ticket, err := sess.Voucher.BeginCheck(code)
	if errors.Is(err, checkout.ErrCheckInProgress) {
		return utils.ErrVoucherCheckRunning
	}
	if err != nil {
		return err
	}
	if _, err := sess.Voucher.CompleteCheck(ticket, res); err != nil && !errors.Is(err, checkout.ErrStaleCheck) {
		return err
	}
	return nil
}

func (s *CheckoutService) validateForm(product models.Product, sess *checkout.Session, in SubmitInput) (map[string]string, error) {
	ve := utils.NewValidationError()
	fields := make(map[string]string, len(product.FormConfig))
	for _, f := range product.FormConfig {
		v := strings.TrimSpace(in.Fields[f.Field])
		if v == "" {
			if f.Required || f.Field == models.FieldGameAccount {
				ve.Add(f.Field, f.Label+" is required")
			}
			continue
		}
		if f.Type == models.FieldSelect && !slices.Contains(f.Options, v) {
			ve.Add(f.Field, f.Label+" must be one of the listed options")
			continue
		}
		fields[f.Field] = v
	}
	if _, ok := fields[models.FieldGameAccount]; !ok {
		ve.Add(models.FieldGameAccount, "game account is required")
	}
	if !utils.IsWhatsApp(utils.NormalizePhone(in.WhatsApp)) {
		ve.Add("whatsapp", "whatsapp number must be 10-13 digits")
	}
	if _, ok := sess.PaymentMethod(); !ok {
		ve.Add("paymentMethod", "payment method is required")
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}
	return fields, nil
}

func (s *CheckoutService) method(id string) (models.PaymentMethod, bool) {
	for _, pm := range s.methods {
		if pm.ID == id {
			return pm, true
		}
	}
	return models.PaymentMethod{}, false
}

func (s *CheckoutService) view(sess *checkout.Session) (*CheckoutView, error) {
	product, ok := s.catalog.GetProduct(sess.ProductID)
	if !ok {
		return nil, utils.ErrProductNotFound
	}
	price, err := pricing.ParsePrice(product.Price)
	if err != nil {
		return nil, fmt.Errorf("product %d price: %w", product.ID, err)
	}
	prefill := map[string]string{}
	if sess.Owner != "" {
		prefill["whatsapp"] = sess.Owner
	}
	return &CheckoutView{
		View:           sess.View(),
		Product:        product,
		Quote:          sess.Quote(price),
		PaymentMethods: s.PaymentMethods(),
		Prefill:        prefill,
	}, nil
}
