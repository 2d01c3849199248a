package store

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/GTDGit/gtd_storefront/internal/models"
	"github.com/GTDGit/gtd_storefront/internal/pricing"
)

// Event topics published by AdminStore.
const (
	TopicCategories    = "categories"
	TopicAdminProducts = "admin_products"
	TopicVouchers      = "vouchers"
	TopicAdminUsers    = "admin_users"
	TopicAnalytics     = "analytics"
)

// AdminOptions configures an AdminStore.
type AdminOptions struct {
	Categories []models.Category
	Products   []models.Product
	Vouchers   []models.Voucher
	Users      []models.AdminUser
	Clock      Clock

	// VoucherSeed builds extra vouchers from the store clock. They follow
	// Vouchers.
	VoucherSeed func(now time.Time) []models.Voucher
}

// SeedAdminOptions returns options preloaded with the back-office fixtures.
func SeedAdminOptions() AdminOptions {
	return AdminOptions{
		Categories: SeedCategories(),
		Products:   SeedAdminProducts(),
		Users:      SeedAdminUsers(),

		VoucherSeed: SeedVouchers,
	}
}

// CategoryPatch carries category fields to merge; nil means unchanged.
type CategoryPatch struct {
	Name        *string
	Description *string
	Status      *string
}

// ProductPatch carries product fields to merge; nil means unchanged.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *string
	Image       *string
	Category    *string
	CategoryID  *int
	Status      *string
	FormConfig  []models.FormField
}

// VoucherPatch carries voucher fields to merge; nil means unchanged.
type VoucherPatch struct {
	Code                 *string
	Type                 *models.VoucherType
	Value                *int64
	Description          *string
	ApplicationType      *models.ApplicationType
	ApplicableIDs        []int
	MinTransactionAmount *int64
	MaxDiscountAmount    *int64
	Quota                *int
	StartDate            *string
	EndDate              *string
	Status               *string
}

// AdminUserPatch carries admin account fields to merge; nil means unchanged.
type AdminUserPatch struct {
	Username *string
	Name     *string
	Role     *models.AdminRole
	Status   *string
}

// AdminStore is the back-office catalog: categories, products, vouchers,
// admin accounts, and the last computed dashboard snapshot.
type AdminStore struct {
	mu         sync.RWMutex
	categories []models.Category
	products   []models.Product
	vouchers   []models.Voucher
	users      []models.AdminUser
	analytics  models.Analytics

	categoryIDs idCounter
	productIDs  idCounter
	voucherIDs  idCounter
	userIDs     idCounter

	clock Clock
	subs  subscribers
}

// NewAdminStore builds an AdminStore. Id counters start past the highest
// seeded id of each collection.
func NewAdminStore(opts AdminOptions) *AdminStore {
	s := &AdminStore{clock: opts.Clock}
	if s.clock == nil {
		s.clock = time.Now
	}
	for _, c := range opts.Categories {
		s.categories = append(s.categories, c)
		s.categoryIDs.seedPast(c.ID)
	}
	for _, p := range opts.Products {
		s.products = append(s.products, p.Clone())
		s.productIDs.seedPast(p.ID)
	}
	vouchers := opts.Vouchers
	if opts.VoucherSeed != nil {
		vouchers = append(append([]models.Voucher(nil), vouchers...), opts.VoucherSeed(s.clock())...)
	}
	for _, v := range vouchers {
		v = v.Clone()
		v.Code = pricing.NormalizeCode(v.Code)
		s.vouchers = append(s.vouchers, v)
		s.voucherIDs.seedPast(v.ID)
	}
	for _, u := range opts.Users {
		s.users = append(s.users, u)
		s.userIDs.seedPast(u.ID)
	}
	return s
}

// Subscribe registers fn for back-office changes and returns its cancel func.
func (s *AdminStore) Subscribe(fn Listener) func() {
	return s.subs.add(fn)
}

func (s *AdminStore) today() string {
	return s.clock().Format(models.DateLayout)
}

func (s *AdminStore) emit(topic string, action Action, id int, payload any) {
	s.subs.publish(Event{Topic: topic, Action: action, ID: strconv.Itoa(id), Payload: payload, At: s.clock()})
}

// ---- categories ----

// ListCategories returns every category in insertion order.
func (s *AdminStore) ListCategories() []models.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Category{}, s.categories...)
}

// GetCategory returns category id.
func (s *AdminStore) GetCategory(id int) (models.Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.categories {
		if c.ID == id {
			return c, true
		}
	}
	return models.Category{}, false
}

// AddCategory stores c under a fresh id stamped with today's date.
func (s *AdminStore) AddCategory(c models.Category) models.Category {
	s.mu.Lock()
	c.ID = s.categoryIDs.take()
	c.CreatedAt = s.today()
	s.categories = append(s.categories, c)
	s.mu.Unlock()
	s.emit(TopicCategories, ActionCreated, c.ID, c)
	return c
}

// UpdateCategory merges p into category id.
func (s *AdminStore) UpdateCategory(id int, p CategoryPatch) (models.Category, error) {
	s.mu.Lock()
	idx := indexOf(s.categories, func(c models.Category) bool { return c.ID == id })
	if idx < 0 {
		s.mu.Unlock()
		return models.Category{}, ErrNotFound
	}
	c := &s.categories[idx]
	setIf(&c.Name, p.Name)
	setIf(&c.Description, p.Description)
	setIf(&c.Status, p.Status)
	out := *c
	s.mu.Unlock()
	s.emit(TopicCategories, ActionUpdated, id, out)
	return out, nil
}

// DeleteCategory removes category id. Products referencing it are left
// untouched.
func (s *AdminStore) DeleteCategory(id int) error {
	s.mu.Lock()
	idx := indexOf(s.categories, func(c models.Category) bool { return c.ID == id })
	if idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.categories = append(s.categories[:idx:idx], s.categories[idx+1:]...)
	s.mu.Unlock()
	s.emit(TopicCategories, ActionDeleted, id, nil)
	return nil
}

// ---- products ----

// ListProducts returns every back-office product in insertion order.
func (s *AdminStore) ListProducts() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneProducts(s.products)
}

// GetProduct returns product id.
func (s *AdminStore) GetProduct(id int) (models.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return p.Clone(), true
		}
	}
	return models.Product{}, false
}

// AddProduct stores p under a fresh id stamped with today's date.
func (s *AdminStore) AddProduct(p models.Product) models.Product {
	p = p.Clone()
	s.mu.Lock()
	p.ID = s.productIDs.take()
	p.CreatedAt = s.today()
	s.products = append(s.products, p)
	s.mu.Unlock()
	s.emit(TopicAdminProducts, ActionCreated, p.ID, p.Clone())
	return p.Clone()
}

// UpdateProduct merges patch into product id.
func (s *AdminStore) UpdateProduct(id int, patch ProductPatch) (models.Product, error) {
	s.mu.Lock()
	idx := indexOf(s.products, func(p models.Product) bool { return p.ID == id })
	if idx < 0 {
		s.mu.Unlock()
		return models.Product{}, ErrNotFound
	}
	p := &s.products[idx]
	setIf(&p.Name, patch.Name)
	setIf(&p.Description, patch.Description)
	setIf(&p.Price, patch.Price)
	setIf(&p.Image, patch.Image)
	setIf(&p.Category, patch.Category)
	setIf(&p.CategoryID, patch.CategoryID)
	setIf(&p.Status, patch.Status)
	if patch.FormConfig != nil {
		p.FormConfig = models.Product{FormConfig: patch.FormConfig}.Clone().FormConfig
	}
	out := p.Clone()
	s.mu.Unlock()
	s.emit(TopicAdminProducts, ActionUpdated, id, out.Clone())
	return out, nil
}

// DeleteProduct removes product id.
func (s *AdminStore) DeleteProduct(id int) error {
	s.mu.Lock()
	idx := indexOf(s.products, func(p models.Product) bool { return p.ID == id })
	if idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.products = append(s.products[:idx:idx], s.products[idx+1:]...)
	s.mu.Unlock()
	s.emit(TopicAdminProducts, ActionDeleted, id, nil)
	return nil
}

// ---- vouchers ----

// ListVouchers returns every voucher in insertion order.
func (s *AdminStore) ListVouchers() []models.Voucher {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Voucher, len(s.vouchers))
	for i, v := range s.vouchers {
		out[i] = v.Clone()
	}
	return out
}

// GetVoucher returns voucher id.
func (s *AdminStore) GetVoucher(id int) (models.Voucher, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.vouchers {
		if v.ID == id {
			return v.Clone(), true
		}
	}
	return models.Voucher{}, false
}

// FindVoucherByCode looks up a voucher case-insensitively.
func (s *AdminStore) FindVoucherByCode(code string) (models.Voucher, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := pricing.FindVoucher(s.vouchers, code)
	if !ok {
		return models.Voucher{}, false
	}
	return v.Clone(), true
}

// AddVoucher stores v under a fresh id with no redemptions. The code is
// stored upper-case and must be unique.
func (s *AdminStore) AddVoucher(v models.Voucher) (models.Voucher, error) {
	v = v.Clone()
	v.Code = pricing.NormalizeCode(v.Code)
	s.mu.Lock()
	if s.codeTakenLocked(v.Code, 0) {
		s.mu.Unlock()
		return models.Voucher{}, ErrDuplicate
	}
	v.ID = s.voucherIDs.take()
	v.UsedCount = 0
	v.CreatedAt = s.today()
	s.vouchers = append(s.vouchers, v)
	s.mu.Unlock()
	s.emit(TopicVouchers, ActionCreated, v.ID, v.Clone())
	return v.Clone(), nil
}

// UpdateVoucher merges p into voucher id.
func (s *AdminStore) UpdateVoucher(id int, p VoucherPatch) (models.Voucher, error) {
	s.mu.Lock()
	idx := indexOf(s.vouchers, func(v models.Voucher) bool { return v.ID == id })
	if idx < 0 {
		s.mu.Unlock()
		return models.Voucher{}, ErrNotFound
	}
	if p.Code != nil {
		code := pricing.NormalizeCode(*p.Code)
		if s.codeTakenLocked(code, id) {
			s.mu.Unlock()
			return models.Voucher{}, ErrDuplicate
		}
		p.Code = &code
	}
	v := &s.vouchers[idx]
	setIf(&v.Code, p.Code)
	setIf(&v.Type, p.Type)
	setIf(&v.Value, p.Value)
	setIf(&v.Description, p.Description)
	setIf(&v.ApplicationType, p.ApplicationType)
	if p.ApplicableIDs != nil {
		v.ApplicableIDs = append([]int{}, p.ApplicableIDs...)
	}
	setIf(&v.MinTransactionAmount, p.MinTransactionAmount)
	setIf(&v.MaxDiscountAmount, p.MaxDiscountAmount)
	setIf(&v.Quota, p.Quota)
	setIf(&v.StartDate, p.StartDate)
	setIf(&v.EndDate, p.EndDate)
	setIf(&v.Status, p.Status)
	out := v.Clone()
	s.mu.Unlock()
	s.emit(TopicVouchers, ActionUpdated, id, out.Clone())
	return out, nil
}

// DeleteVoucher removes voucher id.
func (s *AdminStore) DeleteVoucher(id int) error {
	s.mu.Lock()
	idx := indexOf(s.vouchers, func(v models.Voucher) bool { return v.ID == id })
	if idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.vouchers = append(s.vouchers[:idx:idx], s.vouchers[idx+1:]...)
	s.mu.Unlock()
	s.emit(TopicVouchers, ActionDeleted, id, nil)
	return nil
}

// RedeemVoucher consumes one unit of quota.
func (s *AdminStore) RedeemVoucher(id int) (models.Voucher, error) {
	s.mu.Lock()
	idx := indexOf(s.vouchers, func(v models.Voucher) bool { return v.ID == id })
	if idx < 0 {
		s.mu.Unlock()
		return models.Voucher{}, ErrNotFound
	}
	v := &s.vouchers[idx]
	if v.UsedCount >= v.Quota {
		s.mu.Unlock()
		return models.Voucher{}, ErrQuotaExhausted
	}
	v.UsedCount++
	out := v.Clone()
	s.mu.Unlock()
	s.emit(TopicVouchers, ActionUpdated, id, out.Clone())
	return out, nil
}

// ReleaseVoucher returns one unit of quota taken by RedeemVoucher.
func (s *AdminStore) ReleaseVoucher(id int) error {
	s.mu.Lock()
	idx := indexOf(s.vouchers, func(v models.Voucher) bool { return v.ID == id })
	if idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	v := &s.vouchers[idx]
	if v.UsedCount > 0 {
		v.UsedCount--
	}
	out := v.Clone()
	s.mu.Unlock()
	s.emit(TopicVouchers, ActionUpdated, id, out)
	return nil
}

func (s *AdminStore) codeTakenLocked(code string, exceptID int) bool {
	for _, v := range s.vouchers {
		if v.ID != exceptID && v.Code == code {
			return true
		}
	}
	return false
}

// ---- admin users ----

// ListAdminUsers returns every admin account in insertion order.
func (s *AdminStore) ListAdminUsers() []models.AdminUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.AdminUser{}, s.users...)
}

// GetAdminUser returns admin account id.
func (s *AdminStore) GetAdminUser(id int) (models.AdminUser, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return models.AdminUser{}, false
}

// FindAdminUserByUsername looks up an admin account regardless of case.
func (s *AdminStore) FindAdminUserByUsername(username string) (models.AdminUser, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) {
			return u, true
		}
	}
	return models.AdminUser{}, false
}

// AddAdminUser stores u under a fresh id. Usernames are unique regardless of
// case.
func (s *AdminStore) AddAdminUser(u models.AdminUser) (models.AdminUser, error) {
	s.mu.Lock()
	if s.usernameTakenLocked(u.Username, 0) {
		s.mu.Unlock()
		return models.AdminUser{}, ErrDuplicate
	}
	u.ID = s.userIDs.take()
	u.CreatedAt = s.today()
	s.users = append(s.users, u)
	s.mu.Unlock()
	s.emit(TopicAdminUsers, ActionCreated, u.ID, u)
	return u, nil
}

// UpdateAdminUser merges p into admin account id.
func (s *AdminStore) UpdateAdminUser(id int, p AdminUserPatch) (models.AdminUser, error) {
	s.mu.Lock()
	idx := indexOf(s.users, func(u models.AdminUser) bool { return u.ID == id })
	if idx < 0 {
		s.mu.Unlock()
		return models.AdminUser{}, ErrNotFound
	}
	if p.Username != nil && s.usernameTakenLocked(*p.Username, id) {
		s.mu.Unlock()
		return models.AdminUser{}, ErrDuplicate
	}
	u := &s.users[idx]
	setIf(&u.Username, p.Username)
	setIf(&u.Name, p.Name)
	setIf(&u.Role, p.Role)
	setIf(&u.Status, p.Status)
	out := *u
	s.mu.Unlock()
	s.emit(TopicAdminUsers, ActionUpdated, id, out)
	return out, nil
}

// DeleteAdminUser removes admin account id.
func (s *AdminStore) DeleteAdminUser(id int) error {
	s.mu.Lock()
	idx := indexOf(s.users, func(u models.AdminUser) bool { return u.ID == id })
	if idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.users = append(s.users[:idx:idx], s.users[idx+1:]...)
	s.mu.Unlock()
	s.emit(TopicAdminUsers, ActionDeleted, id, nil)
	return nil
}

func (s *AdminStore) usernameTakenLocked(username string, exceptID int) bool {
	for _, u := range s.users {
		if u.ID != exceptID && strings.EqualFold(u.Username, username) {
			return true
		}
	}
	return false
}

func indexOf[T any](items []T, match func(T) bool) int {
	for i, it := range items {
		if match(it) {
			return i
		}
	}
	return -1
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
