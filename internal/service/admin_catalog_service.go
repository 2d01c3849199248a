package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_storefront/internal/models"
	"github.com/GTDGit/gtd_storefront/internal/pricing"
	"github.com/GTDGit/gtd_storefront/internal/store"
	"github.com/GTDGit/gtd_storefront/internal/utils"
)

// ImageUploader stores an object and returns its public URL.
type ImageUploader interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
}

// CategoryInput carries a new category.
type CategoryInput struct {
	Name        string
	Description string
	Status      string
}

// ProductInput carries a new product.
type ProductInput struct {
	Name        string
	Description string
	Price       string
	Image       string
	CategoryID  int
	Status      string
	FormConfig  []models.FormField
}

// VoucherInput carries a new voucher.
type VoucherInput struct {
	Code                 string
	Type                 models.VoucherType
	Value                int64
	Description          string
	ApplicationType      models.ApplicationType
	ApplicableIDs        []int
	MinTransactionAmount int64
	MaxDiscountAmount    int64
	Quota                int
	StartDate            string
	EndDate              string
	Status               string
}

// AdminUserInput carries a new back-office account.
type AdminUserInput struct {
	Username string
	Name     string
	Role     models.AdminRole
	Status   string
	Password string
}

// AdminCatalogService validates back-office edits before applying them to
// the AdminStore.
type AdminCatalogService struct {
	admin    *store.AdminStore
	auth     *AdminAuthService
	uploader ImageUploader
	clock    func() time.Time
}

// NewAdminCatalogService wires an AdminCatalogService. uploader may be nil
// when image storage is not configured.
func NewAdminCatalogService(admin *store.AdminStore, auth *AdminAuthService, uploader ImageUploader) *AdminCatalogService {
	return &AdminCatalogService{admin: admin, auth: auth, uploader: uploader, clock: time.Now}
}

// ---- categories ----

func (s *AdminCatalogService) Categories() []models.Category {
	return s.admin.ListCategories()
}

func (s *AdminCatalogService) Category(id int) (models.Category, error) {
	c, ok := s.admin.GetCategory(id)
	if !ok {
		return models.Category{}, utils.ErrCategoryNotFound
	}
	return c, nil
}

func (s *AdminCatalogService) CreateCategory(in CategoryInput) (models.Category, error) {
	c := models.Category{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Status:      in.Status,
	}
	if err := validateCategory(c); err != nil {
		return models.Category{}, err
	}
	c = s.admin.AddCategory(c)
	log.Info().Int("category_id", c.ID).Str("name", c.Name).Msg("Category created")
	return c, nil
}

func (s *AdminCatalogService) UpdateCategory(id int, p store.CategoryPatch) (models.Category, error) {
	cur, ok := s.admin.GetCategory(id)
	if !ok {
		return models.Category{}, utils.ErrCategoryNotFound
	}
	trimPtr(p.Name)
	trimPtr(p.Description)
	setPtr(&cur.Name, p.Name)
	setPtr(&cur.Description, p.Description)
	setPtr(&cur.Status, p.Status)
	if err := validateCategory(cur); err != nil {
		return models.Category{}, err
	}
	c, err := s.admin.UpdateCategory(id, p)
	if errors.Is(err, store.ErrNotFound) {
		return models.Category{}, utils.ErrCategoryNotFound
	}
	return c, err
}

// DeleteCategory removes a category. Products keep their categoryId.
func (s *AdminCatalogService) DeleteCategory(id int) error {
	if err := s.admin.DeleteCategory(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.ErrCategoryNotFound
		}
		return err
	}
	log.Info().Int("category_id", id).Msg("Category deleted")
	return nil
}

func validateCategory(c models.Category) error {
	ve := utils.NewValidationError()
	if c.Name == "" {
		ve.Add("name", "name is required")
	}
	if c.Description == "" {
		ve.Add("description", "description is required")
	}
	if !validStatus(c.Status) {
		ve.Add("status", "status must be active or inactive")
	}
	return ve.OrNil()
}

// ---- products ----

func (s *AdminCatalogService) Products() []models.Product {
	return s.admin.ListProducts()
}

func (s *AdminCatalogService) Product(id int) (models.Product, error) {
	p, ok := s.admin.GetProduct(id)
	if !ok {
		return models.Product{}, utils.ErrProductNotFound
	}
	return p, nil
}

func (s *AdminCatalogService) CreateProduct(in ProductInput) (models.Product, error) {
	p := models.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Price:       strings.TrimSpace(in.Price),
		Image:       strings.TrimSpace(in.Image),
		CategoryID:  in.CategoryID,
		Status:      in.Status,
		FormConfig:  in.FormConfig,
	}
	ve := productValidation(p)
	if c, ok := s.admin.GetCategory(p.CategoryID); ok {
		p.Category = c.Name
	} else {
		ve.Add("categoryId", "category does not exist")
	}
	if err := ve.OrNil(); err != nil {
		return models.Product{}, err
	}
	p = s.admin.AddProduct(p)
	log.Info().Int("product_id", p.ID).Str("name", p.Name).Msg("Product created")
	return p, nil
}

func (s *AdminCatalogService) UpdateProduct(id int, p store.ProductPatch) (models.Product, error) {
	cur, ok := s.admin.GetProduct(id)
	if !ok {
		return models.Product{}, utils.ErrProductNotFound
	}
	trimPtr(p.Name)
	trimPtr(p.Description)
	trimPtr(p.Price)
	trimPtr(p.Image)
	categoryChanged := p.CategoryID != nil && *p.CategoryID != cur.CategoryID

	setPtr(&cur.Name, p.Name)
	setPtr(&cur.Description, p.Description)
	setPtr(&cur.Price, p.Price)
	setPtr(&cur.Image, p.Image)
	setPtr(&cur.Status, p.Status)
	if p.FormConfig != nil {
		cur.FormConfig = p.FormConfig
	}
	ve := productValidation(cur)
	// the category name is always derived from the id
	p.Category = nil
	if categoryChanged {
		if c, ok := s.admin.GetCategory(*p.CategoryID); ok {
			p.Category = &c.Name
		} else {
			ve.Add("categoryId", "category does not exist")
		}
	}
	if err := ve.OrNil(); err != nil {
		return models.Product{}, err
	}

	out, err := s.admin.UpdateProduct(id, p)
	if errors.Is(err, store.ErrNotFound) {
		return models.Product{}, utils.ErrProductNotFound
	}
	return out, err
}

func (s *AdminCatalogService) DeleteProduct(id int) error {
	if err := s.admin.DeleteProduct(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.ErrProductNotFound
		}
		return err
	}
	log.Info().Int("product_id", id).Msg("Product deleted")
	return nil
}

// UploadProductImage stores an image for product id and points the product
// at it.
func (s *AdminCatalogService) UploadProductImage(ctx context.Context, id int, filename, contentType string, body io.Reader, size int64) (models.Product, error) {
	if s.uploader == nil {
		return models.Product{}, utils.ErrStorageUnavailable
	}
	if _, ok := s.admin.GetProduct(id); !ok {
		return models.Product{}, utils.ErrProductNotFound
	}
	if !strings.HasPrefix(contentType, "image/") {
		ve := utils.NewValidationError()
		ve.Add("image", "file must be an image")
		return models.Product{}, ve
	}

	key := fmt.Sprintf("products/%d/%d%s", id, s.clock().UnixMilli(), strings.ToLower(path.Ext(filename)))
	url, err := s.uploader.Upload(ctx, key, contentType, body, size)
	if err != nil {
		log.Error().Err(err).Int("product_id", id).Str("key", key).Msg("Failed to upload product image")
		return models.Product{}, err
	}
	out, err := s.admin.UpdateProduct(id, store.ProductPatch{Image: &url})
	if errors.Is(err, store.ErrNotFound) {
		return models.Product{}, utils.ErrProductNotFound
	}
	return out, err
}

func productValidation(p models.Product) *utils.ValidationError {
	ve := utils.NewValidationError()
	if p.Name == "" {
		ve.Add("name", "name is required")
	}
	if p.Description == "" {
		ve.Add("description", "description is required")
	}
	if p.Price == "" {
		ve.Add("price", "price is required")
	} else if _, err := pricing.ParsePrice(p.Price); err != nil {
		ve.Add("price", "price must be a non-negative number")
	}
	if !utils.IsHTTPURL(p.Image) {
		ve.Add("image", "image must be a valid URL")
	}
	if !validStatus(p.Status) {
		ve.Add("status", "status must be active or inactive")
	}
	if len(p.FormConfig) == 0 {
		ve.Add("formConfig", "at least one form field is required")
	}
	for i, f := range p.FormConfig {
		key := fmt.Sprintf("formConfig[%d]", i)
		switch {
		case strings.TrimSpace(f.Field) == "":
			ve.Add(key+".field", "field is required")
		case strings.TrimSpace(f.Label) == "":
			ve.Add(key+".label", "label is required")
		case f.Type != models.FieldText && f.Type != models.FieldNumber && f.Type != models.FieldSelect:
			ve.Add(key+".type", "type must be text, number or select")
		case f.Type == models.FieldSelect && len(f.Options) == 0:
			ve.Add(key+".options", "select fields need options")
		}
	}
	return ve
}

// ---- vouchers ----

// VoucherView is a voucher with its back-office display status.
type VoucherView struct {
	models.Voucher
	DisplayStatus string `json:"displayStatus"`
}

func (s *AdminCatalogService) Vouchers() []VoucherView {
	now := s.clock().In(utils.WIB)
	list := s.admin.ListVouchers()
	out := make([]VoucherView, 0, len(list))
	for _, v := range list {
		out = append(out, VoucherView{Voucher: v, DisplayStatus: pricing.DisplayStatus(v, now)})
	}
	return out
}

func (s *AdminCatalogService) Voucher(id int) (models.Voucher, error) {
	v, ok := s.admin.GetVoucher(id)
	if !ok {
		return models.Voucher{}, utils.ErrVoucherNotFound
	}
	return v, nil
}

func (s *AdminCatalogService) CreateVoucher(in VoucherInput) (models.Voucher, error) {
	v := models.Voucher{
		Code:                 pricing.NormalizeCode(in.Code),
		Type:                 in.Type,
		Value:                in.Value,
		Description:          strings.TrimSpace(in.Description),
		ApplicationType:      in.ApplicationType,
		ApplicableIDs:        in.ApplicableIDs,
		MinTransactionAmount: in.MinTransactionAmount,
		MaxDiscountAmount:    in.MaxDiscountAmount,
		Quota:                in.Quota,
		StartDate:            strings.TrimSpace(in.StartDate),
		EndDate:              strings.TrimSpace(in.EndDate),
		Status:               in.Status,
	}
	if v.ApplicableIDs == nil || v.ApplicationType == models.ApplyAll {
		v.ApplicableIDs = []int{}
	}
	if err := validateVoucher(v); err != nil {
		return models.Voucher{}, err
	}
	out, err := s.admin.AddVoucher(v)
	if errors.Is(err, store.ErrDuplicate) {
		return models.Voucher{}, utils.ErrDuplicateCode
	}
	if err != nil {
		return models.Voucher{}, err
	}
	log.Info().Int("voucher_id", out.ID).Str("code", out.Code).Msg("Voucher created")
	return out, nil
}

func (s *AdminCatalogService) UpdateVoucher(id int, p store.VoucherPatch) (models.Voucher, error) {
	cur, ok := s.admin.GetVoucher(id)
	if !ok {
		return models.Voucher{}, utils.ErrVoucherNotFound
	}
	if p.Code != nil {
		code := pricing.NormalizeCode(*p.Code)
		p.Code = &code
	}
	trimPtr(p.Description)
	trimPtr(p.StartDate)
	trimPtr(p.EndDate)

	setPtr(&cur.Code, p.Code)
	setPtr(&cur.Type, p.Type)
	setPtr(&cur.Value, p.Value)
	setPtr(&cur.Description, p.Description)
	setPtr(&cur.ApplicationType, p.ApplicationType)
	setPtr(&cur.MinTransactionAmount, p.MinTransactionAmount)
	setPtr(&cur.MaxDiscountAmount, p.MaxDiscountAmount)
	setPtr(&cur.Quota, p.Quota)
	setPtr(&cur.StartDate, p.StartDate)
	setPtr(&cur.EndDate, p.EndDate)
	setPtr(&cur.Status, p.Status)
	if p.ApplicableIDs != nil {
		cur.ApplicableIDs = p.ApplicableIDs
	}
	if cur.ApplicationType == models.ApplyAll {
		p.ApplicableIDs = []int{}
		cur.ApplicableIDs = p.ApplicableIDs
	}
	if err := validateVoucher(cur); err != nil {
		return models.Voucher{}, err
	}

	out, err := s.admin.UpdateVoucher(id, p)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return models.Voucher{}, utils.ErrVoucherNotFound
	case errors.Is(err, store.ErrDuplicate):
		return models.Voucher{}, utils.ErrDuplicateCode
	}
	return out, err
}

func (s *AdminCatalogService) DeleteVoucher(id int) error {
	if err := s.admin.DeleteVoucher(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.ErrVoucherNotFound
		}
		return err
	}
	log.Info().Int("voucher_id", id).Msg("Voucher deleted")
	return nil
}

func validateVoucher(v models.Voucher) error {
	ve := utils.NewValidationError()
	if len(v.Code) < 3 {
		ve.Add("code", "code must be at least 3 characters")
	}
	switch v.Type {
	case models.VoucherPercentage:
		if v.Value > 100 {
			ve.Add("value", "percentage must not exceed 100")
		}
	case models.VoucherFixed:
	default:
		ve.Add("type", "type must be percentage or fixed")
	}
	if v.Value <= 0 {
		ve.Add("value", "value must be positive")
	}
	if v.Description == "" {
		ve.Add("description", "description is required")
	}
	switch v.ApplicationType {
	case models.ApplyAll:
	case models.ApplyCategory, models.ApplyProduct:
		if len(v.ApplicableIDs) == 0 {
			ve.Add("applicableIds", "select at least one item")
		}
	default:
		ve.Add("applicationType", "applicationType must be all, category or product")
	}
	if v.MinTransactionAmount < 0 {
		ve.Add("minTransactionAmount", "minTransactionAmount must not be negative")
	}
	if v.MaxDiscountAmount < 0 {
		ve.Add("maxDiscountAmount", "maxDiscountAmount must not be negative")
	}
	if v.Quota <= 0 {
		ve.Add("quota", "quota must be positive")
	} else if v.Quota < v.UsedCount {
		ve.Add("quota", "quota must not be below the used count")
	}
	start, errStart := time.Parse(models.DateLayout, v.StartDate)
	if errStart != nil {
		ve.Add("startDate", "startDate must be YYYY-MM-DD")
	}
	end, errEnd := time.Parse(models.DateLayout, v.EndDate)
	if errEnd != nil {
		ve.Add("endDate", "endDate must be YYYY-MM-DD")
	}
	if errStart == nil && errEnd == nil && end.Before(start) {
		ve.Add("endDate", "endDate must not be before startDate")
	}
	if !validStatus(v.Status) {
		ve.Add("status", "status must be active or inactive")
	}
	return ve.OrNil()
}

// ---- admin users ----

func (s *AdminCatalogService) AdminUsers() []models.AdminUser {
	return s.admin.ListAdminUsers()
}

func (s *AdminCatalogService) AdminUser(id int) (models.AdminUser, error) {
	u, ok := s.admin.GetAdminUser(id)
	if !ok {
		return models.AdminUser{}, utils.ErrAdminUserNotFound
	}
	return u, nil
}

func (s *AdminCatalogService) CreateAdminUser(in AdminUserInput) (models.AdminUser, error) {
	u := models.AdminUser{
		Username: strings.TrimSpace(in.Username),
		Name:     strings.TrimSpace(in.Name),
		Role:     in.Role,
		Status:   in.Status,
	}
	if u.Status == "" {
		u.Status = models.StatusActive
	}
	ve := adminUserValidation(u)
	if len(in.Password) < 6 {
		ve.Add("password", "password must be at least 6 characters")
	}
	if err := ve.OrNil(); err != nil {
		return models.AdminUser{}, err
	}

	out, err := s.admin.AddAdminUser(u)
	if errors.Is(err, store.ErrDuplicate) {
		return models.AdminUser{}, utils.ErrDuplicateUsername
	}
	if err != nil {
		return models.AdminUser{}, err
	}
	if err := s.auth.SetPassword(out.ID, in.Password); err != nil {
		_ = s.admin.DeleteAdminUser(out.ID)
		return models.AdminUser{}, fmt.Errorf("hash password: %w", err)
	}
	log.Info().Int("admin_id", out.ID).Str("username", out.Username).Str("role", string(out.Role)).Msg("Admin user created")
	return out, nil
}

// UpdateAdminUser merges p into account id. A non-empty password replaces
// the current one.
func (s *AdminCatalogService) UpdateAdminUser(id int, p store.AdminUserPatch, password string) (models.AdminUser, error) {
	cur, ok := s.admin.GetAdminUser(id)
	if !ok {
		return models.AdminUser{}, utils.ErrAdminUserNotFound
	}
	trimPtr(p.Username)
	trimPtr(p.Name)
	setPtr(&cur.Username, p.Username)
	setPtr(&cur.Name, p.Name)
	setPtr(&cur.Role, p.Role)
	setPtr(&cur.Status, p.Status)
	ve := adminUserValidation(cur)
	if password != "" && len(password) < 6 {
		ve.Add("password", "password must be at least 6 characters")
	}
	if err := ve.OrNil(); err != nil {
		return models.AdminUser{}, err
	}

	out, err := s.admin.UpdateAdminUser(id, p)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return models.AdminUser{}, utils.ErrAdminUserNotFound
	case errors.Is(err, store.ErrDuplicate):
		return models.AdminUser{}, utils.ErrDuplicateUsername
	case err != nil:
		return models.AdminUser{}, err
	}
	if password != "" {
		if err := s.auth.SetPassword(id, password); err != nil {
			return models.AdminUser{}, fmt.Errorf("hash password: %w", err)
		}
	}
	return out, nil
}

func (s *AdminCatalogService) DeleteAdminUser(id int) error {
	if err := s.admin.DeleteAdminUser(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.ErrAdminUserNotFound
		}
		return err
	}
	s.auth.RemoveCredential(id)
	log.Info().Int("admin_id", id).Msg("Admin user deleted")
	return nil
}

func adminUserValidation(u models.AdminUser) *utils.ValidationError {
	ve := utils.NewValidationError()
	if u.Username == "" {
		ve.Add("username", "username is required")
	}
	if u.Name == "" {
		ve.Add("name", "name is required")
	}
	if !u.Role.Valid() {
		ve.Add("role", "role must be super_admin or operator")
	}
	if !validStatus(u.Status) {
		ve.Add("status", "status must be active or inactive")
	}
	return ve
}

func validStatus(s string) bool {
	return s == models.StatusActive || s == models.StatusInactive
}

func setPtr[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
