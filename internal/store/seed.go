package store

import (
	"strings"
	"time"

	"github.com/GTDGit/gtd_storefront/internal/models"
)

const seedDate = "2025-09-26"

// GenshinServers lists the selectable Genshin Impact regions.
var GenshinServers = []string{"America", "Europe", "Asia", "TW_HK_MO"}

// FormConfigFor returns the checkout fields used for a game category.
func FormConfigFor(category string) []models.FormField {
	switch strings.ToLower(category) {
	case "mobile legends":
		return []models.FormField{
			{Field: models.FieldGameAccount, Label: "User ID", Type: models.FieldText, Required: true, Placeholder: "Masukkan User ID"},
			{Field: models.FieldGameZone, Label: "Zone ID", Type: models.FieldText, Required: true, Placeholder: "Masukkan Zone ID"},
		}
	case "free fire", "pubg mobile":
		return []models.FormField{
			{Field: models.FieldGameAccount, Label: "Player ID", Type: models.FieldText, Required: true, Placeholder: "Masukkan Player ID"},
		}
	case "genshin impact":
		return []models.FormField{
			{Field: models.FieldGameAccount, Label: "UID", Type: models.FieldText, Required: true, Placeholder: "Masukkan UID"},
			{Field: models.FieldGameServer, Label: "Server", Type: models.FieldSelect, Required: true, Options: append([]string(nil), GenshinServers...)},
		}
	default:
		return []models.FormField{
			{Field: models.FieldGameAccount, Label: "ID Game & Server", Type: models.FieldText, Required: true, Placeholder: "Masukkan ID Game & Server"},
		}
	}
}

// SeedCategories are the four launch games.
func SeedCategories() []models.Category {
	return []models.Category{
		{ID: 1, Name: "Mobile Legends", Description: "MOBA Game", Status: models.StatusActive, CreatedAt: seedDate},
		{ID: 2, Name: "Free Fire", Description: "Battle Royale", Status: models.StatusActive, CreatedAt: seedDate},
		{ID: 3, Name: "PUBG Mobile", Description: "Battle Royale", Status: models.StatusActive, CreatedAt: seedDate},
		{ID: 4, Name: "Genshin Impact", Description: "RPG Adventure", Status: models.StatusActive, CreatedAt: seedDate},
	}
}

// SeedStorefrontProducts is the storefront's opening catalog.
func SeedStorefrontProducts() []models.Product {
	mk := func(id int, name, desc, price, image, category string, categoryID int) models.Product {
		return models.Product{
			ID: id, Name: name, Description: desc, Price: price, Image: image,
			Category: category, CategoryID: categoryID, Status: models.StatusActive,
			FormConfig: FormConfigFor(category), CreatedAt: seedDate,
		}
	}
	return []models.Product{
		mk(1, "Mobile Legends 86 Diamond", "86 Diamond untuk Mobile Legends", "20000",
			"https://images.unsplash.com/photo-1550745165-9bc0b252726f?w=150&h=100&fit=crop&crop=center", "Mobile Legends", 1),
		mk(2, "Free Fire 70 Diamond", "70 Diamond untuk Free Fire", "15000",
			"https://images.unsplash.com/photo-1538481199705-c710c4e965fc?w=150&h=100&fit=crop&crop=center", "Free Fire", 2),
		mk(3, "Mobile Legends 172 Diamond", "172 Diamond untuk Mobile Legends", "40000",
			"https://images.unsplash.com/photo-1556438064-2d7646166914?w=150&h=100&fit=crop&crop=center", "Mobile Legends", 1),
		mk(4, "Free Fire 140 Diamond", "140 Diamond untuk Free Fire", "30000",
			"https://images.unsplash.com/photo-1542751371-adc38448a05e?w=150&h=100&fit=crop&crop=center", "Free Fire", 2),
	}
}

// SeedAdminProducts is the back-office's opening product list.
func SeedAdminProducts() []models.Product {
	return []models.Product{{
		ID:          1,
		Name:        "50 Diamonds",
		Description: "50 Diamonds Mobile Legends",
		Price:       "15000",
		Image:       "https://images.unsplash.com/photo-1511512578047-dfb367046420?w=400&h=300&fit=crop&crop=center",
		Category:    "Mobile Legends",
		CategoryID:  1,
		Status:      models.StatusActive,
		FormConfig:  FormConfigFor("Mobile Legends"),
		CreatedAt:   seedDate,
	}}
}

// SeedVouchers are the opening discount codes, with validity windows placed
// around now.
func SeedVouchers(now time.Time) []models.Voucher {
	day := func(offset int) string {
		return now.AddDate(0, 0, offset).Format(models.DateLayout)
	}
	return []models.Voucher{
		{
			ID: 1, Code: "NEWUSER10", Type: models.VoucherPercentage, Value: 10,
			Description: "Diskon 10% untuk user baru", ApplicationType: models.ApplyAll, ApplicableIDs: []int{},
			Quota: 100, UsedCount: 25, StartDate: day(-30), EndDate: day(90),
			Status: models.StatusActive, CreatedAt: seedDate,
		},
		{
			ID: 2, Code: "SAVE5K", Type: models.VoucherFixed, Value: 5000,
			Description: "Potongan Rp 5.000", ApplicationType: models.ApplyCategory, ApplicableIDs: []int{1},
			Quota: 50, UsedCount: 12, StartDate: day(-14), EndDate: day(14),
			Status: models.StatusActive, CreatedAt: seedDate,
		},
		{
			ID: 3, Code: "WEEKEND20", Type: models.VoucherPercentage, Value: 20,
			Description: "Diskon akhir pekan 20%", ApplicationType: models.ApplyAll, ApplicableIDs: []int{},
			Quota: 500, UsedCount: 0, StartDate: day(-30), EndDate: day(365),
			Status: models.StatusActive, CreatedAt: seedDate,
		},
	}
}

// SeedAdminUsers are the demo back-office accounts.
func SeedAdminUsers() []models.AdminUser {
	return []models.AdminUser{
		{ID: 1, Username: "admin", Name: "Super Admin", Role: models.RoleSuperAdmin, Status: models.StatusActive, CreatedAt: seedDate},
		{ID: 2, Username: "operator", Name: "Operator 1", Role: models.RoleOperator, Status: models.StatusActive, CreatedAt: seedDate},
	}
}

// DemoCustomerPhone owns the seeded ledger entries.
const DemoCustomerPhone = "08123456789"

// SeedTransactions is the opening ledger, most recent first.
func SeedTransactions() []models.Transaction {
	return []models.Transaction{
		{
			ID: "TRX002", Owner: DemoCustomerPhone, Game: "Free Fire", ProductID: 2, ProductName: "Free Fire 70 Diamond",
			Amount: 15000, OriginalAmount: 15000, Status: models.TrxPending, Date: "2024-03-16T10:00:00+07:00",
			GameAccount: "123456789", WhatsApp: "081234567890", PaymentMethod: "ovo", PaymentMethodName: "OVO",
		},
		{
			ID: "TRX001", Owner: DemoCustomerPhone, Game: "Mobile Legends", ProductID: 1, ProductName: "Mobile Legends 86 Diamond",
			Amount: 20000, OriginalAmount: 20000, Status: models.TrxSuccess, Date: "2024-03-15T10:00:00+07:00",
			GameAccount: "987654321", GameZone: "1234", WhatsApp: "081234567890", PaymentMethod: "gopay", PaymentMethodName: "GoPay",
		},
	}
}
