package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nimoapp/nimo-backend/config"
	"github.com/nimoapp/nimo-backend/internal/app/model"
	"github.com/nimoapp/nimo-backend/internal/db"
	"github.com/nimoapp/nimo-backend/pkg/util"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// Seeds partners and their listings from an XLSX workbook with two sheets:
//
//	Mitra:  email | name | password | phone | business_name | business_address | contact_phone | description
//	Produk: owner_email | category_slug | name | description | original_price | discount_price | stock | best_before_hours | pickup_start | pickup_end
//
// Partners are created pre-verified so the listings are live immediately.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		log.Fatal("Failed to open XLSX:", err)
	}
	defer f.Close()

	partners, err := readPartners(f)
	if err != nil {
		log.Fatal("Failed to read partners:", err)
	}
	listings, err := readListings(f)
	if err != nil {
		log.Fatal("Failed to read listings:", err)
	}

	fmt.Printf("Partners to import: %d\n", len(partners))
	fmt.Printf("Listings to import: %d\n", len(listings))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	gdb := db.GetDB()

	created, err := importPartners(gdb, partners)
	if err != nil {
		log.Fatal("Failed to import partners:", err)
	}
	fmt.Printf("Partners imported: %d\n", created)

	created, err = importListings(gdb, listings)
	if err != nil {
		log.Fatal("Failed to import listings:", err)
	}
	fmt.Printf("Listings imported: %d\n", created)

	fmt.Println("Import completed successfully!")
}

type partnerRow struct {
	Email           string
	Name            string
	Password        string
	Phone           string
	BusinessName    string
	BusinessAddress string
	ContactPhone    string
	Description     string
}

type listingRow struct {
	OwnerEmail      string
	CategorySlug    string
	Name            string
	Description     string
	OriginalPrice   float64
	DiscountPrice   float64
	Stock           int
	BestBeforeHours int
	PickupStart     string
	PickupEnd       string
}

func readPartners(f *excelize.File) ([]partnerRow, error) {
	rows, err := f.GetRows("Mitra")
	if err != nil {
		return nil, fmt.Errorf("failed to read Mitra sheet: %w", err)
	}

	var partners []partnerRow
	skipped := 0
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		if len(row) < 5 {
			skipped++
			continue
		}

		p := partnerRow{
			Email:        strings.TrimSpace(row[0]),
			Name:         strings.TrimSpace(row[1]),
			Password:     strings.TrimSpace(row[2]),
			BusinessName: strings.TrimSpace(row[4]),
		}
		if len(row) > 3 {
			p.Phone = strings.TrimSpace(row[3])
		}
		if len(row) > 5 {
			p.BusinessAddress = strings.TrimSpace(row[5])
		}
		if len(row) > 6 {
			p.ContactPhone = strings.TrimSpace(row[6])
		}
		if len(row) > 7 {
			p.Description = strings.TrimSpace(row[7])
		}

		if p.Email == "" || p.Name == "" || p.Password == "" || p.BusinessName == "" {
			skipped++
			continue
		}
		partners = append(partners, p)
	}

	if skipped > 0 {
		fmt.Printf("  Skipped partner rows: %d\n", skipped)
	}
	return partners, nil
}

func readListings(f *excelize.File) ([]listingRow, error) {
	rows, err := f.GetRows("Produk")
	if err != nil {
		return nil, fmt.Errorf("failed to read Produk sheet: %w", err)
	}

	var listings []listingRow
	skipped := 0
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		if len(row) < 7 {
			skipped++
			continue
		}

		original, err1 := strconv.ParseFloat(strings.TrimSpace(row[4]), 64)
		discount, err2 := strconv.ParseFloat(strings.TrimSpace(row[5]), 64)
		stock, err3 := strconv.Atoi(strings.TrimSpace(row[6]))
		if err1 != nil || err2 != nil || err3 != nil {
			skipped++
			continue
		}

		l := listingRow{
			OwnerEmail:      strings.TrimSpace(row[0]),
			CategorySlug:    strings.TrimSpace(row[1]),
			Name:            strings.TrimSpace(row[2]),
			Description:     strings.TrimSpace(row[3]),
			OriginalPrice:   original,
			DiscountPrice:   discount,
			Stock:           stock,
			BestBeforeHours: 24,
			PickupStart:     "17:00",
			PickupEnd:       "20:00",
		}
		if len(row) > 7 {
			if hours, err := strconv.Atoi(strings.TrimSpace(row[7])); err == nil && hours > 0 {
				l.BestBeforeHours = hours
			}
		}
		if len(row) > 8 && strings.TrimSpace(row[8]) != "" {
			l.PickupStart = strings.TrimSpace(row[8])
		}
		if len(row) > 9 && strings.TrimSpace(row[9]) != "" {
			l.PickupEnd = strings.TrimSpace(row[9])
		}

		if l.OwnerEmail == "" || l.Name == "" ||
			l.OriginalPrice <= 0 || l.DiscountPrice <= 0 || l.DiscountPrice >= l.OriginalPrice {
			skipped++
			continue
		}
		listings = append(listings, l)
	}

	if skipped > 0 {
		fmt.Printf("  Skipped listing rows: %d\n", skipped)
	}
	return listings, nil
}

func importPartners(gdb *gorm.DB, partners []partnerRow) (int, error) {
	created := 0
	now := time.Now()

	for _, p := range partners {
		var existing model.User
		err := gdb.Where("email = ?", p.Email).First(&existing).Error
		if err == nil {
			fmt.Printf("  Skipping existing user: %s\n", p.Email)
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return created, err
		}

		hashed, err := util.HashPassword(p.Password)
		if err != nil {
			return created, err
		}

		user := model.User{
			Email:        p.Email,
			Name:         p.Name,
			PasswordHash: &hashed,
			Phone:        p.Phone,
			Role:         model.RoleUmkmOwner,
		}
		profile := model.UmkmProfile{
			BusinessName:    p.BusinessName,
			BusinessAddress: p.BusinessAddress,
			ContactPhone:    p.ContactPhone,
			Description:     p.Description,
			IsVerified:      true,
			VerifiedAt:      &now,
		}

		err = gdb.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			profile.UserID = user.ID
			return tx.Create(&profile).Error
		})
		if err != nil {
			return created, err
		}
		created++
	}

	return created, nil
}

func importListings(gdb *gorm.DB, listings []listingRow) (int, error) {
	created := 0

	for _, l := range listings {
		var owner model.User
		if err := gdb.Preload("UmkmProfile").Where("email = ?", l.OwnerEmail).First(&owner).Error; err != nil {
			fmt.Printf("  Skipping listing %q: owner %s not found\n", l.Name, l.OwnerEmail)
			continue
		}
		if owner.UmkmProfile == nil {
			fmt.Printf("  Skipping listing %q: %s has no partner profile\n", l.Name, l.OwnerEmail)
			continue
		}

		var categoryID *uint
		if l.CategorySlug != "" {
			var category model.Category
			if err := gdb.Where("slug = ?", l.CategorySlug).First(&category).Error; err == nil {
				categoryID = &category.ID
			}
		}

		product := model.Product{
			UmkmID:        owner.UmkmProfile.ID,
			CategoryID:    categoryID,
			Name:          l.Name,
			Description:   l.Description,
			OriginalPrice: l.OriginalPrice,
			DiscountPrice: l.DiscountPrice,
			StockQuantity: l.Stock,
			BestBefore:    time.Now().Add(time.Duration(l.BestBeforeHours) * time.Hour),
			PickupStart:   l.PickupStart,
			PickupEnd:     l.PickupEnd,
			IsActive:      true,
		}
		if err := gdb.Create(&product).Error; err != nil {
			return created, err
		}
		created++
	}

	return created, nil
}
