package seed

import (
	"time"

	"staylane/config"
	"staylane/internal/handlers/middleware"
	. "staylane/internal/models"
	"staylane/internal/utils"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const devTokenTTL = 30 * 24 * time.Hour

func money(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func Seed(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("seed")
	log.Info("Seeding development data")

	users := []*User{
		{FirstName: "Olivia", LastName: "Owner", Email: utils.Ptr("owner@example.com"), Role: RoleOwner, IsActive: true},
		{FirstName: "Gary", LastName: "Guest", Email: utils.Ptr("guest@example.com"), Role: RoleGuest, IsActive: true},
		{FirstName: "Ada", LastName: "Admin", Email: utils.Ptr("admin@example.com"), Role: RoleAdmin, IsActive: true},
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		for _, user := range users {
			if err := tx.Create(user).Error; err != nil {
				return log.Err("failed to create user", err, "email", *user.Email)
			}
		}
		owner, guest := users[0], users[1]

		property := &Property{OwnerID: owner.ID, Name: "Lakeside Cabin", Status: PropertyStatusLive}
		if err := tx.Create(property).Error; err != nil {
			return log.Err("failed to create property", err)
		}

		if err := seedPricing(tx, property); err != nil {
			return err
		}

		if err := seedRatePlans(tx, property); err != nil {
			return err
		}

		return seedReservation(tx, property, guest)
	})
	if err != nil {
		return log.Err("failed to seed development data", err)
	}

	if config.JWTSecret == "" {
		return nil
	}

	for _, user := range users {
		token, err := middleware.IssueToken(config.JWTSecret, config.JWTIssuer, user.ID, devTokenTTL)
		if err != nil {
			return log.Err("failed to issue development token", err, "email", *user.Email)
		}
		log.Info("Development token", "email", *user.Email, "role", user.Role, "token", token)
	}

	return nil
}

func seedPricing(tx *gorm.DB, property *Property) error {
	weekly := &WeeklyPricing{PropertyID: property.ID}

	var full, half [7]decimal.Decimal
	for day := time.Sunday; day <= time.Saturday; day++ {
		full[day] = money("300")
		half[day] = money("200")
	}
	full[time.Friday] = money("450")
	full[time.Saturday] = money("450")
	weekly.SetPrices(full, half)

	if err := tx.Create(weekly).Error; err != nil {
		return err
	}

	newYear := time.Date(time.Now().UTC().Year()+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	return tx.Create(&DateOverride{
		PropertyID:   property.ID,
		Date:         newYear,
		Price:        money("1200"),
		HalfDayPrice: utils.Ptr(money("800")),
		Reason:       utils.Ptr("New Year's Day"),
	}).Error
}

func seedRatePlans(tx *gorm.DB, property *Property) error {
	plans := []struct {
		plan   RatePlan
		policy *CancellationPolicy
	}{
		{
			plan: RatePlan{
				Name:          "Early Bird",
				Description:   "Book at least 30 days ahead",
				Priority:      20,
				ModifierType:  ModifierPercentage,
				ModifierValue: money("-15"),
				MinAdvance:    utils.Ptr(30),
				Features:      []string{"Free parking"},
			},
			policy: &CancellationPolicy{
				Type:                 PolicyModerate,
				FreeCancellationDays: utils.Ptr(14),
				PartialRefundDays:    utils.Ptr(7),
			},
		},
		{
			plan: RatePlan{
				Name:          "Non-refundable Saver",
				Description:   "Lowest price, no refunds",
				Priority:      10,
				ModifierType:  ModifierPercentage,
				ModifierValue: money("-20"),
				Features:      []string{},
			},
			policy: &CancellationPolicy{Type: PolicyNonRefundable},
		},
		{
			plan: RatePlan{
				Name:          "Breakfast Included",
				Description:   "Daily breakfast basket",
				Priority:      5,
				ModifierType:  ModifierFixedAmount,
				ModifierValue: money("25"),
				MaxGuests:     utils.Ptr(4),
				Features:      []string{"Breakfast", "Late checkout"},
			},
		},
	}

	for _, entry := range plans {
		plan := entry.plan
		plan.PropertyID = property.ID
		plan.IsActive = true
		if err := tx.Omit("CancellationPolicy").Create(&plan).Error; err != nil {
			return err
		}

		if entry.policy != nil {
			entry.policy.RatePlanID = plan.ID
			if err := tx.Create(entry.policy).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

func seedReservation(tx *gorm.DB, property *Property, guest *User) error {
	checkIn := utils.DateOnly(time.Now()).AddDate(0, 0, 21)
	checkOut := checkIn.AddDate(0, 0, 3)

	reservation := &Reservation{
		PropertyID: property.ID,
		GuestID:    guest.ID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		GuestCount: 2,
		TotalPrice: money("1050"),
		Status:     ReservationConfirmed,
	}
	if err := tx.Create(reservation).Error; err != nil {
		return err
	}

	for _, date := range utils.DatesInRange(checkIn, checkOut) {
		if err := tx.Create(&Availability{
			PropertyID:  property.ID,
			Date:        date,
			IsAvailable: false,
		}).Error; err != nil {
			return err
		}
	}

	return nil
}
