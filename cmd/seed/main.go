package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm/clause"

	"github.com/djdeepak14/laundry-backend/internal/database"
	"github.com/djdeepak14/laundry-backend/internal/domain"
)

// Seeds the admin account and the machine fleet for a fresh install.
func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "laundry.db"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal("DB connection failed: ", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "admin123"
	}
	adminHash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal(err)
	}

	log.Println("Seeding admin user...")
	admin := domain.User{
		Name:         "Administrator",
		Email:        "admin@laundry.local",
		PasswordHash: string(adminHash),
		Role:         domain.RoleAdmin,
		IsApproved:   true,
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoNothing: true,
	}).Create(&admin).Error; err != nil {
		log.Fatal("seed admin failed: ", err)
	}

	log.Println("Seeding machines...")
	fleet := []domain.Machine{
		{Code: "W1", Type: domain.MachineWasher},
		{Code: "W2", Type: domain.MachineWasher},
		{Code: "W3", Type: domain.MachineWasher},
		{Code: "D1", Type: domain.MachineDryer},
		{Code: "D2", Type: domain.MachineDryer},
	}
	for i := range fleet {
		fleet[i].Status = domain.MachineAvailable
		fleet[i].IsActive = true
		fleet[i].BookingEnabled = true
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoNothing: true,
	}).Create(&fleet).Error; err != nil {
		log.Fatal("seed machines failed: ", err)
	}

	log.Println("Seed complete.")
}
