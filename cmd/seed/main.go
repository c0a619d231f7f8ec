// Command seed creates demo accounts for local development and prints a
// bearer token for each one.
package main

import (
	"log"
	"time"

	"carematch-be/internal/config"
	"carematch-be/internal/model"
	"carematch-be/pkg/database"

	"github.com/fatih/color"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

type demoUser struct {
	Email    string
	FullName string
	Role     string
}

var demoUsers = []demoUser{
	{Email: "family@carematch.dev", FullName: "Demo Family", Role: "family"},
	{Email: "caregiver@carematch.dev", FullName: "Demo Caregiver", Role: "caregiver"},
	{Email: "admin@carematch.dev", FullName: "Demo Admin", Role: "admin"},
}

func main() {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}
	if cfg.Auth.JwtSecret == "" {
		log.Fatal("Error: JWT_SECRET is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, false)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Seeding demo accounts...")

	for _, u := range demoUsers {
		user, err := seedUser(db, u)
		if err != nil {
			color.Red("Failed to seed %s: %v", u.Email, err)
			continue
		}

		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"user_id": user.Id,
			"role":    user.Role,
			"exp":     time.Now().Add(30 * 24 * time.Hour).Unix(),
		}).SignedString([]byte(cfg.Auth.JwtSecret))
		if err != nil {
			color.Red("Failed to sign token for %s: %v", u.Email, err)
			continue
		}

		color.Green("%s (%s, id=%d)", user.Email, user.Role, user.Id)
		color.White("  Bearer %s", token)
	}

	log.Println("Seeding completed!")
}

// seedUser is idempotent: existing accounts are reused and a missing
// profile is created.
func seedUser(db *gorm.DB, u demoUser) (*model.User, error) {
	var user model.User
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(model.User{Email: u.Email}).
			Attrs(model.User{FullName: u.FullName, Role: u.Role}).
			FirstOrCreate(&user).Error; err != nil {
			return err
		}

		switch user.Role {
		case "family":
			return tx.Where(model.FamilyProfile{UserId: user.Id}).FirstOrCreate(&model.FamilyProfile{}).Error
		case "caregiver":
			rate := 25.0
			return tx.Where(model.CaregiverProfile{UserId: user.Id}).
				Attrs(model.CaregiverProfile{HourlyRate: &rate}).
				FirstOrCreate(&model.CaregiverProfile{}).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}
