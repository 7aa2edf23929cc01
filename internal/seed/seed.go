package seed

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"gorm.io/gorm"

	"github.com/velotir/starship_registry/internal/hash"
	"github.com/velotir/starship_registry/internal/models"
)

type Data struct {
	Users []UserData    `json:"users"`
	Ships []models.Ship `json:"ships"`
}

type UserData struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// Run loads path and fills the users and ships tables, skipping any table
// that already holds data so repeated runs never duplicate rows.
func Run(db *gorm.DB, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}

	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}

	var userCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		return err
	}
	if userCount == 0 {
		log.Println("seeding users...")
		for _, u := range data.Users {
			pwHash, err := hash.HashPassword(u.Password)
			if err != nil {
				return fmt.Errorf("hash password for %q: %w", u.Name, err)
			}
			user := models.User{Name: u.Name, Password: pwHash}
			if err := db.Create(&user).Error; err != nil {
				return fmt.Errorf("create user %q: %w", u.Name, err)
			}
			log.Printf("  - added user: %s", user.Name)
		}
	} else {
		log.Println("users table already has data, skipping")
	}

	var shipCount int64
	if err := db.Model(&models.Ship{}).Count(&shipCount).Error; err != nil {
		return err
	}
	if shipCount == 0 {
		log.Println("seeding ships...")
		for _, s := range data.Ships {
			ship := s
			ship.ID = 0
			if err := db.Create(&ship).Error; err != nil {
				return fmt.Errorf("create ship %q: %w", ship.Model, err)
			}
			log.Printf("  - added ship: %s", ship.Model)
		}
	} else {
		log.Println("ships table already has data, skipping")
	}

	return nil
}
