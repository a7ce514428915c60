package main

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/joho/godotenv"
	"github.com/logsentinel/backend/internal/db"
	"github.com/logsentinel/backend/internal/models"
	"golang.org/x/crypto/bcrypt"
)

type seedUser struct {
	Email    string
	Password string
	Name     string
	Role     models.UserRole
}

var seedUsers = []seedUser{
	{Email: "admin@logsentinel.local", Password: "admin123", Name: "Admin User", Role: models.RoleAdmin},
	{Email: "alice@example.com", Password: "password1", Name: "Alice Carter", Role: models.RoleViewer},
	{Email: "bob@example.com", Password: "password2", Name: "Bob Nguyen", Role: models.RoleViewer},
	{Email: "carol@example.com", Password: "password3", Name: "Carol Diaz", Role: models.RoleViewer},
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Connect to database
	db.Connect()

	// Run migrations first
	log.Println("Running database migrations...")
	db.AutoMigrate()

	users, err := createUsers()
	if err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}

	if err := createActivityLogs(users); err != nil {
		log.Fatalf("Failed to seed activity logs: %v", err)
	}

	log.Println("Database seeding completed successfully!")
}

func createUsers() ([]models.User, error) {
	var created []models.User

	for _, data := range seedUsers {
		var existing models.User
		if err := db.DB.Where("email = ?", data.Email).First(&existing).Error; err == nil {
			log.Printf("User already exists: %s", data.Email)
			created = append(created, existing)
			continue
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(data.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password for %s: %w", data.Email, err)
		}

		user := models.User{
			Email:    data.Email,
			Password: string(hashed),
			Name:     data.Name,
			Role:     data.Role,
		}
		if err := db.DB.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", data.Email, err)
		}
		log.Printf("Created user: %s (%s)", user.Email, user.Role)
		created = append(created, user)
	}

	return created, nil
}

// createActivityLogs generates a week of demo activity so a local
// analysis run has something to chew on. Bob gets a burst of failed
// logins from rotating IPs, the others look ordinary.
func createActivityLogs(users []models.User) error {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	now := time.Now()

	var logs []models.ActivityLog

	for i := range users {
		user := &users[i]
		suspicious := user.Email == "bob@example.com"

		count := 20
		if suspicious {
			count = 60
		}

		for j := 0; j < count; j++ {
			ts := now.Add(-time.Duration(rng.Intn(7*24)) * time.Hour)
			ip := fmt.Sprintf("192.168.1.%d", 10+i)
			if suspicious {
				ip = fmt.Sprintf("10.0.%d.%d", rng.Intn(255), rng.Intn(255))
			}

			entry := models.ActivityLog{
				Level:     models.LogLevelInfo,
				Action:    models.ActionLoginAttempt,
				Message:   "User login attempt",
				UserID:    &user.ID,
				IPAddress: ip,
				UserAgent: "Mozilla/5.0",
				Timestamp: ts,
			}

			switch {
			case suspicious && j%2 == 0:
				entry.Level = models.LogLevelError
				entry.Action = models.ActionLoginError
				entry.Message = "Invalid credentials"
			case j%5 == 0:
				entry.Action = models.ActionCreateContent
				entry.Message = "Content created"
				entry.Metadata = models.JSONB{"classification": "Safe"}
			}

			logs = append(logs, entry)
		}
	}

	if err := db.DB.Create(&logs).Error; err != nil {
		return fmt.Errorf("failed to insert activity logs: %w", err)
	}

	log.Printf("Created %d activity log entries for %d users", len(logs), len(users))
	return nil
}
