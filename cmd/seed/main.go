package main

import (
	"log"
	"os"
	"time"

	"ai-docassist/internal/model"
	"ai-docassist/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Seeds a demo account with a couple of chat sessions so a fresh install
// has something to look at. Idempotent: re-running skips existing rows.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	var existing model.User
	if err := db.Where("email = ?", "demo@docassist.local").First(&existing).Error; err == nil {
		log.Println("Demo user already exists, nothing to do.")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("demo-password-123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Error: Failed to hash password: %v", err)
	}
	hashStr := string(hash)
	now := time.Now()

	user := model.User{
		Id:              uuid.New(),
		Username:        "demo",
		Email:           "demo@docassist.local",
		PasswordHash:    &hashStr,
		IsActive:        true,
		IsVerified:      true,
		EmailVerifiedAt: &now,
	}
	if err := db.Create(&user).Error; err != nil {
		log.Fatalf("Error: Failed to create demo user: %v", err)
	}

	session := model.ChatSession{
		Id:     uuid.New(),
		UserId: user.Id,
		Title:  "Welcome to DocAssist",
	}
	if err := db.Create(&session).Error; err != nil {
		log.Fatalf("Error: Failed to create demo session: %v", err)
	}

	messages := []model.ChatMessage{
		{
			Id:        uuid.New(),
			SessionId: session.Id,
			Sender:    "user",
			Content:   "What can you do?",
		},
		{
			Id:        uuid.New(),
			SessionId: session.Id,
			Sender:    "ai",
			Content:   "I can answer questions, search your uploaded documents, and research topics on the web. Upload a PDF or text file to get started.",
		},
	}
	for i := range messages {
		if err := db.Create(&messages[i]).Error; err != nil {
			log.Fatalf("Error: Failed to create demo message: %v", err)
		}
	}

	log.Println("Success: Seeded demo user (demo@docassist.local / demo-password-123).")
}
