package database

import (
	"fmt"
	"log"
	"os"

	"tracer_study_backend/internal/config"
	"tracer_study_backend/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.User{},
		&model.Respondent{},
		&model.AlumniProfile{},
		&model.ManagerProfile{},
		&model.Survey{},
		&model.SurveyEligibility{},
		&model.GenerationRule{},
		&model.CodeQuestion{},
		&model.Question{},
		&model.AnswerOption{},
		&model.BranchRule{},
		&model.Response{},
		&model.Answer{},
		&model.AnswerMultipleChoice{},
		&model.EmailBlast{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	seedAdmin(db)

	return db, nil
}

// seedAdmin creates the initial admin account when the user table is empty.
// The password comes from ADMIN_PASSWORD, falling back to a dev default.
func seedAdmin(db *gorm.DB) {
	var count int64
	db.Model(&model.User{}).Where("role = ?", model.Admin).Count(&count)
	if count > 0 {
		return
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin12345"
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Failed to hash admin password: %v", err)
		return
	}

	admin := &model.User{
		Name:     "Administrator",
		Email:    "admin@tracer-study.local",
		Password: string(hashed),
		Role:     model.Admin,
	}
	if err := db.Create(admin).Error; err != nil {
		log.Printf("Failed to seed admin user: %v", err)
		return
	}
	log.Println("Seeded default admin account")
}
