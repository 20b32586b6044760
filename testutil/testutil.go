package testutil

import (
	"fmt"
	"testing"
	"time"

	"wellness-ops-backend/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DefaultPassword is the plain-text password of every seeded user.
const DefaultPassword = "password123"

// SetupTestDB opens a private in-memory SQLite database with every table created.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String()))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// OpenSQLite opens dsn and creates the schema. The pool is capped at one
// connection so in-memory databases stay visible to every caller.
func OpenSQLite(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := CreateTables(db); err != nil {
		return nil, err
	}
	return db, nil
}

// CreateTables creates all tables with SQLite-compatible DDL. AutoMigrate is
// not used because the model tags carry PostgreSQL defaults like gen_random_uuid().
func CreateTables(db *gorm.DB) error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS "users" (
			"id" TEXT PRIMARY KEY,
			"email" TEXT NOT NULL UNIQUE,
			"username" TEXT UNIQUE,
			"phone" TEXT,
			"password_hash" TEXT NOT NULL,
			"role" TEXT NOT NULL DEFAULT 'therapist',
			"full_name" TEXT,
			"assigned_property_id" TEXT,
			"status" TEXT NOT NULL DEFAULT 'active',
			"created_at" DATETIME,
			"updated_at" DATETIME,
			"archived_at" DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_status ON "users"("status")`,

		`CREATE TABLE IF NOT EXISTS "properties" (
			"id" TEXT PRIMARY KEY,
			"hotel_name" TEXT NOT NULL,
			"location" TEXT,
			"gst_number" TEXT,
			"ownership_type" TEXT NOT NULL DEFAULT 'partner',
			"revenue_share_percentage" REAL,
			"contract_start_date" TEXT,
			"payment_cycle" TEXT NOT NULL DEFAULT 'monthly',
			"contact_person" TEXT,
			"contact_number" TEXT,
			"active" INTEGER DEFAULT 1,
			"status" TEXT NOT NULL DEFAULT 'active',
			"archived_at" DATETIME,
			"created_at" DATETIME,
			"updated_at" DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS idx_properties_status ON "properties"("status")`,

		`CREATE TABLE IF NOT EXISTS "therapists" (
			"id" TEXT PRIMARY KEY,
			"user_id" TEXT NOT NULL UNIQUE,
			"full_name" TEXT NOT NULL,
			"email" TEXT NOT NULL,
			"phone" TEXT,
			"username" TEXT,
			"date_of_birth" TEXT,
			"experience_years" REAL DEFAULT 0,
			"salary_expectation" REAL,
			"address" TEXT,
			"bank_details" TEXT,
			"id_proof_url" TEXT,
			"profile_photo_url" TEXT,
			"assigned_property_id" TEXT NOT NULL,
			"monthly_target" REAL DEFAULT 0,
			"status" TEXT NOT NULL DEFAULT 'active',
			"archived_at" DATETIME,
			"created_at" DATETIME,
			"updated_at" DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS idx_therapists_property ON "therapists"("assigned_property_id")`,

		`CREATE TABLE IF NOT EXISTS "attendance" (
			"id" TEXT PRIMARY KEY,
			"therapist_id" TEXT NOT NULL,
			"property_id" TEXT NOT NULL,
			"date" TEXT NOT NULL,
			"check_in_time" DATETIME,
			"check_out_time" DATETIME,
			"gps_location" TEXT,
			"created_at" DATETIME,
			"updated_at" DATETIME
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_attendance_therapist_date ON "attendance"("therapist_id", "date")`,

		`CREATE TABLE IF NOT EXISTS "service_entries" (
			"id" TEXT PRIMARY KEY,
			"therapist_id" TEXT NOT NULL,
			"property_id" TEXT NOT NULL,
			"customer_name" TEXT NOT NULL,
			"customer_phone" TEXT NOT NULL,
			"customer_email" TEXT,
			"therapy_type" TEXT NOT NULL,
			"therapy_duration" TEXT,
			"base_price" REAL NOT NULL,
			"gst_amount" REAL NOT NULL,
			"total_amount" REAL NOT NULL,
			"payment_received_by" TEXT NOT NULL,
			"payment_mode" TEXT,
			"date" TEXT NOT NULL,
			"time" TEXT,
			"locked" INTEGER DEFAULT 1,
			"whatsapp_status" TEXT,
			"whatsapp_message_id" TEXT,
			"email_status" TEXT,
			"email_message_id" TEXT,
			"created_at" DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS idx_service_entries_date ON "service_entries"("date")`,

		`CREATE TABLE IF NOT EXISTS "expenses" (
			"id" TEXT PRIMARY KEY,
			"property_id" TEXT,
			"expense_type" TEXT NOT NULL,
			"category" TEXT NOT NULL,
			"amount" REAL NOT NULL,
			"description" TEXT,
			"date" TEXT NOT NULL,
			"therapist_id" TEXT,
			"created_by" TEXT NOT NULL,
			"created_at" DATETIME,
			"updated_at" DATETIME
		)`,

		`CREATE TABLE IF NOT EXISTS "otp_records" (
			"id" TEXT PRIMARY KEY,
			"email" TEXT NOT NULL,
			"code" TEXT NOT NULL,
			"created_at" DATETIME,
			"expires_at" DATETIME NOT NULL,
			"used" INTEGER DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_otp_records_email ON "otp_records"("email")`,

		`CREATE TABLE IF NOT EXISTS "monthly_closings" (
			"id" TEXT PRIMARY KEY,
			"property_id" TEXT NOT NULL,
			"month" INTEGER NOT NULL,
			"year" INTEGER NOT NULL,
			"total_base_sales" REAL DEFAULT 0,
			"total_gst" REAL DEFAULT 0,
			"revenue_share_percentage" REAL DEFAULT 0,
			"hotel_share" REAL DEFAULT 0,
			"business_share" REAL DEFAULT 0,
			"hotel_received" REAL DEFAULT 0,
			"business_received" REAL DEFAULT 0,
			"settlement_balance" REAL DEFAULT 0,
			"locked" INTEGER DEFAULT 0,
			"approved_by" TEXT,
			"approved_at" DATETIME,
			"created_at" DATETIME,
			"updated_at" DATETIME
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_closing_property_month ON "monthly_closings"("property_id", "month", "year")`,

		`CREATE TABLE IF NOT EXISTS "incentive_records" (
			"id" TEXT PRIMARY KEY,
			"therapist_id" TEXT NOT NULL,
			"month" INTEGER NOT NULL,
			"year" INTEGER NOT NULL,
			"target" REAL DEFAULT 0,
			"threshold" REAL DEFAULT 0,
			"actual_sales" REAL DEFAULT 0,
			"progress_percentage" REAL DEFAULT 0,
			"excess_amount" REAL DEFAULT 0,
			"incentive_earned" REAL DEFAULT 0,
			"approved" INTEGER DEFAULT 0,
			"approved_by" TEXT,
			"approved_at" DATETIME,
			"created_at" DATETIME,
			"updated_at" DATETIME
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_incentive_therapist_month ON "incentive_records"("therapist_id", "month", "year")`,
	}

	for _, sql := range tables {
		if err := db.Exec(sql).Error; err != nil {
			return err
		}
	}
	return nil
}

// Truncate deletes every row from every table.
func Truncate(db *gorm.DB) {
	for _, table := range []string{
		"incentive_records", "monthly_closings", "otp_records", "expenses",
		"service_entries", "attendance", "therapists", "properties", "users",
	} {
		db.Exec("DELETE FROM " + table)
	}
}

// CreateUser seeds a user whose password is DefaultPassword.
func CreateUser(t *testing.T, db *gorm.DB, email, role string) *models.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hashed),
		Role:         role,
		FullName:     "Test User",
		Status:       models.StatusActive,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreatePartnerProperty seeds an active partner property with the given share.
func CreatePartnerProperty(t *testing.T, db *gorm.DB, name string, share float64) *models.Property {
	t.Helper()

	property := &models.Property{
		ID:                     uuid.New(),
		HotelName:              name,
		Location:               "Goa",
		OwnershipType:          models.OwnershipPartner,
		RevenueSharePercentage: &share,
		PaymentCycle:           models.PaymentCycleMonthly,
		Active:                 true,
		Status:                 models.StatusActive,
	}
	if err := db.Create(property).Error; err != nil {
		t.Fatalf("failed to create test property: %v", err)
	}
	return property
}

// CreateTherapist seeds a therapist user and its linked profile at property.
func CreateTherapist(t *testing.T, db *gorm.DB, email string, propertyID uuid.UUID, target float64) (*models.User, *models.Therapist) {
	t.Helper()

	user := CreateUser(t, db, email, models.RoleTherapist)
	pid := propertyID
	if err := db.Model(user).Update("assigned_property_id", pid).Error; err != nil {
		t.Fatalf("failed to assign property: %v", err)
	}
	user.AssignedPropertyID = &pid

	therapist := &models.Therapist{
		ID:                 uuid.New(),
		UserID:             user.ID,
		FullName:           "Test Therapist",
		Email:              email,
		Phone:              "+919800000000",
		AssignedPropertyID: propertyID,
		MonthlyTarget:      target,
		Status:             models.StatusActive,
	}
	if err := db.Create(therapist).Error; err != nil {
		t.Fatalf("failed to create test therapist: %v", err)
	}
	return user, therapist
}

// CreateService seeds a service entry with GST at 18% on base.
func CreateService(t *testing.T, db *gorm.DB, therapist *models.Therapist, date, therapy string, base float64, receivedBy string) *models.ServiceEntry {
	t.Helper()

	gst := float64(int64(base*18+0.5)) / 100
	entry := &models.ServiceEntry{
		ID:                uuid.New(),
		TherapistID:       therapist.ID,
		PropertyID:        therapist.AssignedPropertyID,
		CustomerName:      "Guest",
		CustomerPhone:     "+919811111111",
		TherapyType:       therapy,
		TherapyDuration:   "60 min",
		BasePrice:         base,
		GSTAmount:         gst,
		TotalAmount:       base + gst,
		PaymentReceivedBy: receivedBy,
		PaymentMode:       models.PaymentModeCash,
		Date:              date,
		Time:              "10:00:00",
		CreatedAt:         time.Now().UTC(),
	}
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("failed to create test service: %v", err)
	}
	return entry
}
