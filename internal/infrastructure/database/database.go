package database

import (
	"fmt"
	"log"

	"github.com/mahavirtraders/flowtrack/internal/config"
	"github.com/mahavirtraders/flowtrack/internal/domain/entity"
	"github.com/mahavirtraders/flowtrack/pkg/utils"
	"github.com/spf13/viper"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a database connection for the configured driver
func NewDB(cfg *config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "mysql":
		dialector = mysql.Open(cfg.MySQLDSN())
	case "postgres", "":
		dialector = postgres.New(postgres.Config{
			DSN:                  cfg.DSN(),
			PreferSimpleProtocol: true, // disables implicit prepared statement usage
		})
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB to set connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)

	log.Printf("Successfully connected to %s database", db.Dialector.Name())
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(
		// Identity
		&entity.User{},
		&entity.Role{},
		&entity.Permission{},

		// Catalog and stock
		&entity.Product{},
		&entity.StockAdjustment{},
		&entity.Purchase{},

		// Sales
		&entity.InvoiceSequence{},
		&entity.Sale{},
		&entity.SaleItem{},

		// Shop ledgers
		&entity.Attendance{},
		&entity.Expense{},
		&entity.DayClosing{},

		// System
		&entity.IdempotencyKey{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// Permissions granted to roles. Admins hold all of them.
var (
	AllPermissions = []string{
		entity.PermManageProducts,
		entity.PermManageSales,
		entity.PermManagePurchases,
		entity.PermManageStock,
		entity.PermManageAttendance,
		entity.PermManageExpenses,
		entity.PermCloseDay,
		entity.PermViewReports,
		entity.PermManageUsers,
	}
	staffPermissions = []string{
		entity.PermManageSales,
		entity.PermManageAttendance,
		entity.PermManageExpenses,
	}
)

// SeedDefaultData seeds roles, permissions and the first admin user
func SeedDefaultData(db *gorm.DB) error {
	log.Println("Seeding default data...")

	for _, name := range AllPermissions {
		if err := db.Where(entity.Permission{Name: name}).FirstOrCreate(&entity.Permission{Name: name}).Error; err != nil {
			return fmt.Errorf("failed to seed permission %s: %w", name, err)
		}
	}

	if err := seedRole(db, entity.RoleAdmin, AllPermissions); err != nil {
		return err
	}
	if err := seedRole(db, entity.RoleStaff, staffPermissions); err != nil {
		return err
	}

	adminEmail := viper.GetString("ADMIN_EMAIL")
	adminPassword := viper.GetString("ADMIN_PASSWORD")
	adminName := viper.GetString("ADMIN_NAME")
	if adminEmail == "" || adminPassword == "" {
		log.Println("Default data seeding completed (no ADMIN_EMAIL configured)")
		return nil
	}

	var count int64
	if err := db.Model(&entity.User{}).Where("email = ?", adminEmail).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up admin user: %w", err)
	}
	if count > 0 {
		log.Printf("Admin user already exists: %s", adminEmail)
		return nil
	}

	hashed, err := utils.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	var adminRole entity.Role
	if err := db.Where("name = ?", entity.RoleAdmin).First(&adminRole).Error; err != nil {
		return fmt.Errorf("failed to load admin role: %w", err)
	}
	if adminName == "" {
		adminName = "Administrator"
	}
	admin := entity.User{
		Name:     adminName,
		Email:    adminEmail,
		Password: hashed,
		Active:   true,
		Roles:    []entity.Role{adminRole},
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	log.Printf("Admin user created: %s", adminEmail)
	return nil
}

func seedRole(db *gorm.DB, name string, permissionNames []string) error {
	var perms []entity.Permission
	if err := db.Where("name IN ?", permissionNames).Find(&perms).Error; err != nil {
		return fmt.Errorf("failed to load permissions for %s: %w", name, err)
	}

	var role entity.Role
	if err := db.Where(entity.Role{Name: name}).FirstOrCreate(&role).Error; err != nil {
		return fmt.Errorf("failed to seed role %s: %w", name, err)
	}
	if err := db.Model(&role).Association("Permissions").Replace(perms); err != nil {
		return fmt.Errorf("failed to sync permissions for %s: %w", name, err)
	}
	return nil
}
