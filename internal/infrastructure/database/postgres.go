package database

import (
	"context"
	"fmt"

	"github.com/sangkips/gstpos-api/internal/config"
	"github.com/sangkips/gstpos-api/internal/domain/entity"
	"github.com/sangkips/gstpos-api/pkg/utils"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig, production bool) (*gorm.DB, error) {
	logLevel := logger.Info
	if production {
		logLevel = logger.Warn
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)

	zap.L().Info("connected to PostgreSQL", zap.String("host", cfg.Host), zap.String("database", cfg.Name))
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	zap.L().Info("running database migrations")

	err := db.AutoMigrate(
		&entity.Permission{},
		&entity.Role{},
		&entity.User{},

		&entity.Product{},
		&entity.Customer{},

		&entity.BillSequence{},
		&entity.Invoice{},
		&entity.InvoiceItem{},

		&entity.AuditLog{},
		&entity.IdempotencyKey{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	zap.L().Info("database migrations completed")
	return nil
}

// rolePermissions is the default permission set per role.
var rolePermissions = map[string][]string{
	entity.RoleAdmin: {
		entity.PermViewDashboard, entity.PermViewProducts, entity.PermManageProducts,
		entity.PermManageCustomers, entity.PermCheckout, entity.PermViewInvoices,
		entity.PermViewReports, entity.PermViewAuditLogs, entity.PermManageUsers,
		entity.PermManageData,
	},
	entity.RoleManager: {
		entity.PermViewDashboard, entity.PermViewProducts, entity.PermManageProducts,
		entity.PermManageCustomers, entity.PermCheckout, entity.PermViewInvoices,
		entity.PermViewReports,
	},
	entity.RoleCashier: {
		entity.PermViewDashboard, entity.PermViewProducts, entity.PermManageCustomers,
		entity.PermCheckout, entity.PermViewInvoices,
	},
	entity.RoleUser: {
		entity.PermViewDashboard, entity.PermViewProducts,
	},
}

// SeedDefaultData creates roles, permissions and the configured admin account
func SeedDefaultData(ctx context.Context, db *gorm.DB, admin config.AdminConfig) error {
	log := zap.L()
	db = db.WithContext(ctx)

	perms := make(map[string]entity.Permission)
	for _, names := range rolePermissions {
		for _, name := range names {
			if _, ok := perms[name]; ok {
				continue
			}
			p := entity.Permission{Name: name, GuardName: "web"}
			if err := db.Where(entity.Permission{Name: name}).FirstOrCreate(&p).Error; err != nil {
				return fmt.Errorf("seed permission %s: %w", name, err)
			}
			perms[name] = p
		}
	}

	for _, roleName := range []string{entity.RoleAdmin, entity.RoleManager, entity.RoleCashier, entity.RoleUser} {
		role := entity.Role{Name: roleName, GuardName: "web"}
		if err := db.Where(entity.Role{Name: roleName}).FirstOrCreate(&role).Error; err != nil {
			return fmt.Errorf("seed role %s: %w", roleName, err)
		}
		var assigned []entity.Permission
		for _, name := range rolePermissions[roleName] {
			assigned = append(assigned, perms[name])
		}
		if err := db.Model(&role).Association("Permissions").Replace(assigned); err != nil {
			return fmt.Errorf("sync permissions for %s: %w", roleName, err)
		}
	}

	if admin.Username == "" || admin.Password == "" {
		log.Warn("ADMIN_USERNAME or ADMIN_PASSWORD not set; skipping admin seed")
		return nil
	}

	var count int64
	if err := db.Model(&entity.User{}).Where("username = ?", admin.Username).Count(&count).Error; err != nil {
		return fmt.Errorf("look up admin: %w", err)
	}
	if count > 0 {
		log.Info("admin user already exists", zap.String("username", admin.Username))
		return nil
	}

	hashed, err := utils.HashPassword(admin.Password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	var adminRole entity.Role
	if err := db.Where("name = ?", entity.RoleAdmin).First(&adminRole).Error; err != nil {
		return fmt.Errorf("load admin role: %w", err)
	}

	user := entity.User{
		Username: admin.Username,
		Password: hashed,
		Approved: true,
		Roles:    []entity.Role{adminRole},
	}
	if admin.Email != "" {
		email := admin.Email
		user.Email = &email
	}
	if err := db.Create(&user).Error; err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}

	log.Info("admin user created", zap.String("username", admin.Username))
	return nil
}
