// Package rowstore reads administrator profile rows from the managed
// backend's Postgres.
package rowstore

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"fleet_monitor/internal/models"
)

var (
	// ErrNotFound means no admin profile exists for the id.
	ErrNotFound = errors.New("admin user not found")
	// ErrAlreadyExists means a seed collided with an existing row.
	ErrAlreadyExists = errors.New("admin user already exists")
)

// AdminUsers looks up rows in the admin_users table.
type AdminUsers struct {
	db *gorm.DB
}

// New migrates the table and returns the store.
func New(db *gorm.DB) (*AdminUsers, error) {
	if err := db.AutoMigrate(&models.AdminUser{}); err != nil {
		return nil, err
	}
	return &AdminUsers{db: db}, nil
}

// GetAdminUser fetches the profile for a user id.
func (r *AdminUsers) GetAdminUser(ctx context.Context, id string) (*models.AdminUser, error) {
	var u models.AdminUser
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// TouchLastLogin stamps the profile's last-login time. Unknown ids are
// ignored.
func (r *AdminUsers) TouchLastLogin(ctx context.Context, id string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&models.AdminUser{}).
		Where("id = ?", id).Update("last_login", now).Error
}

// Seed inserts an admin profile, mapping the Postgres unique-violation
// code to ErrAlreadyExists.
func (r *AdminUsers) Seed(ctx context.Context, u models.AdminUser) error {
	err := r.db.WithContext(ctx).Create(&u).Error
	if err == nil {
		return nil
	}
	var pgErr *pq.Error
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrAlreadyExists
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyExists
	}
	return err
}
