// internal/models/adminuser.go
package models

import "time"

// AdminUser mirrors one row of the managed backend's admin_users table.
type AdminUser struct {
	ID          string     `json:"id" gorm:"primaryKey"`
	Email       string     `json:"email" gorm:"unique;not null"`
	DisplayName string     `json:"display_name"`
	Role        string     `json:"role"` // "admin" or "super_admin"
	IsActive    bool       `json:"is_active" gorm:"default:true"`
	LastLogin   *time.Time `json:"last_login"`
}

// TableName keeps the managed backend's table name.
func (AdminUser) TableName() string { return "admin_users" }
