package entity

import "github.com/shopspring/decimal"

// UserUpdates lists the mutable user fields.
type UserUpdates struct {
	Role     *Role
	IsActive *bool
}

// ToMap converts to a GORM update map.
func (u UserUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.Role != nil {
		updates["role"] = string(*u.Role)
	}
	if u.IsActive != nil {
		updates["is_active"] = *u.IsActive
	}
	return updates
}

// IsEmpty reports whether no field is set.
func (u UserUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}

// ProductUpdates lists the mutable product fields.
type ProductUpdates struct {
	Name        *string
	Price       *decimal.Decimal
	Description *string
	MediaPaths  *StringArray
}

// ToMap converts to a GORM update map.
func (u ProductUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.Name != nil {
		updates["name"] = *u.Name
	}
	if u.Price != nil {
		updates["price"] = *u.Price
	}
	if u.Description != nil {
		updates["description"] = *u.Description
	}
	if u.MediaPaths != nil {
		updates["media_paths"] = *u.MediaPaths
	}
	return updates
}

// IsEmpty reports whether no field is set.
func (u ProductUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}
