// Package models contains GORM-specific persistence models that map to
// database tables. These models are separate from domain entities to keep
// the domain layer free from ORM concerns: domain types carry no GORM tags,
// and each model provides ToDomain/FromDomain mappers.
package models
