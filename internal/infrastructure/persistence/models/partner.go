package models

import (
	"github.com/pharmacy/backend/internal/domain/partner"
)

// CustomerModel is the persistence model for the Customer aggregate root
type CustomerModel struct {
	AggregateModel
	Name   string `gorm:"type:varchar(255);not null"`
	Phone  string `gorm:"type:varchar(32)"`
	Active bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Phone:             m.Phone,
		Active:            m.Active,
	}
}

// FromDomain populates the persistence model from a domain Customer
func (m *CustomerModel) FromDomain(c *partner.Customer) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Name = c.Name
	m.Phone = c.Phone
	m.Active = c.Active
}

// VendorModel is the persistence model for the Vendor aggregate root
type VendorModel struct {
	AggregateModel
	Name   string `gorm:"type:varchar(255);not null"`
	Phone  string `gorm:"type:varchar(32)"`
	Active bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (VendorModel) TableName() string {
	return "vendors"
}

// ToDomain converts the persistence model to a domain Vendor
func (m *VendorModel) ToDomain() *partner.Vendor {
	return &partner.Vendor{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Phone:             m.Phone,
		Active:            m.Active,
	}
}

// FromDomain populates the persistence model from a domain Vendor
func (m *VendorModel) FromDomain(v *partner.Vendor) {
	m.FromDomainAggregateRoot(v.BaseAggregateRoot)
	m.Name = v.Name
	m.Phone = v.Phone
	m.Active = v.Active
}

// ShopModel is the persistence model for the Shop aggregate root
type ShopModel struct {
	AggregateModel
	Name    string `gorm:"type:varchar(255);not null"`
	Address string `gorm:"type:varchar(512)"`
	Active  bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (ShopModel) TableName() string {
	return "shops"
}

// ToDomain converts the persistence model to a domain Shop
func (m *ShopModel) ToDomain() *partner.Shop {
	return &partner.Shop{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Address:           m.Address,
		Active:            m.Active,
	}
}

// FromDomain populates the persistence model from a domain Shop
func (m *ShopModel) FromDomain(s *partner.Shop) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.Name = s.Name
	m.Address = s.Address
	m.Active = s.Active
}
