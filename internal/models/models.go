package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

func ValidRole(r string) bool {
	return r == RoleUser || r == RoleAdmin
}

const (
	OrderStatusPending         = "pending"
	OrderStatusAccepted        = "accepted"
	OrderStatusHandedToCourier = "handed_to_courier"
	OrderStatusDelivered       = "delivered"
	OrderStatusCanceled        = "canceled"
)

func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusAccepted, OrderStatusHandedToCourier,
		OrderStatusDelivered, OrderStatusCanceled:
		return true
	}
	return false
}

type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"      json:"id"`
	Email        string     `gorm:"uniqueIndex;not null"      json:"email"`
	Name         string     `                                 json:"name"`
	Phone        string     `                                 json:"phone"`
	PasswordHash string     `gorm:"not null"                  json:"-"`
	Role         string     `gorm:"not null;default:user"     json:"role"`
	RefreshHash  *string    `                                 json:"-"`
	CartID       *uuid.UUID `gorm:"type:uuid"                 json:"cart_id,omitempty"`
	CreatedAt    time.Time  `                                 json:"created_at"`
	UpdatedAt    time.Time  `                                 json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Cart is either user-owned (UserID set) or anonymous (SessionID and
// ExpiresAt set), never both.
type Cart struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    *uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"user_id,omitempty"`
	SessionID *string    `gorm:"uniqueIndex"          json:"session_id,omitempty"`
	ExpiresAt *time.Time `gorm:"index"                json:"expires_at,omitempty"`
	Items     []CartItem `gorm:"foreignKey:CartID"    json:"items"`
	CreatedAt time.Time  `                            json:"created_at"`
	UpdatedAt time.Time  `                            json:"updated_at"`
}

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type CartItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"                       json:"id"`
	CartID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_cart_product;not null" json:"cart_id"`
	ProductID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_cart_product;not null" json:"product_id"`
	Quantity  int       `gorm:"default:1;check:quantity>0"                 json:"quantity"`
	Product   *Product  `gorm:"foreignKey:ProductID"                       json:"product,omitempty"`
}

func (i *CartItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Order is an immutable snapshot of items and unit prices captured at
// checkout; only Status changes afterwards.
type Order struct {
	ID            uuid.UUID   `gorm:"type:uuid;primaryKey"       json:"id"`
	Number        string      `gorm:"uniqueIndex;not null"       json:"number"`
	UserID        *uuid.UUID  `gorm:"type:uuid;index"            json:"user_id"`
	Status        string      `gorm:"not null;default:pending"   json:"status"`
	TotalPrice    float64     `gorm:"not null"                   json:"total_price"`
	Phone         string      `gorm:"not null"                   json:"phone"`
	Address       string      `                                  json:"address,omitempty"`
	RecipientName string      `                                  json:"recipient_name,omitempty"`
	Items         []OrderItem `gorm:"foreignKey:OrderID"         json:"items"`
	CreatedAt     time.Time   `                                  json:"created_at"`
	UpdatedAt     time.Time   `                                  json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

type OrderItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"       json:"id"`
	OrderID   uuid.UUID `gorm:"type:uuid;index;not null"   json:"order_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null"         json:"product_id"`
	Quantity  int       `gorm:"not null;check:quantity>0"  json:"quantity"`
	UnitPrice float64   `gorm:"not null"                   json:"unit_price"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

type Product struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string     `gorm:"not null"             json:"name"`
	Description string     `                            json:"description"`
	Price       float64    `gorm:"not null"             json:"price"`
	CategoryID  *uuid.UUID `gorm:"type:uuid;index"      json:"category_id,omitempty"`
	ImageURL    string     `                            json:"image_url,omitempty"`
	CreatedAt   time.Time  `                            json:"created_at"`
	UpdatedAt   time.Time  `                            json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `                            json:"created_at"`
	UpdatedAt time.Time `                            json:"updated_at"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Cart{},
		&CartItem{},
		&Order{},
		&OrderItem{},
		&Product{},
		&Category{},
	)
}
