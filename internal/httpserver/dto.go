package httpserver

import "github.com/google/uuid"

// SessionHeader carries the anonymous cart session identifier. The cart
// endpoints echo it back so a guest client can persist it.
const SessionHeader = "X-Cart-Session"

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type updateUserRequest struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

type addItemRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

type createOrderItem struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
	Price     float64   `json:"price"`
}

type createOrderRequest struct {
	Items         []createOrderItem `json:"items"`
	Phone         string            `json:"phone"`
	Address       string            `json:"address"`
	RecipientName string            `json:"recipientName"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type productRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Price       *float64   `json:"price"`
	CategoryID  *uuid.UUID `json:"category_id"`
	ImageURL    *string    `json:"image_url"`
}

type categoryRequest struct {
	Name string `json:"name"`
}
