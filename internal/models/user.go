package models

// User is the signed-in storefront customer.
type User struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Password string `json:"-"`
}

// GameAccount is a saved in-game identity, scoped to one customer session.
type GameAccount struct {
	ID     string `json:"id"`
	Game   string `json:"game"`
	GameID string `json:"gameId"`
	Server string `json:"server"`
}
