package models

// Restaurant is the catalogue entry the fixture generator attaches orders to.
type Restaurant struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Town      string   `json:"town"`
	Cuisines  []string `json:"cuisines"`
	MenuItems []string `json:"menu_item_ids"`
}
