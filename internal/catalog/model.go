package catalog

import "time"

// DefaultEmoji is shown on the register button when an item has none.
const DefaultEmoji = "🍱"

// Item is a sellable menu entry. Price is in minor currency units.
type Item struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"`
	Category  string    `json:"category"`
	Emoji     string    `json:"emoji"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateInput struct {
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Category string `json:"category"`
	Emoji    string `json:"emoji"`
}

// Patch carries the fields of an edit; nil means "leave as is".
type Patch struct {
	Name     *string `json:"name"`
	Price    *int64  `json:"price"`
	Category *string `json:"category"`
	Emoji    *string `json:"emoji"`
}

func (p Patch) apply(item *Item) {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Price != nil {
		item.Price = *p.Price
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.Emoji != nil {
		item.Emoji = *p.Emoji
	}
}
