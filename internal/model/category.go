package model

// Category labels transactions and bills.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// DefaultCategories returns the starter category set for a new account.
func DefaultCategories() []Category {
	return []Category{
		{ID: "1", Name: "Moradia", Icon: "🏠"},
		{ID: "2", Name: "Transporte", Icon: "🚗"},
		{ID: "3", Name: "Alimentação", Icon: "🍔"},
		{ID: "4", Name: "Lazer", Icon: "🎬"},
		{ID: "5", Name: "Saúde", Icon: "❤️"},
		{ID: "6", Name: "Educação", Icon: "📚"},
		{ID: "7", Name: "Salário", Icon: "💰"},
		{ID: "8", Name: "Contas", Icon: "🧾"},
		{ID: "9", Name: "Investimentos", Icon: "📈"},
		{ID: "10", Name: "Outros", Icon: "💸"},
	}
}
