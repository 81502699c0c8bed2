package facade

// Command and query inputs for the store façade. Validation tags run before
// any command reaches a service.

type CreateAccountCommand struct {
	Name        string  `validate:"required"`
	Email       *string `validate:"omitempty,email"`
	Phone       *string `validate:"omitempty,min=3"`
	Address     *string `validate:"omitempty,min=1"`
	AccountType string  `validate:"omitempty,oneof=customer supplier"`
}

type UpdateContactCommand struct {
	AccountID int64   `validate:"required,gt=0"`
	Name      string  `validate:"required"`
	Email     *string `validate:"omitempty,email"`
	Phone     *string `validate:"omitempty,min=3"`
	Address   *string `validate:"omitempty,min=1"`
}

type UpdateLastActionCommand struct {
	AccountID int64  `validate:"required,gt=0"`
	Action    string `validate:"required"`
}

type CreateBookCommand struct {
	AccountID int64 `validate:"required,gt=0"`
	// Name may be blank; the engine then assigns the next ordinal name.
	Name string
}

type RenameBookCommand struct {
	BookID int64  `validate:"required,gt=0"`
	Name   string `validate:"required"`
}

type PostLineCommand struct {
	BookID   int64  `validate:"required,gt=0"`
	Name     string `validate:"required"`
	NetPrice int64  `validate:"gte=0"`
	Amount   int64  `validate:"required,gt=0"`
	Tax      *int64 `validate:"omitempty,gte=0"`
	Discount int64  `validate:"gte=0,lte=100"`
	Date     string `validate:"required"`
}

type PostPaymentCommand struct {
	BookID int64   `validate:"required,gt=0"`
	Name   *string `validate:"omitempty,min=1"`
	Amount int64   `validate:"required,gt=0"`
	Date   string  `validate:"required"`
}

type StatementQuery struct {
	BookID int64 `validate:"required,gt=0"`
	Limit  int   `validate:"gte=0"`
	Cursor string
}

type CreateProductCommand struct {
	Name        string  `validate:"required"`
	Type        *string `validate:"omitempty,min=1"`
	ProductCode *string `validate:"omitempty,min=1"`
	Brand       string  `validate:"required"`
	Supplier    *string `validate:"omitempty,min=1"`
	Barcode     *string `validate:"omitempty,min=1"`
	Count       int64   `validate:"gte=0"`
	Cost        int64   `validate:"gte=0"`
}

type AdjustInventoryCommand struct {
	ProductID int64 `validate:"required,gt=0"`
	Delta     int64 `validate:"required"`
}
