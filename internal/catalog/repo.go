package catalog

import (
	"context"
	"fmt"

	"github.com/defterapp/defter-core/pkg/db/models"
	"github.com/defterapp/defter-core/pkg/enums"
	"github.com/defterapp/defter-core/pkg/pagination"
	"gorm.io/gorm"
)

// SearchFilter narrows a product search. Text fields match as substrings;
// numeric bounds are exclusive, mirroring the historical listing queries.
type SearchFilter struct {
	Name     string
	Brand    string
	Type     string
	Supplier string
	Barcode  string

	CountGreaterThan *int64
	CountLowerThan   *int64
	CostGreaterThan  *int64
	CostLowerThan    *int64

	OrderBy  enums.ProductOrder
	OrderDir enums.SortDirection
	Limit    int
}

// rankedNameLimit caps the autocomplete searches over types and brands.
const rankedNameLimit = 10

// Repository manages persistence for the catalog: taxonomy, products and
// inventory counts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateType(ctx context.Context, productType *models.ProductType) error
	CreateBrand(ctx context.Context, brand *models.Brand) error
	TypeExists(ctx context.Context, name string) (bool, error)
	BrandExists(ctx context.Context, name string) (bool, error)
	SearchTypes(ctx context.Context, query string) ([]models.ProductType, error)
	SearchBrands(ctx context.Context, query string) ([]models.Brand, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	FindProductByID(ctx context.Context, id int64) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) (int64, error)
	AdjustCount(ctx context.Context, id, delta int64) (int64, error)
	SearchProducts(ctx context.Context, filter SearchFilter) ([]models.Product, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateType(ctx context.Context, productType *models.ProductType) error {
	return r.db.WithContext(ctx).Create(productType).Error
}

func (r *repository) CreateBrand(ctx context.Context, brand *models.Brand) error {
	return r.db.WithContext(ctx).Create(brand).Error
}

func (r *repository) TypeExists(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ProductType{}).
		Where("name = ?", name).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) BrandExists(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Brand{}).
		Where("name = ?", name).
		Count(&count).Error
	return count > 0, err
}

// SearchTypes ranks exact matches first, then prefix matches, then the rest.
func (r *repository) SearchTypes(ctx context.Context, query string) ([]models.ProductType, error) {
	var types []models.ProductType
	err := r.db.WithContext(ctx).
		Raw(`
			SELECT id, name FROM types
			WHERE name LIKE ?
			ORDER BY
				CASE
					WHEN name = ? THEN 1
					WHEN name LIKE ? THEN 2
					ELSE 3
				END,
				name ASC
			LIMIT ?`,
			"%"+query+"%", query, query+"%", rankedNameLimit).
		Scan(&types).Error
	if err != nil {
		return nil, err
	}
	return types, nil
}

func (r *repository) SearchBrands(ctx context.Context, query string) ([]models.Brand, error) {
	var brands []models.Brand
	err := r.db.WithContext(ctx).
		Raw(`
			SELECT id, name FROM brands
			WHERE name LIKE ?
			ORDER BY
				CASE
					WHEN name = ? THEN 1
					WHEN name LIKE ? THEN 2
					ELSE 3
				END,
				name ASC
			LIMIT ?`,
			"%"+query+"%", query, query+"%", rankedNameLimit).
		Scan(&brands).Error
	if err != nil {
		return nil, err
	}
	return brands, nil
}

func (r *repository) CreateProduct(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *repository) FindProductByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) DeleteProduct(ctx context.Context, id int64) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	return result.RowsAffected, result.Error
}

// AdjustCount applies delta to the product count in one guarded UPDATE; the
// WHERE clause rejects any adjustment that would drive the count negative, so
// rows affected tells the caller whether the change applied.
func (r *repository) AdjustCount(ctx context.Context, id, delta int64) (int64, error) {
	result := r.db.WithContext(ctx).Exec(
		"UPDATE products SET count = count + ? WHERE id = ? AND count + ? >= 0",
		delta, id, delta,
	)
	return result.RowsAffected, result.Error
}

func (r *repository) SearchProducts(ctx context.Context, filter SearchFilter) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})

	if filter.Name != "" {
		query = query.Where("name LIKE ?", "%"+filter.Name+"%")
	}
	if filter.Brand != "" {
		query = query.Where("brand LIKE ?", "%"+filter.Brand+"%")
	}
	if filter.Type != "" {
		query = query.Where("type LIKE ?", "%"+filter.Type+"%")
	}
	if filter.Supplier != "" {
		query = query.Where("supplier LIKE ?", "%"+filter.Supplier+"%")
	}
	if filter.Barcode != "" {
		query = query.Where("barcode LIKE ?", "%"+filter.Barcode+"%")
	}
	if filter.CountGreaterThan != nil {
		query = query.Where("count > ?", *filter.CountGreaterThan)
	}
	if filter.CountLowerThan != nil {
		query = query.Where("count < ?", *filter.CountLowerThan)
	}
	if filter.CostGreaterThan != nil {
		query = query.Where("cost > ?", *filter.CostGreaterThan)
	}
	if filter.CostLowerThan != nil {
		query = query.Where("cost < ?", *filter.CostLowerThan)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = pagination.MaxLimit
	} else {
		limit = pagination.NormalizeLimit(limit)
	}

	// Order column and direction come from closed enums, never caller text.
	order := fmt.Sprintf("%s %s", filter.OrderBy.Column(), filter.OrderDir.Keyword())

	var products []models.Product
	if err := query.Order(order).Limit(limit).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}
