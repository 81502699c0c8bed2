package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/defterapp/defter-core/pkg/db"
	"github.com/defterapp/defter-core/pkg/db/models"
	pkgerrors "github.com/defterapp/defter-core/pkg/errors"
	"gorm.io/gorm"
)

// Service defines the catalog operations: taxonomy management, product CRUD
// and inventory adjustment.
type Service interface {
	CreateType(ctx context.Context, name string) (*models.ProductType, error)
	CreateBrand(ctx context.Context, name string) (*models.Brand, error)
	SearchTypes(ctx context.Context, query string) ([]models.ProductType, error)
	SearchBrands(ctx context.Context, query string) ([]models.Brand, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	AdjustInventory(ctx context.Context, productID, delta int64) (int64, error)
	SearchProducts(ctx context.Context, filter SearchFilter) ([]models.Product, error)
}

// CreateProductInput captures the fields of a new catalog product.
type CreateProductInput struct {
	Name        string
	Type        *string
	ProductCode *string
	Brand       string
	Supplier    *string
	Barcode     *string
	Count       int64
	Cost        int64
}

type service struct {
	client *db.Client
	repo   Repository
}

// NewService wires a catalog service with the provided db client and repository.
func NewService(client *db.Client, repo Repository) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{client: client, repo: repo}, nil
}

func (s *service) CreateType(ctx context.Context, name string) (*models.ProductType, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "type name is required")
	}

	productType := &models.ProductType{Name: name}
	if err := s.repo.CreateType(ctx, productType); err != nil {
		if db.IsUniqueViolation(err, "types.name") {
			return nil, pkgerrors.New(pkgerrors.CodeDuplicate, fmt.Sprintf("type %q already exists", name))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating type")
	}
	return productType, nil
}

func (s *service) CreateBrand(ctx context.Context, name string) (*models.Brand, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "brand name is required")
	}

	brand := &models.Brand{Name: name}
	if err := s.repo.CreateBrand(ctx, brand); err != nil {
		if db.IsUniqueViolation(err, "brands.name") {
			return nil, pkgerrors.New(pkgerrors.CodeDuplicate, fmt.Sprintf("brand %q already exists", name))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating brand")
	}
	return brand, nil
}

func (s *service) SearchTypes(ctx context.Context, query string) ([]models.ProductType, error) {
	types, err := s.repo.SearchTypes(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "searching types")
	}
	return types, nil
}

func (s *service) SearchBrands(ctx context.Context, query string) ([]models.Brand, error) {
	brands, err := s.repo.SearchBrands(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "searching brands")
	}
	return brands, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	brandName := strings.TrimSpace(input.Brand)
	if brandName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product brand is required")
	}
	if input.Count < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product count must not be negative")
	}
	if input.Cost < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product cost must not be negative")
	}

	product := &models.Product{
		Name:        name,
		Type:        input.Type,
		ProductCode: input.ProductCode,
		Brand:       brandName,
		Supplier:    input.Supplier,
		Barcode:     input.Barcode,
		Count:       input.Count,
		Cost:        input.Cost,
	}

	// FK targets are verified before any write so the caller gets a typed
	// error rather than a raw constraint failure.
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		exists, err := repo.BrandExists(ctx, brandName)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking brand")
		}
		if !exists {
			return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("unknown brand %q", brandName))
		}

		if input.Type != nil && *input.Type != "" {
			exists, err := repo.TypeExists(ctx, *input.Type)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking type")
			}
			if !exists {
				return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("unknown type %q", *input.Type))
			}
		}

		if err := repo.CreateProduct(ctx, product); err != nil {
			if db.IsUniqueViolation(err, "products.barcode") {
				return pkgerrors.New(pkgerrors.CodeDuplicate, "barcode already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating product")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *service) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %d not found", id))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	return product, nil
}

func (s *service) DeleteProduct(ctx context.Context, id int64) error {
	if id <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	affected, err := s.repo.DeleteProduct(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting product")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %d not found", id))
	}
	return nil
}

// AdjustInventory applies delta (negative for sales, positive for restock)
// and returns the resulting count. The update and the readback share one
// transaction so the returned count is the committed value.
func (s *service) AdjustInventory(ctx context.Context, productID, delta int64) (int64, error) {
	if productID <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if delta == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "adjustment delta must not be zero")
	}

	var newCount int64
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		affected, err := repo.AdjustCount(ctx, productID, delta)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "adjusting inventory")
		}
		if affected == 0 {
			if _, err := repo.FindProductByID(ctx, productID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %d not found", productID))
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
			}
			return pkgerrors.New(pkgerrors.CodeIntegrity, "insufficient stock")
		}

		product, err := repo.FindProductByID(ctx, productID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reading adjusted count")
		}
		newCount = product.Count
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newCount, nil
}

func (s *service) SearchProducts(ctx context.Context, filter SearchFilter) ([]models.Product, error) {
	if filter.OrderBy != "" && !filter.OrderBy.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order column %q", filter.OrderBy))
	}
	products, err := s.repo.SearchProducts(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "searching products")
	}
	return products, nil
}
