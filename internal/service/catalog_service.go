package service

import (
	"fmt"
	"log"
	"strings"

	"go-vendas-api/internal/ledger"
	"go-vendas-api/internal/model"
	"go-vendas-api/internal/repository"
	"go-vendas-api/internal/ws"
	"go-vendas-api/pkg/database"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// maxSlugSuffix bounds the "-2", "-3"... probing for a free category slug.
const maxSlugSuffix = 100

type CatalogService interface {
	CreateCategory(req *model.Category, actor Actor) error
	UpdateCategory(id uuid.UUID, req *model.Category, actor Actor) (*model.Category, error)
	DeleteCategory(id uuid.UUID) error
	GetCategory(id uuid.UUID) (*model.Category, error)
	ListCategories(status model.CategoryStatus) ([]model.Category, error)

	CreateProduct(req *model.Product, actor Actor) error
	UpdateProduct(id uuid.UUID, req *model.Product, actor Actor) (*model.Product, error)
	DeleteProduct(id uuid.UUID, actor Actor) error
	GetProduct(id uuid.UUID) (*model.Product, error)
	ListProducts(filter repository.ProductFilter) ([]model.Product, error)
}

type catalogService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	wsHub        *ws.Hub
}

func NewCatalogService(catRepo repository.CategoryRepository, pRepo repository.ProductRepository, hub *ws.Hub) CatalogService {
	return &catalogService{
		categoryRepo: catRepo,
		productRepo:  pRepo,
		wsHub:        hub,
	}
}

func (s *catalogService) CreateCategory(req *model.Category, actor Actor) error {
	if err := validateRequest(req); err != nil {
		return err
	}
	if req.Status == "" {
		req.Status = model.CategoryActive
	}

	categorySlug, err := s.uniqueSlug(req.Name, uuid.Nil)
	if err != nil {
		return err
	}
	req.ID = uuid.Nil
	req.Slug = categorySlug
	req.CreatedBy = actor.ID
	req.UpdatedBy = actor.ID

	if err := s.categoryRepo.Create(req); err != nil {
		return persistenceError("create category", err)
	}
	log.Printf("✅ category '%s' created by %s", req.Name, actor.Name)
	return nil
}

func (s *catalogService) UpdateCategory(id uuid.UUID, req *model.Category, actor Actor) (*model.Category, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	existing, err := s.GetCategory(id)
	if err != nil {
		return nil, err
	}

	if req.Name != existing.Name {
		categorySlug, err := s.uniqueSlug(req.Name, existing.ID)
		if err != nil {
			return nil, err
		}
		existing.Slug = categorySlug
	}
	existing.Name = req.Name
	existing.Description = req.Description
	existing.Image = req.Image
	if req.Status != "" {
		existing.Status = req.Status
	}
	existing.UpdatedBy = actor.ID

	if err := s.categoryRepo.Update(existing); err != nil {
		return nil, persistenceError("update category", err)
	}
	return existing, nil
}

func (s *catalogService) DeleteCategory(id uuid.UUID) error {
	count, err := s.productRepo.CountByCategory(id)
	if err != nil {
		return persistenceError("count category products", err)
	}
	if count > 0 {
		return ErrCategoryInUse
	}
	if err := s.categoryRepo.Delete(id); err != nil {
		if database.IsNotFound(err) {
			return ErrCategoryNotFound
		}
		return persistenceError("delete category", err)
	}
	return nil
}

func (s *catalogService) GetCategory(id uuid.UUID) (*model.Category, error) {
	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrCategoryNotFound
		}
		return nil, persistenceError("load category", err)
	}
	return category, nil
}

func (s *catalogService) ListCategories(status model.CategoryStatus) ([]model.Category, error) {
	categories, err := s.categoryRepo.FindAll(status)
	if err != nil {
		return nil, persistenceError("list categories", err)
	}
	return categories, nil
}

// uniqueSlug slugifies name and appends a numeric suffix until no other
// category (deleted ones included) holds it.
func (s *catalogService) uniqueSlug(name string, self uuid.UUID) (string, error) {
	base := slug.Make(name)
	if base == "" {
		return "", ledger.NewValidationError("name", "must contain letters or digits")
	}
	candidate := base
	for i := 2; i <= maxSlugSuffix; i++ {
		existing, err := s.categoryRepo.FindBySlug(candidate)
		if err != nil {
			if database.IsNotFound(err) {
				return candidate, nil
			}
			return "", persistenceError("check category slug", err)
		}
		if existing.ID == self {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", ledger.NewValidationError("name", "too many categories named %q", name)
}

func (s *catalogService) CreateProduct(req *model.Product, actor Actor) error {
	req.EAN = strings.TrimSpace(req.EAN)
	if err := validateRequest(req); err != nil {
		return err
	}

	if err := s.checkEANFree(req.EAN, uuid.Nil); err != nil {
		return err
	}
	if err := s.requireCategory(req.CategoryID); err != nil {
		return err
	}

	req.ID = uuid.Nil
	req.CreatedBy = actor.ID
	req.UpdatedBy = actor.ID
	if err := s.productRepo.Create(req); err != nil {
		if database.IsUniqueViolation(err) {
			return ErrEANExists
		}
		return persistenceError("create product", err)
	}

	s.publishProduct("product_created", req, actor, fmt.Sprintf("%s created product '%s'", actor.Name, req.Description))
	return nil
}

func (s *catalogService) UpdateProduct(id uuid.UUID, req *model.Product, actor Actor) (*model.Product, error) {
	req.EAN = strings.TrimSpace(req.EAN)
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	existing, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}

	if req.EAN != existing.EAN {
		if err := s.checkEANFree(req.EAN, existing.ID); err != nil {
			return nil, err
		}
	}
	if err := s.requireCategory(req.CategoryID); err != nil {
		return nil, err
	}

	existing.EAN = req.EAN
	existing.Description = req.Description
	existing.Brand = req.Brand
	existing.NCM = req.NCM
	existing.Unit = req.Unit
	existing.GrossWeight = req.GrossWeight
	existing.NetWeight = req.NetWeight
	existing.Image = req.Image
	existing.Source = req.Source
	existing.Complete = req.Complete
	existing.Price = req.Price
	existing.Cost = req.Cost
	existing.CategoryID = req.CategoryID
	existing.Category = nil
	existing.UpdatedBy = actor.ID

	if err := s.productRepo.Update(existing); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrEANExists
		}
		return nil, persistenceError("update product", err)
	}

	s.publishProduct("product_updated", existing, actor, fmt.Sprintf("%s updated product '%s'", actor.Name, existing.Description))
	return existing, nil
}

// DeleteProduct soft deletes; sale items keep pointing at the row.
func (s *catalogService) DeleteProduct(id uuid.UUID, actor Actor) error {
	if err := s.productRepo.Delete(id, actor.ID); err != nil {
		if database.IsNotFound(err) {
			return ErrProductNotFound
		}
		return persistenceError("delete product", err)
	}
	s.wsHub.Publish(map[string]interface{}{
		"type":    "product_update",
		"action":  "product_deleted",
		"product": map[string]interface{}{"id": id},
		"user":    actor.userPayload(),
	})
	return nil
}

func (s *catalogService) GetProduct(id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrProductNotFound
		}
		return nil, persistenceError("load product", err)
	}
	return product, nil
}

func (s *catalogService) ListProducts(filter repository.ProductFilter) ([]model.Product, error) {
	products, err := s.productRepo.FindAll(filter)
	if err != nil {
		return nil, persistenceError("list products", err)
	}
	return products, nil
}

func (s *catalogService) checkEANFree(ean string, self uuid.UUID) error {
	holder, err := s.productRepo.FindByEAN(ean)
	if err != nil {
		if database.IsNotFound(err) {
			return nil
		}
		return persistenceError("check product EAN", err)
	}
	if holder.ID != self {
		return ErrEANExists
	}
	return nil
}

func (s *catalogService) requireCategory(id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	if _, err := s.categoryRepo.FindByID(*id); err != nil {
		if database.IsNotFound(err) {
			return ledger.NewValidationError("category_id", "category %s does not exist", *id)
		}
		return persistenceError("load category", err)
	}
	return nil
}

func (s *catalogService) publishProduct(action string, p *model.Product, actor Actor, message string) {
	s.wsHub.Publish(map[string]interface{}{
		"type":   "product_update",
		"action": action,
		"product": map[string]interface{}{
			"id":          p.ID,
			"ean":         p.EAN,
			"description": p.Description,
			"price":       p.Price.StringFixed(2),
		},
		"user":    actor.userPayload(),
		"message": message,
	})
}
