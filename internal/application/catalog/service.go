// Package catalog implements the catalog routines: listing, filtering,
// joining and the add/update/delete commands. Every routine opens its own
// data context and closes it before returning.
package catalog

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/masoud-shayan/northwind/internal/domain/catalog"
	"github.com/masoud-shayan/northwind/internal/domain/shared"
	"github.com/masoud-shayan/northwind/internal/infrastructure/logger"
	"github.com/masoud-shayan/northwind/internal/infrastructure/persistence"
	"github.com/masoud-shayan/northwind/internal/infrastructure/telemetry"
	"github.com/masoud-shayan/northwind/internal/infrastructure/validation"
)

var tracer = otel.Tracer("github.com/masoud-shayan/northwind/internal/application/catalog")

// Service runs catalog routines against data contexts from open.
type Service struct {
	open    persistence.Factory
	metrics *telemetry.CatalogMetrics
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics records every routine's duration and outcome on m.
func WithMetrics(m *telemetry.CatalogMetrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService creates a new Service
func NewService(open persistence.Factory, opts ...Option) *Service {
	s := &Service{open: open}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// within opens a data context, runs fn inside a span named after the routine
// and always closes the context.
func (s *Service) within(ctx context.Context, routine string, fn func(context.Context, *persistence.Northwind) error) (err error) {
	ctx, span := tracer.Start(ctx, "catalog."+routine, trace.WithAttributes(attribute.String("routine", routine)))
	start := time.Now()
	defer func() {
		s.metrics.RecordRoutine(ctx, routine, time.Since(start), err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	nw, err := s.open(ctx)
	if err != nil {
		return fmt.Errorf("failed to open data context: %w", err)
	}
	defer nw.Close()

	logger.L(ctx).Debug("Routine started", zap.String("routine", routine))
	return fn(ctx, nw)
}

// CategorySummaries returns every category with its product count.
func (s *Service) CategorySummaries(ctx context.Context) ([]CategorySummary, error) {
	var out []CategorySummary
	err := s.within(ctx, "QueryingCategories", func(ctx context.Context, nw *persistence.Northwind) error {
		categories, err := nw.Categories().Include("Products").ToList(ctx)
		if err != nil {
			return err
		}
		out = make([]CategorySummary, 0, len(categories))
		for _, c := range categories {
			out = append(out, CategorySummary{CategoryName: c.CategoryName, ProductCount: c.ProductCount()})
		}
		return nil
	})
	return out, err
}

// ProductsAbove returns products costing more than price, most expensive first.
func (s *Service) ProductsAbove(ctx context.Context, price decimal.Decimal) ([]ProductView, error) {
	var out []ProductView
	err := s.within(ctx, "QueryingProducts", func(ctx context.Context, nw *persistence.Northwind) error {
		products, err := nw.Products().
			Scopes(persistence.PriceAbove(price)).
			OrderByDescending("unit_price").
			ToList(ctx)
		if err != nil {
			return err
		}
		out = toProductViews(products)
		return nil
	})
	return out, err
}

// ProductsLike returns products whose name contains fragment.
func (s *Service) ProductsLike(ctx context.Context, fragment string) ([]ProductView, error) {
	var out []ProductView
	err := s.within(ctx, "QueryingWithLike", func(ctx context.Context, nw *persistence.Northwind) error {
		products, err := nw.Products().Scopes(persistence.NameLike(fragment)).ToList(ctx)
		if err != nil {
			return err
		}
		out = toProductViews(products)
		return nil
	})
	return out, err
}

// ListProducts returns every product ordered by cost, highest first.
func (s *Service) ListProducts(ctx context.Context) ([]ProductView, error) {
	var out []ProductView
	err := s.within(ctx, "ListProducts", func(ctx context.Context, nw *persistence.Northwind) error {
		products, err := nw.Products().OrderByDescending("unit_price").ToList(ctx)
		if err != nil {
			return err
		}
		out = toProductViews(products)
		return nil
	})
	return out, err
}

// AddProduct inserts a product. It succeeds when exactly one row was written.
func (s *Service) AddProduct(ctx context.Context, in AddProductInput) (MutationResult, error) {
	if err := validation.Struct(in); err != nil {
		return MutationResult{}, err
	}

	cost := decimal.NullDecimal{}
	if in.Price != nil {
		cost = decimal.NewNullDecimal(*in.Price)
	}

	var result MutationResult
	err := s.within(ctx, "AddProduct", func(ctx context.Context, nw *persistence.Northwind) error {
		product, err := catalog.NewProduct(in.CategoryID, in.ProductName, cost)
		if err != nil {
			return err
		}
		nw.Products().Add(product)

		affected, err := nw.SaveChanges(ctx)
		if err != nil {
			return err
		}
		result = MutationResult{Affected: affected, Succeeded: affected == 1}
		logger.L(ctx).Info("Product added",
			zap.Int("product_id", product.ProductID),
			zap.Int64("rows_affected", affected),
		)
		return nil
	})
	return result, err
}

// IncreaseProductPrice raises the cost of the first product, by id, whose
// name starts with prefix. A product without a price is left unchanged, so
// the result reports no affected rows. No match yields shared.ErrNotFound.
func (s *Service) IncreaseProductPrice(ctx context.Context, prefix string, amount decimal.Decimal) (MutationResult, error) {
	var result MutationResult
	err := s.within(ctx, "IncreaseProductPrice", func(ctx context.Context, nw *persistence.Northwind) error {
		product, err := nw.Products().
			Scopes(persistence.NameStartsWith(prefix)).
			OrderBy("product_id").
			First(ctx)
		if err != nil {
			return fmt.Errorf("no product starts with %q: %w", prefix, err)
		}
		product.IncreaseCost(amount)

		affected, err := nw.SaveChanges(ctx)
		if err != nil {
			return err
		}
		result = MutationResult{Affected: affected, Succeeded: affected == 1}
		logger.L(ctx).Info("Product price increased",
			zap.Int("product_id", product.ProductID),
			zap.String("amount", amount.String()),
			zap.Int64("rows_affected", affected),
		)
		return nil
	})
	return result, err
}

// DeleteProducts removes every product whose name starts with prefix. It
// succeeds when at least one row was removed.
func (s *Service) DeleteProducts(ctx context.Context, prefix string) (MutationResult, error) {
	var result MutationResult
	err := s.within(ctx, "DeleteProducts", func(ctx context.Context, nw *persistence.Northwind) error {
		if _, err := nw.Products().Scopes(persistence.NameStartsWith(prefix)).RemoveRange(ctx); err != nil {
			return err
		}

		affected, err := nw.SaveChanges(ctx)
		if err != nil {
			return err
		}
		result = MutationResult{Affected: affected, Succeeded: affected > 0}
		logger.L(ctx).Info("Products deleted",
			zap.String("prefix", prefix),
			zap.Int64("rows_affected", affected),
		)
		return nil
	})
	return result, err
}

// CategoryProducts joins categories and products in the store; categories
// without products do not appear.
func (s *Service) CategoryProducts(ctx context.Context) ([]CategoryProductLine, error) {
	var out []CategoryProductLine
	err := s.within(ctx, "JoinCategoriesAndProducts", func(ctx context.Context, nw *persistence.Northwind) error {
		lines, err := persistence.Project[CategoryProductLine](ctx, nw.Categories().
			Joins("JOIN products ON products.category_id = categories.category_id").
			Select("categories.category_name, products.product_id, products.product_name").
			OrderBy("categories.category_id").
			OrderBy("products.product_id"))
		if err != nil {
			return err
		}
		out = lines
		return nil
	})
	return out, err
}

// CategoriesWithProducts pairs every category, in id order, with its
// products sorted by name under English collation. Empty categories keep
// an empty product list.
func (s *Service) CategoriesWithProducts(ctx context.Context) ([]CategoryGroup, error) {
	var out []CategoryGroup
	err := s.within(ctx, "GroupJoinCategoriesAndProducts", func(ctx context.Context, nw *persistence.Northwind) error {
		categories, err := nw.Categories().OrderBy("category_id").ToList(ctx)
		if err != nil {
			return err
		}
		products, err := nw.Products().ToList(ctx)
		if err != nil {
			return err
		}

		groups := shared.GroupJoin(categories, products,
			(*catalog.Category).Key,
			(*catalog.Product).CategoryKey,
		)

		col := collate.New(language.English)
		out = make([]CategoryGroup, 0, len(groups))
		for _, g := range groups {
			views := toProductViews(g.Items)
			slices.SortStableFunc(views, func(a, b ProductView) int {
				return col.CompareString(a.ProductName, b.ProductName)
			})
			out = append(out, CategoryGroup{CategoryName: g.Key.CategoryName, Products: views})
		}
		return nil
	})
	return out, err
}
