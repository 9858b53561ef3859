package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/agonsep/21stCentury/pkg/models"
)

// UserRepository provides database operations for users. Users are append-only.
type UserRepository interface {
	List(ctx context.Context) ([]*models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Count(ctx context.Context) (int, error)
}

type userRepository struct {
	db *bun.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *bun.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) List(ctx context.Context) ([]*models.User, error) {
	var users []*User
	err := r.db.NewSelect().
		Model(&users).
		Order("created_at DESC", "id DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*models.User, len(users))
	for i, u := range users {
		result[i] = u.ToModel()
	}
	return result, nil
}

func (r *userRepository) Get(ctx context.Context, id int64) (*models.User, error) {
	user := new(User)
	err := r.db.NewSelect().
		Model(user).
		Where("id = ?", id).
		Scan(ctx)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	return user.ToModel(), nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user := new(User)
	err := r.db.NewSelect().
		Model(user).
		Where("email = ?", email).
		Scan(ctx)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", email, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	return user.ToModel(), nil
}

// Create inserts the user and fills in its id and creation time. A taken
// email yields ErrDuplicateEmail.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	dbUser := UserFromModel(user)
	_, err := r.db.NewInsert().
		Model(dbUser).
		Exec(ctx)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return err
	}

	user.ID = dbUser.ID
	return nil
}

func (r *userRepository) Count(ctx context.Context) (int, error) {
	return r.db.NewSelect().Model((*User)(nil)).Count(ctx)
}

// ProductRepository provides database operations for catalog products
type ProductRepository interface {
	List(ctx context.Context, filter ProductFilter) ([]*models.Product, error)
	Get(ctx context.Context, id int64) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
	Manufacturers(ctx context.Context) ([]string, error)
	Origins(ctx context.Context) ([]string, error)
	Categories(ctx context.Context) ([]models.Category, error)
	ExistsByNameAndManufacturer(ctx context.Context, name, manufacturer string) (bool, error)
}

type productRepository struct {
	db *bun.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *bun.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]*models.Product, error) {
	var products []*Product
	err := filter.apply(r.db.NewSelect().Model(&products)).Scan(ctx)
	if err != nil {
		return nil, err
	}

	if filter.Limit == 0 && filter.Offset > 0 {
		if filter.Offset >= len(products) {
			products = nil
		} else {
			products = products[filter.Offset:]
		}
	}

	result := make([]*models.Product, len(products))
	for i, p := range products {
		result[i] = p.ToModel()
	}
	return result, nil
}

func (r *productRepository) Get(ctx context.Context, id int64) (*models.Product, error) {
	product := new(Product)
	err := r.db.NewSelect().
		Model(product).
		Where("id = ?", id).
		Scan(ctx)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	return product.ToModel(), nil
}

// Create inserts the product and fills in its id and timestamps
func (r *productRepository) Create(ctx context.Context, product *models.Product) error {
	now := time.Now().UTC()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now

	dbProduct := ProductFromModel(product)
	if _, err := r.db.NewInsert().Model(dbProduct).Exec(ctx); err != nil {
		return err
	}

	product.ID = dbProduct.ID
	if product.Documents == nil {
		product.Documents = []string{}
	}
	return nil
}

// Update replaces every mutable column of the product. The creation time is
// kept and copied back into product.
func (r *productRepository) Update(ctx context.Context, product *models.Product) error {
	product.UpdatedAt = time.Now().UTC()

	dbProduct := ProductFromModel(product)
	res, err := r.db.NewUpdate().
		Model(dbProduct).
		ExcludeColumn("id", "created_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("product %d: %w", product.ID, ErrNotFound)
	}

	stored, err := r.Get(ctx, product.ID)
	if err != nil {
		return err
	}
	*product = *stored
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.NewDelete().
		Model((*Product)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *productRepository) Count(ctx context.Context) (int, error) {
	return r.db.NewSelect().Model((*Product)(nil)).Count(ctx)
}

func (r *productRepository) Manufacturers(ctx context.Context) ([]string, error) {
	var out []string
	err := r.db.NewSelect().
		Model((*Product)(nil)).
		Distinct().
		Column("manufacturer").
		Order("manufacturer ASC").
		Scan(ctx, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *productRepository) Origins(ctx context.Context) ([]string, error) {
	var out []string
	err := r.db.NewSelect().
		Model((*Product)(nil)).
		Distinct().
		Column("origin").
		Where("origin IS NOT NULL").
		Where("origin <> ''").
		Order("origin ASC").
		Scan(ctx, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *productRepository) Categories(ctx context.Context) ([]models.Category, error) {
	var labels []string
	err := r.db.NewSelect().
		Model((*Product)(nil)).
		Distinct().
		Column("category").
		Order("category ASC").
		Scan(ctx, &labels)
	if err != nil {
		return nil, err
	}

	out := make([]models.Category, len(labels))
	for i, l := range labels {
		out[i] = models.NewCategory(l)
	}
	return out, nil
}

func (r *productRepository) ExistsByNameAndManufacturer(ctx context.Context, name, manufacturer string) (bool, error) {
	return r.db.NewSelect().
		Model((*Product)(nil)).
		Where("name = ?", name).
		Where("manufacturer = ?", manufacturer).
		Exists(ctx)
}

// MapRepository provides database operations for saved diagrams
type MapRepository interface {
	List(ctx context.Context) ([]*models.MapSummary, error)
	Get(ctx context.Context, id int64) (*models.Map, error)
	Create(ctx context.Context, m *models.Map) error
	Update(ctx context.Context, m *models.Map) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

type mapRepository struct {
	db *bun.DB
}

// NewMapRepository creates a new map repository
func NewMapRepository(db *bun.DB) MapRepository {
	return &mapRepository{db: db}
}

func (r *mapRepository) List(ctx context.Context) ([]*models.MapSummary, error) {
	var maps []*Map
	err := r.db.NewSelect().
		Model(&maps).
		Order("created_at DESC", "id DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*models.MapSummary, len(maps))
	for i, m := range maps {
		result[i] = m.ToModel().Summary()
	}
	return result, nil
}

func (r *mapRepository) Get(ctx context.Context, id int64) (*models.Map, error) {
	m := new(Map)
	err := r.db.NewSelect().
		Model(m).
		Where("id = ?", id).
		Scan(ctx)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("map %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	return m.ToModel(), nil
}

// Create inserts the map and fills in its id and timestamps
func (r *mapRepository) Create(ctx context.Context, m *models.Map) error {
	now := time.Now().UTC()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now

	dbMap := MapFromModel(m)
	if _, err := r.db.NewInsert().Model(dbMap).Exec(ctx); err != nil {
		return err
	}

	m.ID = dbMap.ID
	m.Icons = dbMap.Icons
	m.Connections = dbMap.Connections
	return nil
}

// Update overwrites the stored map. There is no version check; the last
// write wins.
func (r *mapRepository) Update(ctx context.Context, m *models.Map) error {
	m.UpdatedAt = time.Now().UTC()

	dbMap := MapFromModel(m)
	res, err := r.db.NewUpdate().
		Model(dbMap).
		ExcludeColumn("id", "created_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("map %d: %w", m.ID, ErrNotFound)
	}

	stored, err := r.Get(ctx, m.ID)
	if err != nil {
		return err
	}
	*m = *stored
	return nil
}

func (r *mapRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.NewDelete().
		Model((*Map)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("map %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *mapRepository) Count(ctx context.Context) (int, error) {
	return r.db.NewSelect().Model((*Map)(nil)).Count(ctx)
}
