package catalog

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")

type Repo struct{ DB *pgxpool.Pool }

// ---- Categories ----

func (r *Repo) CreateCategory(ctx context.Context, name string) (*Category, error) {
	c := Category{ID: uuid.NewString(), Name: name}
	err := r.DB.QueryRow(ctx, `
		INSERT INTO categories(id, name) VALUES ($1,$2) RETURNING created_at`,
		c.ID, c.Name).Scan(&c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repo) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, name, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) UpdateCategory(ctx context.Context, id, name string) error {
	ct, err := r.DB.Exec(ctx, `UPDATE categories SET name=$2 WHERE id=$1`, id, name)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) DeleteCategory(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM categories WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ---- Products ----

func (r *Repo) CreateProduct(ctx context.Context, p *Product) error {
	p.ID = uuid.NewString()
	return r.DB.QueryRow(ctx, `
		INSERT INTO products(id, category_id, name, description)
		VALUES ($1,$2,$3,$4) RETURNING created_at, updated_at`,
		p.ID, p.CategoryID, p.Name, p.Description).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *Repo) GetProduct(ctx context.Context, id string) (*Product, error) {
	var p Product
	err := r.DB.QueryRow(ctx, `
		SELECT id, category_id, name, description, created_at, updated_at
		FROM products WHERE id=$1`, id).
		Scan(&p.ID, &p.CategoryID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *Repo) ListProducts(ctx context.Context, categoryID string) ([]Product, error) {
	q := `SELECT id, category_id, name, description, created_at, updated_at FROM products`
	args := []any{}
	if categoryID != "" {
		q += ` WHERE category_id=$1`
		args = append(args, categoryID)
	}
	q += ` ORDER BY name`
	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) UpdateProduct(ctx context.Context, p *Product) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE products SET category_id=$2, name=$3, description=$4, updated_at=now()
		WHERE id=$1`, p.ID, p.CategoryID, p.Name, p.Description)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) DeleteProduct(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ---- Variants ----

func (r *Repo) CreateVariant(ctx context.Context, v *Variant) error {
	v.ID = uuid.NewString()
	attrs, err := json.Marshal(orEmpty(v.Attributes))
	if err != nil {
		return err
	}
	return r.DB.QueryRow(ctx, `
		INSERT INTO product_variants(id, product_id, sku, size, color, price_cents, stock_quantity, attributes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING created_at, updated_at`,
		v.ID, v.ProductID, v.SKU, v.Size, v.Color, v.PriceCents, v.Stock, attrs).
		Scan(&v.CreatedAt, &v.UpdatedAt)
}

func (r *Repo) GetVariant(ctx context.Context, id string) (*Variant, error) {
	var v Variant
	var attrs []byte
	err := r.DB.QueryRow(ctx, `
		SELECT id, product_id, sku, size, color, price_cents, stock_quantity, attributes, created_at, updated_at
		FROM product_variants WHERE id=$1`, id).
		Scan(&v.ID, &v.ProductID, &v.SKU, &v.Size, &v.Color, &v.PriceCents, &v.Stock, &attrs, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(attrs, &v.Attributes); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *Repo) ListVariants(ctx context.Context, productID string) ([]Variant, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, product_id, sku, size, color, price_cents, stock_quantity, attributes, created_at, updated_at
		FROM product_variants WHERE product_id=$1 ORDER BY sku`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Variant
	for rows.Next() {
		var v Variant
		var attrs []byte
		if err := rows.Scan(&v.ID, &v.ProductID, &v.SKU, &v.Size, &v.Color, &v.PriceCents, &v.Stock, &attrs, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(attrs, &v.Attributes); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// UpdateVariant sengaja tidak menyentuh stock_quantity; stok hanya lewat
// Restock (additive) atau primitive di SaleStore.
func (r *Repo) UpdateVariant(ctx context.Context, v *Variant) error {
	attrs, err := json.Marshal(orEmpty(v.Attributes))
	if err != nil {
		return err
	}
	ct, err := r.DB.Exec(ctx, `
		UPDATE product_variants SET sku=$2, size=$3, color=$4, price_cents=$5, attributes=$6, updated_at=now()
		WHERE id=$1`, v.ID, v.SKU, v.Size, v.Color, v.PriceCents, attrs)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) DeleteVariant(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM product_variants WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) Restock(ctx context.Context, id string, qty int) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE product_variants SET stock_quantity = stock_quantity + $2, updated_at=now()
		WHERE id=$1`, id, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ---- SP groups ----

func (r *Repo) CreateSPGroup(ctx context.Context, g *SPGroup) error {
	g.ID = uuid.NewString()
	_, err := r.DB.Exec(ctx, `
		INSERT INTO sp_groups(id, name, starts_at, ends_at) VALUES ($1,$2,$3,$4)`,
		g.ID, g.Name, g.StartsAt, g.EndsAt)
	return err
}

func (r *Repo) ListSPGroups(ctx context.Context) ([]SPGroup, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, name, starts_at, ends_at FROM sp_groups ORDER BY starts_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SPGroup
	for rows.Next() {
		var g SPGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.StartsAt, &g.EndsAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *Repo) DeleteSPGroup(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM sp_groups WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetSPItems ganti seluruh member grup sekali jalan (replace semantics).
func (r *Repo) SetSPItems(ctx context.Context, groupID string, items []SPItem) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM sp_group_items WHERE group_id=$1`, groupID); err != nil {
		return err
	}
	for _, it := range items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO sp_group_items(group_id, variant_id, price_cents)
			VALUES ($1,$2,$3)`, groupID, it.VariantID, it.PriceCents); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func orEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
