package repositories

import (
	"context"

	"meeplemart/internal/models"

	"github.com/google/uuid"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*models.Category, error)
}

type categoryRepo struct {
	db Database
}

func NewCategoryRepo(db Database) CategoryRepository {
	return &categoryRepo{db: db}
}

func (r *categoryRepo) Create(ctx context.Context, category *models.Category) error {
	query := `
		INSERT INTO categories (id, name, slug, parent_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, category.ID, category.Name, category.Slug, category.ParentID)
	return err
}

func (r *categoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category := &models.Category{}
	query := `SELECT id, name, slug, parent_id, created_at, updated_at FROM categories WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(
		&category.ID, &category.Name, &category.Slug, &category.ParentID, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (r *categoryRepo) Update(ctx context.Context, category *models.Category) error {
	query := `UPDATE categories SET name = $2, slug = $3, parent_id = $4, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, category.ID, category.Name, category.Slug, category.ParentID)
	return err
}

func (r *categoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	return err
}

func (r *categoryRepo) List(ctx context.Context) ([]*models.Category, error) {
	query := `SELECT id, name, slug, parent_id, created_at, updated_at FROM categories ORDER BY name ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		category := &models.Category{}
		if err := rows.Scan(&category.ID, &category.Name, &category.Slug, &category.ParentID, &category.CreatedAt, &category.UpdatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

// NamedEntity is the shared id/name shape of brands, game types and
// audiences.
type NamedEntity struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// NamedEntityRepository covers brands, game types and audiences, which share
// the same id/name shape.
type NamedEntityRepository interface {
	Create(ctx context.Context, id uuid.UUID, name string) error
	GetByID(ctx context.Context, id uuid.UUID) (*NamedEntity, error)
	GetByName(ctx context.Context, name string) (*NamedEntity, error)
	Update(ctx context.Context, id uuid.UUID, name string) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*NamedEntity, error)
}

type namedEntityRepo struct {
	db    Database
	table string
}

func NewBrandRepo(db Database) NamedEntityRepository {
	return &namedEntityRepo{db: db, table: "brands"}
}

func NewGameTypeRepo(db Database) NamedEntityRepository {
	return &namedEntityRepo{db: db, table: "game_types"}
}

func NewAudienceRepo(db Database) NamedEntityRepository {
	return &namedEntityRepo{db: db, table: "audiences"}
}

func (r *namedEntityRepo) Create(ctx context.Context, id uuid.UUID, name string) error {
	_, err := r.db.Exec(ctx, `INSERT INTO `+r.table+` (id, name, created_at) VALUES ($1, $2, NOW())`, id, name)
	return err
}

func (r *namedEntityRepo) GetByID(ctx context.Context, id uuid.UUID) (*NamedEntity, error) {
	entity := &NamedEntity{}
	err := r.db.QueryRow(ctx, `SELECT id, name FROM `+r.table+` WHERE id = $1`, id).Scan(&entity.ID, &entity.Name)
	if err != nil {
		return nil, err
	}
	return entity, nil
}

func (r *namedEntityRepo) GetByName(ctx context.Context, name string) (*NamedEntity, error) {
	entity := &NamedEntity{}
	err := r.db.QueryRow(ctx, `SELECT id, name FROM `+r.table+` WHERE LOWER(name) = LOWER($1)`, name).Scan(&entity.ID, &entity.Name)
	if err != nil {
		return nil, err
	}
	return entity, nil
}

func (r *namedEntityRepo) Update(ctx context.Context, id uuid.UUID, name string) error {
	_, err := r.db.Exec(ctx, `UPDATE `+r.table+` SET name = $2 WHERE id = $1`, id, name)
	return err
}

func (r *namedEntityRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM `+r.table+` WHERE id = $1`, id)
	return err
}

func (r *namedEntityRepo) List(ctx context.Context) ([]*NamedEntity, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM `+r.table+` ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*NamedEntity
	for rows.Next() {
		entity := &NamedEntity{}
		if err := rows.Scan(&entity.ID, &entity.Name); err != nil {
			return nil, err
		}
		entries = append(entries, entity)
	}
	return entries, rows.Err()
}
