package storage

import "context"

const createCategory = `-- name: CreateCategory :one
INSERT INTO categories (name) VALUES (?) RETURNING id, name`

func (q *Queries) CreateCategory(ctx context.Context, name string) (Category, error) {
	var i Category
	err := q.db.QueryRowContext(ctx, createCategory, name).Scan(&i.ID, &i.Name)
	return i, err
}

const getCategory = `-- name: GetCategory :one
SELECT id, name FROM categories WHERE id = ?`

func (q *Queries) GetCategory(ctx context.Context, id int64) (Category, error) {
	var i Category
	err := q.db.QueryRowContext(ctx, getCategory, id).Scan(&i.ID, &i.Name)
	return i, err
}

const getCategoryByName = `-- name: GetCategoryByName :one
SELECT id, name FROM categories WHERE name = ? COLLATE NOCASE`

func (q *Queries) GetCategoryByName(ctx context.Context, name string) (Category, error) {
	var i Category
	err := q.db.QueryRowContext(ctx, getCategoryByName, name).Scan(&i.ID, &i.Name)
	return i, err
}

const listCategories = `-- name: ListCategories :many
SELECT id, name FROM categories ORDER BY name COLLATE NOCASE`

func (q *Queries) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := q.db.QueryContext(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Category
	for rows.Next() {
		var i Category
		if err := rows.Scan(&i.ID, &i.Name); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateCategory = `-- name: UpdateCategory :one
UPDATE categories SET name = ? WHERE id = ? RETURNING id, name`

func (q *Queries) UpdateCategory(ctx context.Context, id int64, name string) (Category, error) {
	var i Category
	err := q.db.QueryRowContext(ctx, updateCategory, name, id).Scan(&i.ID, &i.Name)
	return i, err
}

const deleteCategory = `-- name: DeleteCategory :execrows
DELETE FROM categories WHERE id = ?`

func (q *Queries) DeleteCategory(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteCategory, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
