package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rbgleisson/contas-a-pagar/internal/common"
	"github.com/rbgleisson/contas-a-pagar/internal/model"
)

// ListCategories returns all categories ordered by name.
func (s *SQLiteStorage) ListCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, nome FROM categorias ORDER BY nome`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		var cat model.Category
		if err := rows.Scan(&cat.ID, &cat.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}

// CreateCategory creates a new category with a unique name.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO categorias (nome) VALUES (?)`, name)
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, fmt.Errorf("category %q: %w", name, common.ErrDuplicateEntry)
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get category ID: %w", err)
	}
	return &model.Category{ID: id, Name: name}, nil
}

// RegisterCategoryIfAbsent inserts a category name, ignoring duplicates.
// Used by the import engine, where a lost race on the name is harmless.
func (s *SQLiteStorage) RegisterCategoryIfAbsent(ctx context.Context, name string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	_, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO categorias (nome) VALUES (?)`, name)
	if err != nil {
		return fmt.Errorf("failed to register category %q: %w", name, err)
	}
	return nil
}

// RenameCategory renames a category. Entries keep their denormalized
// category string; renaming never cascades.
func (s *SQLiteStorage) RenameCategory(ctx context.Context, oldName, newName string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	oldName = strings.TrimSpace(oldName)
	newName = strings.TrimSpace(newName)
	if err := validateString(oldName, "oldName"); err != nil {
		return err
	}
	if err := validateString(newName, "newName"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `UPDATE categorias SET nome = ? WHERE nome = ?`, newName, oldName)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("category %q: %w", newName, common.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to rename category %q: %w", oldName, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("category %q: %w", oldName, common.ErrNotFound)
	}
	return nil
}

// DeleteCategory removes a category by name. Existing entries keep their
// category text.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, name string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if err := validateString(name, "name"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM categorias WHERE nome = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete category %q: %w", name, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("category %q: %w", name, common.ErrNotFound)
	}
	return nil
}
