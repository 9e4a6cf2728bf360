package repository

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"project_aceRelay/internal/entities"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"gopkg.in/yaml.v3"
)

//go:embed data/objections.yaml
var defaultCatalogYAML []byte

// DefaultCatalog returns the built-in objection playbook.
func DefaultCatalog() (entities.Catalog, error) {
	return ParseCatalog(defaultCatalogYAML)
}

// LoadCatalogFile reads a YAML objection playbook from disk.
func LoadCatalogFile(path string) (entities.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read objections file: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a YAML list of objection entries and validates it.
func ParseCatalog(data []byte) (entities.Catalog, error) {
	var catalog entities.Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("decode objections: %w", err)
	}
	if catalog == nil {
		catalog = entities.Catalog{}
	}
	if err := ValidateCatalog(catalog); err != nil {
		return nil, err
	}
	return catalog, nil
}

// ValidateCatalog checks that every entry has a unique, non-empty id.
// Keywords may repeat across entries.
func ValidateCatalog(catalog entities.Catalog) error {
	seen := make(map[string]bool, len(catalog))
	for i, e := range catalog {
		if e.ID == "" {
			return fmt.Errorf("objection #%d has no id", i+1)
		}
		if seen[e.ID] {
			return fmt.Errorf("duplicate objection id %q", e.ID)
		}
		seen[e.ID] = true
	}
	return nil
}

// ObjectionRepository stores the playbook in PostgreSQL so it can be edited without a redeploy.
type ObjectionRepository struct {
	db *pgxpool.Pool
}

func NewObjectionRepository(db *pgxpool.Pool) *ObjectionRepository {
	return &ObjectionRepository{db: db}
}

// GetCatalog returns every stored objection in playbook order.
func (r *ObjectionRepository) GetCatalog(ctx context.Context) (entities.Catalog, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, trigger_keywords, strategy, response
		FROM objections
		ORDER BY position, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query objections: %w", err)
	}
	defer rows.Close()

	catalog := entities.Catalog{}
	for rows.Next() {
		var e entities.ObjectionEntry
		if err := rows.Scan(&e.ID, &e.TriggerKeywords, &e.Strategy, &e.Response); err != nil {
			return nil, fmt.Errorf("scan objection: %w", err)
		}
		catalog = append(catalog, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return catalog, ValidateCatalog(catalog)
}

// SeedIfEmpty writes catalog into an empty objections table. It reports whether rows were written.
func (r *ObjectionRepository) SeedIfEmpty(ctx context.Context, catalog entities.Catalog) (bool, error) {
	var count int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM objections").Scan(&count); err != nil {
		return false, fmt.Errorf("count objections: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	batch := &pgx.Batch{}
	for i, e := range catalog {
		batch.Queue(`
			INSERT INTO objections (id, position, trigger_keywords, strategy, response)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO NOTHING
		`, e.ID, i, e.TriggerKeywords, e.Strategy, e.Response)
	}
	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return false, fmt.Errorf("seed objections: %w", err)
	}
	return true, nil
}
