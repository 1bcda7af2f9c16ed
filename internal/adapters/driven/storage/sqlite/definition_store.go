package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/termbase-labs/termbase-cli/internal/core/domain"
	"github.com/termbase-labs/termbase-cli/internal/core/ports/driven"
)

// definitionStore implements driven.DefinitionStore.
type definitionStore struct {
	store *Store
}

var _ driven.DefinitionStore = (*definitionStore)(nil)

const definitionColumns = `
	id, definition_id, symbol, name, aliases, canonical_definition,
	ontological_category, domain_type, layer, axioms, mathematical_primary,
	mathematical_dynamic, thresholds, domain_interpretations,
	operationalisation, failure_modes, integration_map, external_comparison,
	notes, related_terms, tags, source_kind, source_file, source_url,
	status, confidence, created_at, updated_at`

// SaveDefinition stores or updates a definition.
func (s *definitionStore) SaveDefinition(ctx context.Context, def *domain.Definition) error {
	if def == nil || def.ID == "" || def.Name == "" {
		return domain.ErrInvalidInput
	}

	aliasesJSON, err := json.Marshal(def.Aliases)
	if err != nil {
		return fmt.Errorf("marshalling aliases: %w", err)
	}
	axiomsJSON, err := json.Marshal(def.Axioms)
	if err != nil {
		return fmt.Errorf("marshalling axioms: %w", err)
	}
	interpsJSON, err := json.Marshal(def.DomainInterpretations)
	if err != nil {
		return fmt.Errorf("marshalling domain interpretations: %w", err)
	}
	integrationJSON, err := json.Marshal(def.IntegrationMap)
	if err != nil {
		return fmt.Errorf("marshalling integration map: %w", err)
	}
	relatedJSON, err := json.Marshal(def.RelatedTerms)
	if err != nil {
		return fmt.Errorf("marshalling related terms: %w", err)
	}
	tagsJSON, err := json.Marshal(def.Tags)
	if err != nil {
		return fmt.Errorf("marshalling tags: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO definitions
			(id, definition_id, symbol, name, aliases, canonical_definition,
			 ontological_category, domain_type, layer, axioms,
			 mathematical_primary, mathematical_dynamic, thresholds,
			 domain_interpretations, operationalisation, failure_modes,
			 integration_map, external_comparison, notes, related_terms, tags,
			 source_kind, source_file, source_url, status, confidence,
			 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			definition_id = excluded.definition_id,
			symbol = excluded.symbol,
			name = excluded.name,
			aliases = excluded.aliases,
			canonical_definition = excluded.canonical_definition,
			ontological_category = excluded.ontological_category,
			domain_type = excluded.domain_type,
			layer = excluded.layer,
			axioms = excluded.axioms,
			mathematical_primary = excluded.mathematical_primary,
			mathematical_dynamic = excluded.mathematical_dynamic,
			thresholds = excluded.thresholds,
			domain_interpretations = excluded.domain_interpretations,
			operationalisation = excluded.operationalisation,
			failure_modes = excluded.failure_modes,
			integration_map = excluded.integration_map,
			external_comparison = excluded.external_comparison,
			notes = excluded.notes,
			related_terms = excluded.related_terms,
			tags = excluded.tags,
			source_kind = excluded.source_kind,
			source_file = excluded.source_file,
			source_url = excluded.source_url,
			status = excluded.status,
			confidence = excluded.confidence,
			updated_at = excluded.updated_at
	`, def.ID, def.DefinitionID, def.Symbol, def.Name, string(aliasesJSON),
		def.CanonicalDefinition, def.OntologicalCategory, def.DomainType,
		def.Layer, string(axiomsJSON), def.MathematicalPrimary,
		def.MathematicalDynamic, def.Thresholds, string(interpsJSON),
		def.Operationalisation, def.FailureModes, string(integrationJSON),
		def.ExternalComparison, def.Notes, string(relatedJSON), string(tagsJSON),
		string(def.SourceKind), def.SourceFile, def.SourceURL,
		string(def.Status), string(def.Confidence),
		formatNullableTime(def.CreatedAt), formatNullableTime(def.UpdatedAt))

	if err != nil {
		return fmt.Errorf("saving definition: %w", err)
	}
	return nil
}

// GetDefinition retrieves a definition by row ID.
func (s *definitionStore) GetDefinition(ctx context.Context, id string) (*domain.Definition, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+definitionColumns+" FROM definitions WHERE id = ?", id)
	return scanDefinition(row.Scan)
}

// GetByDefinitionID retrieves a definition by its stable identifier.
func (s *definitionStore) GetByDefinitionID(ctx context.Context, definitionID string) (*domain.Definition, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+definitionColumns+" FROM definitions WHERE definition_id = ?", definitionID)
	return scanDefinition(row.Scan)
}

// ListDefinitions returns all definitions, newest first.
func (s *definitionStore) ListDefinitions(ctx context.Context) ([]domain.Definition, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT "+definitionColumns+" FROM definitions ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("querying definitions: %w", err)
	}
	defer rows.Close()

	var defs []domain.Definition //nolint:prealloc // size unknown from query
	for rows.Next() {
		def, err := scanDefinition(rows.Scan)
		if err != nil {
			return nil, err
		}
		defs = append(defs, *def)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating definitions: %w", err)
	}

	return defs, nil
}

// DeleteDefinition removes a definition by row ID.
func (s *definitionStore) DeleteDefinition(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM definitions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting definition: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// scanDefinition scans one definition row via the given scan function.
func scanDefinition(scan func(...any) error) (*domain.Definition, error) {
	var def domain.Definition
	var kind, status, confidence string
	var aliasesJSON, axiomsJSON, interpsJSON, integrationJSON sql.NullString
	var relatedJSON, tagsJSON sql.NullString
	var createdAt, updatedAt sql.NullString

	if err := scan(&def.ID, &def.DefinitionID, &def.Symbol, &def.Name,
		&aliasesJSON, &def.CanonicalDefinition, &def.OntologicalCategory,
		&def.DomainType, &def.Layer, &axiomsJSON, &def.MathematicalPrimary,
		&def.MathematicalDynamic, &def.Thresholds, &interpsJSON,
		&def.Operationalisation, &def.FailureModes, &integrationJSON,
		&def.ExternalComparison, &def.Notes, &relatedJSON, &tagsJSON,
		&kind, &def.SourceFile, &def.SourceURL, &status, &confidence,
		&createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning definition: %w", err)
	}

	def.SourceKind = domain.SourceKind(kind)
	def.Status = domain.DefinitionStatus(status)
	def.Confidence = domain.Confidence(confidence)
	def.CreatedAt = parseNullableTime(createdAt)
	def.UpdatedAt = parseNullableTime(updatedAt)

	for _, field := range []struct {
		src sql.NullString
		dst any
	}{
		{aliasesJSON, &def.Aliases},
		{axiomsJSON, &def.Axioms},
		{interpsJSON, &def.DomainInterpretations},
		{integrationJSON, &def.IntegrationMap},
		{relatedJSON, &def.RelatedTerms},
		{tagsJSON, &def.Tags},
	} {
		if !field.src.Valid || field.src.String == "" || field.src.String == jsonNull {
			continue
		}
		if err := json.Unmarshal([]byte(field.src.String), field.dst); err != nil {
			return nil, fmt.Errorf("unmarshalling definition field: %w", err)
		}
	}

	return &def, nil
}

// jsonNull is the JSON representation of null.
const jsonNull = "null"
