package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/issue-workflow/internal/domain"
	"github.com/spec-kit/issue-workflow/internal/workflow"
	apperrors "github.com/spec-kit/issue-workflow/pkg/util/errorutil"
)

type templateRepository struct {
	pool *pgxpool.Pool
}

// NewTemplateRepository instantiates the workflow-definition repository.
func NewTemplateRepository(pool *pgxpool.Pool) workflow.TemplateRepository {
	return &templateRepository{pool: pool}
}

func (r *templateRepository) GetTemplate(ctx context.Context, id string) (*domain.Template, error) {
	const query = `
        SELECT id, name, description, locked, frozen_days, created_at
        FROM templates WHERE id=$1`
	var t domain.Template
	err := querierFrom(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.Description, &t.Locked, &t.FrozenDays, &t.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("template", map[string]any{"template_id": id})
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Graph loads and compiles the template's state graph.
func (r *templateRepository) Graph(ctx context.Context, templateID string) (*workflow.Graph, error) {
	template, err := r.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}
	states, err := r.statesOf(ctx, templateID)
	if err != nil {
		return nil, err
	}
	transitions, err := r.transitionsOf(ctx, templateID)
	if err != nil {
		return nil, err
	}
	return workflow.NewGraph(*template, states, transitions)
}

func (r *templateRepository) statesOf(ctx context.Context, templateID string) ([]domain.State, error) {
	const query = `
        SELECT id, template_id, name, type, responsible, created_at
        FROM states WHERE template_id=$1
        ORDER BY name`
	rows, err := querierFrom(ctx, r.pool).Query(ctx, query, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var states []domain.State
	for rows.Next() {
		var s domain.State
		if err := rows.Scan(&s.ID, &s.TemplateID, &s.Name, &s.Type, &s.Responsible, &s.CreatedAt); err != nil {
			return nil, err
		}
		states = append(states, s)
	}
	return states, rows.Err()
}

func (r *templateRepository) transitionsOf(ctx context.Context, templateID string) ([]domain.Transition, error) {
	const query = `
        SELECT t.from_state_id, t.to_state_id, t.roles, t.group_ids
        FROM state_transitions t
        JOIN states s ON s.id = t.from_state_id
        WHERE s.template_id=$1`
	rows, err := querierFrom(ctx, r.pool).Query(ctx, query, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transitions []domain.Transition
	for rows.Next() {
		var tr domain.Transition
		var roles []string
		if err := rows.Scan(&tr.FromStateID, &tr.ToStateID, &roles, &tr.GroupIDs); err != nil {
			return nil, err
		}
		tr.Roles = make([]domain.SystemRole, len(roles))
		for i, role := range roles {
			tr.Roles[i] = domain.SystemRole(role)
		}
		transitions = append(transitions, tr)
	}
	return transitions, rows.Err()
}

func (r *templateRepository) GetField(ctx context.Context, id string) (*domain.Field, error) {
	const query = `
        SELECT id, state_id, name, kind, required, position, params, created_at
        FROM fields WHERE id=$1`
	field, err := r.scanField(querierFrom(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("field", map[string]any{"field_id": id})
		}
		return nil, err
	}
	if err := r.loadItems(ctx, field); err != nil {
		return nil, err
	}
	return field, nil
}

func (r *templateRepository) FieldsByState(ctx context.Context, stateID string) ([]domain.Field, error) {
	const query = `
        SELECT id, state_id, name, kind, required, position, params, created_at
        FROM fields WHERE state_id=$1
        ORDER BY position`
	rows, err := querierFrom(ctx, r.pool).Query(ctx, query, stateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fields []domain.Field
	for rows.Next() {
		field, err := r.scanField(rows)
		if err != nil {
			return nil, err
		}
		fields = append(fields, *field)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range fields {
		if err := r.loadItems(ctx, &fields[i]); err != nil {
			return nil, err
		}
	}
	return fields, nil
}

func (r *templateRepository) ResponsibleGroups(ctx context.Context, stateID string) ([]string, error) {
	const query = `
        SELECT group_id FROM state_responsible_groups WHERE state_id=$1`
	rows, err := querierFrom(ctx, r.pool).Query(ctx, query, stateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		groups = append(groups, id)
	}
	return groups, rows.Err()
}

func (r *templateRepository) scanField(row pgx.Row) (*domain.Field, error) {
	var field domain.Field
	var params []byte
	if err := row.Scan(&field.ID, &field.StateID, &field.Name, &field.Kind,
		&field.Required, &field.Position, &params, &field.CreatedAt); err != nil {
		return nil, err
	}
	if len(params) > 0 {
		if err := json.Unmarshal(params, &field.Params); err != nil {
			return nil, err
		}
	}
	return &field, nil
}

func (r *templateRepository) loadItems(ctx context.Context, field *domain.Field) error {
	if field.Kind != domain.KindList {
		return nil
	}
	const query = `
        SELECT item_value, item_text FROM field_items
        WHERE field_id=$1 ORDER BY item_value`
	rows, err := querierFrom(ctx, r.pool).Query(ctx, query, field.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.ListItem
		if err := rows.Scan(&item.Value, &item.Text); err != nil {
			return err
		}
		field.Items = append(field.Items, item)
	}
	return rows.Err()
}
