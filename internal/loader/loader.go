// Package loader reads an application's module definitions from the engine
// database and materializes them into an in-memory cache. Loading is
// all-or-nothing; there is no incremental refresh.
package loader

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/warekit/shuttle/internal/engine"
	"github.com/warekit/shuttle/pkg/api"
)

// Loader implements engine.Loader over the engine definition schema
type Loader struct {
	db *sqlx.DB
}

// Open connects to the engine database using the given driver and DSN
func Open(driver, dsn string) (*Loader, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open engine database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping engine database: %w", err)
	}
	return &Loader{db: db}, nil
}

// New wraps an existing handle, used by tests
func New(db *sqlx.DB) *Loader {
	return &Loader{db: db}
}

// Close releases the underlying pool
func (l *Loader) Close() error {
	return l.db.Close()
}

// LoadApplication loads every definition belonging to an application into a
// fresh cache. Modules load first so that field modules can be indexed by
// their owning module's name.
func (l *Loader) LoadApplication(
	ctx context.Context, appID uuid.UUID,
) (*engine.Cache, error) {
	cache := engine.NewCache()

	if err := l.loadModules(ctx, cache, appID); err != nil {
		return nil, err
	}
	for _, step := range []func(context.Context, *engine.Cache, uuid.UUID) error{
		l.loadProcesses,
		l.loadCompares,
		l.loadCalculates,
		l.loadDatabases,
		l.loadDialogs,
		l.loadScreenFormats,
		l.loadFields,
	} {
		if err := step(ctx, cache, appID); err != nil {
			return nil, err
		}
	}
	return cache, nil
}

// ActiveDevices returns every device enabled for bootstrap
func (l *Loader) ActiveDevices(ctx context.Context) ([]*api.Device, error) {
	var devices []*api.Device
	err := l.db.SelectContext(ctx, &devices, `
		SELECT device_id, device_name, device_type, root_process_id, is_active
		FROM devices
		WHERE is_active = TRUE
		ORDER BY device_id`)
	if err != nil {
		return nil, fmt.Errorf("load devices: %w", err)
	}
	return devices, nil
}

func (l *Loader) loadModules(
	ctx context.Context, cache *engine.Cache, appID uuid.UUID,
) error {
	var modules []*api.Module
	err := l.db.SelectContext(ctx, &modules, `
		SELECT id, application_id, module_kind, version, name, description,
		       created_at, modified_at
		FROM modules
		WHERE application_id = $1`, appID)
	if err != nil {
		return fmt.Errorf("load modules: %w", err)
	}
	for _, m := range modules {
		cache.AddModule(m)
	}
	return nil
}

func (l *Loader) loadProcesses(
	ctx context.Context, cache *engine.Cache, appID uuid.UUID,
) error {
	var processes []*api.ProcessModule
	err := l.db.SelectContext(ctx, &processes, `
		SELECT p.module_id, p.subtype, p.remote, p.dynamic_call, p.comment
		FROM process_modules p
		JOIN modules m ON m.id = p.module_id
		WHERE m.application_id = $1`, appID)
	if err != nil {
		return fmt.Errorf("load processes: %w", err)
	}

	byID := make(map[uuid.UUID]*api.ProcessModule, len(processes))
	for _, p := range processes {
		byID[p.ID] = p
	}

	var steps []*api.ProcessStep
	err = l.db.SelectContext(ctx, &steps, `
		SELECT s.id, s.process_id, s.sequence, s.label_name, s.action_kind,
		       s.action_id, s.pass_label, s.fail_label, s.commented, s.comment
		FROM process_steps s
		JOIN modules m ON m.id = s.process_id
		WHERE m.application_id = $1
		ORDER BY s.process_id, s.sequence`, appID)
	if err != nil {
		return fmt.Errorf("load process steps: %w", err)
	}
	for _, s := range steps {
		if p, ok := byID[s.ProcessID]; ok {
			p.Steps = append(p.Steps, s)
		}
	}

	for _, p := range processes {
		cache.AddProcess(p)
	}
	return nil
}

type compareRow struct {
	ID          uuid.UUID `db:"module_id"`
	Operator    int       `db:"operator"`
	In1Constant bool      `db:"input1_constant"`
	In1FieldID  uuid.UUID `db:"input1_field_id"`
	In1Value    string    `db:"input1_value"`
	In2Constant bool      `db:"input2_constant"`
	In2FieldID  uuid.UUID `db:"input2_field_id"`
	In2Value    string    `db:"input2_value"`
}

func (l *Loader) loadCompares(
	ctx context.Context, cache *engine.Cache, appID uuid.UUID,
) error {
	var rows []compareRow
	err := l.db.SelectContext(ctx, &rows, `
		SELECT c.module_id, c.operator,
		       c.input1_constant, c.input1_field_id, c.input1_value,
		       c.input2_constant, c.input2_field_id, c.input2_value
		FROM compare_modules c
		JOIN modules m ON m.id = c.module_id
		WHERE m.application_id = $1`, appID)
	if err != nil {
		return fmt.Errorf("load compare modules: %w", err)
	}
	for _, r := range rows {
		cache.AddCompare(&api.CompareAction{
			ID:       r.ID,
			Operator: api.CompareOp(r.Operator),
			Input1: api.Operand{
				Constant: r.In1Constant,
				FieldID:  r.In1FieldID,
				Value:    r.In1Value,
			},
			Input2: api.Operand{
				Constant: r.In2Constant,
				FieldID:  r.In2FieldID,
				Value:    r.In2Value,
			},
		})
	}
	return nil
}

type calculateRow struct {
	ID          uuid.UUID `db:"id"`
	ModuleID    uuid.UUID `db:"module_id"`
	Sequence    int       `db:"sequence"`
	Operator    int       `db:"operator"`
	In1Constant bool      `db:"input1_constant"`
	In1FieldID  uuid.UUID `db:"input1_field_id"`
	In1Value    string    `db:"input1_value"`
	In2Constant bool      `db:"input2_constant"`
	In2FieldID  uuid.UUID `db:"input2_field_id"`
	In2Value    string    `db:"input2_value"`
	ResultField uuid.UUID `db:"result_field_id"`
}

func (l *Loader) loadCalculates(
	ctx context.Context, cache *engine.Cache, appID uuid.UUID,
) error {
	var rows []calculateRow
	err := l.db.SelectContext(ctx, &rows, `
		SELECT d.id, d.module_id, d.sequence, d.operator,
		       d.input1_constant, d.input1_field_id, d.input1_value,
		       d.input2_constant, d.input2_field_id, d.input2_value,
		       d.result_field_id
		FROM calculate_details d
		JOIN modules m ON m.id = d.module_id
		WHERE m.application_id = $1
		ORDER BY d.module_id, d.sequence`, appID)
	if err != nil {
		return fmt.Errorf("load calculate modules: %w", err)
	}

	byID := map[uuid.UUID]*api.CalculateAction{}
	for _, r := range rows {
		a, ok := byID[r.ModuleID]
		if !ok {
			a = &api.CalculateAction{ID: r.ModuleID}
			byID[r.ModuleID] = a
		}
		a.Details = append(a.Details, &api.CalculateDetail{
			ID:       r.ID,
			Sequence: r.Sequence,
			Operator: api.CalculateOp(r.Operator),
			Input1: api.Operand{
				Constant: r.In1Constant,
				FieldID:  r.In1FieldID,
				Value:    r.In1Value,
			},
			Input2: api.Operand{
				Constant: r.In2Constant,
				FieldID:  r.In2FieldID,
				Value:    r.In2Value,
			},
			ResultField: r.ResultField,
		})
	}
	for _, a := range byID {
		cache.AddCalculate(a)
	}
	return nil
}

type databaseRow struct {
	ID        uuid.UUID `db:"module_id"`
	Statement string    `db:"statement"`
}

func (l *Loader) loadDatabases(
	ctx context.Context, cache *engine.Cache, appID uuid.UUID,
) error {
	var rows []databaseRow
	err := l.db.SelectContext(ctx, &rows, `
		SELECT d.module_id, d.statement
		FROM database_modules d
		JOIN modules m ON m.id = d.module_id
		WHERE m.application_id = $1`, appID)
	if err != nil {
		return fmt.Errorf("load database modules: %w", err)
	}
	for _, r := range rows {
		cache.AddDatabase(&api.DatabaseAction{ID: r.ID, Statement: r.Statement})
	}
	return nil
}

type dialogRow struct {
	ID             uuid.UUID `db:"id"`
	ModuleID       uuid.UUID `db:"module_id"`
	ScreenGroup    int       `db:"screen_group"`
	ScreenFormatID uuid.UUID `db:"screen_format_id"`
	Reference      int       `db:"reference"`
	KeyEntry       bool      `db:"key_entry"`
}

func (l *Loader) loadDialogs(
	ctx context.Context, cache *engine.Cache, appID uuid.UUID,
) error {
	var rows []dialogRow
	err := l.db.SelectContext(ctx, &rows, `
		SELECT d.id, d.module_id, d.screen_group, d.screen_format_id,
		       d.reference, d.key_entry
		FROM dialog_details d
		JOIN modules m ON m.id = d.module_id
		WHERE m.application_id = $1
		ORDER BY d.module_id, d.screen_group`, appID)
	if err != nil {
		return fmt.Errorf("load dialog modules: %w", err)
	}

	byID := map[uuid.UUID]*api.DialogAction{}
	for _, r := range rows {
		a, ok := byID[r.ModuleID]
		if !ok {
			a = &api.DialogAction{ID: r.ModuleID}
			byID[r.ModuleID] = a
		}
		a.Details = append(a.Details, &api.DialogDetail{
			ID:             r.ID,
			ScreenGroup:    r.ScreenGroup,
			ScreenFormatID: r.ScreenFormatID,
			Reference:      r.Reference,
			KeyEntry:       r.KeyEntry,
		})
	}
	for _, a := range byID {
		cache.AddDialog(a)
	}
	return nil
}

type screenFormatRow struct {
	ID          uuid.UUID `db:"module_id"`
	ScreenGroup int       `db:"screen_group"`
	SoftKeyID   uuid.UUID `db:"soft_key_id"`
}

type screenDetailRow struct {
	ID       uuid.UUID `db:"id"`
	ModuleID uuid.UUID `db:"module_id"`
	Sequence int       `db:"sequence"`
	Usage    int       `db:"data_usage"`
	Kind     int       `db:"data_kind"`
	DataID   uuid.UUID `db:"data_id"`
	Format   string    `db:"format"`
	Row      int       `db:"screen_row"`
	Column   int       `db:"screen_column"`
	Width    int       `db:"width"`
	Height   int       `db:"height"`
	Echo     int       `db:"echo"`
	Overflow int       `db:"overflow"`
}

func (l *Loader) loadScreenFormats(
	ctx context.Context, cache *engine.Cache, appID uuid.UUID,
) error {
	var formats []screenFormatRow
	err := l.db.SelectContext(ctx, &formats, `
		SELECT f.module_id, f.screen_group, f.soft_key_id
		FROM screen_formats f
		JOIN modules m ON m.id = f.module_id
		WHERE m.application_id = $1`, appID)
	if err != nil {
		return fmt.Errorf("load screen formats: %w", err)
	}

	byID := make(map[uuid.UUID]*api.ScreenFormat, len(formats))
	for _, r := range formats {
		byID[r.ID] = &api.ScreenFormat{
			ID:          r.ID,
			ScreenGroup: r.ScreenGroup,
			SoftKeyID:   r.SoftKeyID,
		}
	}

	var details []screenDetailRow
	err = l.db.SelectContext(ctx, &details, `
		SELECT d.id, d.module_id, d.sequence, d.data_usage, d.data_kind,
		       d.data_id, d.format, d.screen_row, d.screen_column,
		       d.width, d.height, d.echo, d.overflow
		FROM screen_format_details d
		JOIN modules m ON m.id = d.module_id
		WHERE m.application_id = $1
		ORDER BY d.module_id, d.sequence`, appID)
	if err != nil {
		return fmt.Errorf("load screen format details: %w", err)
	}
	for _, r := range details {
		f, ok := byID[r.ModuleID]
		if !ok {
			continue
		}
		f.Details = append(f.Details, &api.ScreenFormatDetail{
			ID:       r.ID,
			Sequence: r.Sequence,
			Usage:    api.DataUsage(r.Usage),
			Kind:     api.DataKind(r.Kind),
			DataID:   r.DataID,
			Format:   r.Format,
			Row:      r.Row,
			Column:   r.Column,
			Width:    r.Width,
			Height:   r.Height,
			Echo:     r.Echo,
			Overflow: r.Overflow,
		})
	}
	for _, f := range byID {
		cache.AddScreenFormat(f)
	}
	return nil
}

type fieldRow struct {
	ID      uuid.UUID `db:"module_id"`
	Type    int       `db:"field_type"`
	Default string    `db:"default_value"`
}

func (l *Loader) loadFields(
	ctx context.Context, cache *engine.Cache, appID uuid.UUID,
) error {
	var rows []fieldRow
	err := l.db.SelectContext(ctx, &rows, `
		SELECT f.module_id, f.field_type, f.default_value
		FROM field_modules f
		JOIN modules m ON m.id = f.module_id
		WHERE m.application_id = $1`, appID)
	if err != nil {
		return fmt.Errorf("load field modules: %w", err)
	}
	for _, r := range rows {
		cache.AddField(&api.FieldModule{
			ID:      r.ID,
			Type:    api.FieldType(r.Type),
			Default: r.Default,
		})
	}
	return nil
}
