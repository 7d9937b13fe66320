package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/nestkeeper/nestkeeper/models"
)

// SQLiteStore implements Store using SQLite for persistence.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dbPath and ensures
// the schema exists. Pass ":memory:" for an ephemeral database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// DB exposes the underlying handle for components that need raw access.
func (s *SQLiteStore) DB() *sql.DB { return s.db }

// Close releases the database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// initSchema creates the database tables if they don't exist.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS homes (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		year_built INTEGER DEFAULT 0,
		home_type TEXT DEFAULT '',
		has_yard INTEGER DEFAULT 0,
		climate_zone TEXT DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS rooms (
		id TEXT PRIMARY KEY,
		home_id TEXT NOT NULL,
		name TEXT NOT NULL,
		type TEXT DEFAULT '',
		floor INTEGER DEFAULT 0,
		has_window INTEGER DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		FOREIGN KEY (home_id) REFERENCES homes(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS trackables (
		id TEXT PRIMARY KEY,
		home_id TEXT NOT NULL,
		room_id TEXT,
		name TEXT NOT NULL,
		type TEXT DEFAULT '',
		category TEXT DEFAULT '',
		brand TEXT DEFAULT '',
		model TEXT DEFAULT '',
		serial_number TEXT DEFAULT '',
		purchase_date TEXT,
		notes TEXT DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		FOREIGN KEY (home_id) REFERENCES homes(id) ON DELETE CASCADE,
		FOREIGN KEY (room_id) REFERENCES rooms(id) ON DELETE SET NULL
	);

	CREATE TABLE IF NOT EXISTS catalog_entries (
		id TEXT PRIMARY KEY,
		brand TEXT DEFAULT '',
		model TEXT DEFAULT '',
		type TEXT NOT NULL,
		category TEXT DEFAULT '',
		notes TEXT DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS rules (
		id TEXT PRIMARY KEY,
		key TEXT NOT NULL UNIQUE,
		scope TEXT NOT NULL,
		enabled INTEGER NOT NULL DEFAULT 1,
		template_seed TEXT NOT NULL,      -- JSON TemplateSeed
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS rule_conditions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		rule_id TEXT NOT NULL,
		ord INTEGER NOT NULL DEFAULT 0,
		target TEXT NOT NULL,
		field TEXT NOT NULL,
		operator TEXT NOT NULL,
		value TEXT DEFAULT '',
		value_set TEXT,                   -- JSON array of strings
		FOREIGN KEY (rule_id) REFERENCES rules(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS task_templates (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT DEFAULT '',
		category TEXT DEFAULT '',
		recurrence_interval TEXT DEFAULT '',
		criticality TEXT NOT NULL DEFAULT 'medium',
		can_defer INTEGER NOT NULL DEFAULT 1,
		defer_limit_days INTEGER DEFAULT 0,
		estimated_time_minutes INTEGER DEFAULT 0,
		estimated_cost REAL DEFAULT 0,
		can_be_outsourced INTEGER NOT NULL DEFAULT 0,
		steps TEXT,                       -- JSON array of strings
		equipment_needed TEXT,            -- JSON array of strings
		resources TEXT,                   -- JSON array of strings
		version INTEGER NOT NULL DEFAULT 1,
		state TEXT NOT NULL DEFAULT 'verified',
		changelog TEXT DEFAULT '',
		catalog_entry_id TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE(title, category, recurrence_interval),
		FOREIGN KEY (catalog_entry_id) REFERENCES catalog_entries(id) ON DELETE SET NULL
	);

	CREATE TABLE IF NOT EXISTS task_instances (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		home_id TEXT,
		room_id TEXT,
		trackable_id TEXT,
		template_id TEXT,
		source_type TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT DEFAULT '',
		due_date TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		recurrence_interval TEXT DEFAULT '',
		dedupe_key TEXT NOT NULL,
		source_template_version INTEGER DEFAULT 0,
		criticality TEXT DEFAULT 'medium',
		can_defer INTEGER NOT NULL DEFAULT 1,
		defer_limit_days INTEGER DEFAULT 0,
		estimated_time_minutes INTEGER DEFAULT 0,
		estimated_cost REAL DEFAULT 0,
		can_be_outsourced INTEGER NOT NULL DEFAULT 0,
		steps TEXT,
		equipment_needed TEXT,
		item_name TEXT DEFAULT '',
		location TEXT DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE(user_id, dedupe_key)
	);

	CREATE TABLE IF NOT EXISTS generation_issues (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		home_id TEXT,
		room_id TEXT,
		trackable_id TEXT,
		code TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'open',
		message TEXT DEFAULT '',
		debug_payload TEXT DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_rooms_home ON rooms(home_id);
	CREATE INDEX IF NOT EXISTS idx_trackables_home ON trackables(home_id);
	CREATE INDEX IF NOT EXISTS idx_rules_scope_enabled ON rules(scope, enabled);
	CREATE INDEX IF NOT EXISTS idx_rule_conditions_rule ON rule_conditions(rule_id, ord);
	CREATE INDEX IF NOT EXISTS idx_templates_catalog ON task_templates(catalog_entry_id);
	CREATE INDEX IF NOT EXISTS idx_instances_user ON task_instances(user_id);
	CREATE INDEX IF NOT EXISTS idx_issues_status ON generation_issues(status);
	`
	_, err := s.db.Exec(schema)
	return err
}

// --- helpers ---

func fmtTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func marshalList(items []string) string {
	if items == nil {
		items = []string{}
	}
	b, _ := json.Marshal(items)
	return string(b)
}

func unmarshalList(s sql.NullString) []string {
	if !s.Valid || s.String == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(s.String), &out); err != nil {
		return nil
	}
	return out
}

func nullStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func strPtr(s sql.NullString) *string {
	if !s.Valid || s.String == "" {
		return nil
	}
	v := s.String
	return &v
}

// --- scope entities ---

func (s *SQLiteStore) CreateHome(ctx context.Context, h *models.Home) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO homes (id, user_id, name, year_built, home_type, has_yard, climate_zone, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, h.ID, h.UserID, h.Name, h.YearBuilt, h.HomeType, h.HasYard, h.ClimZone, fmtTime(h.CreatedAt), fmtTime(h.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create home: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetHome(ctx context.Context, id string) (*models.Home, error) {
	var h models.Home
	var created, updated string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, year_built, home_type, has_yard, climate_zone, created_at, updated_at
		FROM homes WHERE id = ?
	`, id).Scan(&h.ID, &h.UserID, &h.Name, &h.YearBuilt, &h.HomeType, &h.HasYard, &h.ClimZone, &created, &updated)
	if err != nil {
		return nil, fmt.Errorf("get home %s: %w", id, err)
	}
	h.CreatedAt, h.UpdatedAt = parseTime(created), parseTime(updated)
	return &h, nil
}

func (s *SQLiteStore) CreateRoom(ctx context.Context, r *models.Room) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rooms (id, home_id, name, type, floor, has_window, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.HomeID, r.Name, r.Type, r.Floor, r.HasWindow, fmtTime(r.CreatedAt), fmtTime(r.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create room: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	var r models.Room
	var created, updated string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, home_id, name, type, floor, has_window, created_at, updated_at
		FROM rooms WHERE id = ?
	`, id).Scan(&r.ID, &r.HomeID, &r.Name, &r.Type, &r.Floor, &r.HasWindow, &created, &updated)
	if err != nil {
		return nil, fmt.Errorf("get room %s: %w", id, err)
	}
	r.CreatedAt, r.UpdatedAt = parseTime(created), parseTime(updated)
	return &r, nil
}

func (s *SQLiteStore) CreateTrackable(ctx context.Context, tr *models.Trackable) error {
	var purchase any
	if tr.PurchaseDate != nil {
		purchase = fmtTime(*tr.PurchaseDate)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trackables (id, home_id, room_id, name, type, category, brand, model, serial_number, purchase_date, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, tr.ID, tr.HomeID, nullStr(tr.RoomID), tr.Name, tr.Type, tr.Category, tr.Brand, tr.Model, tr.SerialNumber, purchase, tr.Notes, fmtTime(tr.CreatedAt), fmtTime(tr.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create trackable: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetTrackable(ctx context.Context, id string) (*models.Trackable, error) {
	var tr models.Trackable
	var roomID, purchase sql.NullString
	var created, updated string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, home_id, room_id, name, type, category, brand, model, serial_number, purchase_date, notes, created_at, updated_at
		FROM trackables WHERE id = ?
	`, id).Scan(&tr.ID, &tr.HomeID, &roomID, &tr.Name, &tr.Type, &tr.Category, &tr.Brand, &tr.Model, &tr.SerialNumber, &purchase, &tr.Notes, &created, &updated)
	if err != nil {
		return nil, fmt.Errorf("get trackable %s: %w", id, err)
	}
	tr.RoomID = strPtr(roomID)
	if purchase.Valid && purchase.String != "" {
		t := parseTime(purchase.String)
		if !t.IsZero() {
			tr.PurchaseDate = &t
		}
	}
	tr.CreatedAt, tr.UpdatedAt = parseTime(created), parseTime(updated)
	return &tr, nil
}

// --- rules ---

func (s *SQLiteStore) ReplaceRule(ctx context.Context, r *models.Rule) error {
	seed, err := json.Marshal(r.TemplateSeed)
	if err != nil {
		return fmt.Errorf("marshal template seed: %w", err)
	}
	// Imported pack rules carry no id; the key is their identity.
	if r.ID == "" {
		r.ID = uuid.NewString()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace rule: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := fmtTime(time.Now())
	_, err = tx.ExecContext(ctx, `
		INSERT INTO rules (id, key, scope, enabled, template_seed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			scope = excluded.scope,
			enabled = excluded.enabled,
			template_seed = excluded.template_seed,
			updated_at = excluded.updated_at
	`, r.ID, r.Key, r.Scope, r.Enabled, string(seed), now, now)
	if err != nil {
		return fmt.Errorf("upsert rule %s: %w", r.Key, err)
	}

	// The conflict path keeps the existing row id; re-read it so the
	// condition rows attach to the right parent.
	var ruleID string
	if err := tx.QueryRowContext(ctx, `SELECT id FROM rules WHERE key = ?`, r.Key).Scan(&ruleID); err != nil {
		return fmt.Errorf("reselect rule %s: %w", r.Key, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM rule_conditions WHERE rule_id = ?`, ruleID); err != nil {
		return fmt.Errorf("clear conditions for %s: %w", r.Key, err)
	}
	for _, c := range r.Conditions {
		var valueSet any
		if len(c.ValueSet) > 0 {
			valueSet = marshalList(c.ValueSet)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO rule_conditions (rule_id, ord, target, field, operator, value, value_set)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, ruleID, c.Order, c.Target, c.Field, c.Operator, c.Value, valueSet)
		if err != nil {
			return fmt.Errorf("insert condition for %s: %w", r.Key, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) ListEnabledRules(ctx context.Context, scope models.RuleScope) ([]models.Rule, error) {
	return s.listRules(ctx, `WHERE enabled = 1 AND scope = ?`, scope)
}

func (s *SQLiteStore) ListRules(ctx context.Context) ([]models.Rule, error) {
	return s.listRules(ctx, ``)
}

func (s *SQLiteStore) listRules(ctx context.Context, where string, args ...any) ([]models.Rule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, key, scope, enabled, template_seed, created_at, updated_at
		FROM rules `+where+` ORDER BY key
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()

	var out []models.Rule
	index := map[string]int{}
	for rows.Next() {
		var r models.Rule
		var seed, created, updated string
		if err := rows.Scan(&r.ID, &r.Key, &r.Scope, &r.Enabled, &seed, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		if err := json.Unmarshal([]byte(seed), &r.TemplateSeed); err != nil {
			return nil, fmt.Errorf("unmarshal seed for %s: %w", r.Key, err)
		}
		r.CreatedAt, r.UpdatedAt = parseTime(created), parseTime(updated)
		index[r.ID] = len(out)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rules: %w", err)
	}
	if len(out) == 0 {
		return out, nil
	}

	condRows, err := s.db.QueryContext(ctx, `
		SELECT rule_id, ord, target, field, operator, value, value_set
		FROM rule_conditions ORDER BY rule_id, ord
	`)
	if err != nil {
		return nil, fmt.Errorf("list conditions: %w", err)
	}
	defer condRows.Close()
	for condRows.Next() {
		var ruleID string
		var c models.Condition
		var valueSet sql.NullString
		if err := condRows.Scan(&ruleID, &c.Order, &c.Target, &c.Field, &c.Operator, &c.Value, &valueSet); err != nil {
			return nil, fmt.Errorf("scan condition: %w", err)
		}
		c.ValueSet = unmarshalList(valueSet)
		if i, ok := index[ruleID]; ok {
			out[i].Conditions = append(out[i].Conditions, c)
		}
	}
	if err := condRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conditions: %w", err)
	}
	return out, nil
}

// --- task templates ---

const templateColumns = `id, title, description, category, recurrence_interval, criticality,
	can_defer, defer_limit_days, estimated_time_minutes, estimated_cost, can_be_outsourced,
	steps, equipment_needed, resources, version, state, changelog, catalog_entry_id, created_at, updated_at`

func (s *SQLiteStore) scanTemplate(row interface{ Scan(...any) error }) (*models.TaskTemplate, error) {
	var t models.TaskTemplate
	var steps, equipment, resources, catalogID sql.NullString
	var created, updated string
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Category, &t.RecurrenceInterval, &t.Criticality,
		&t.CanDefer, &t.DeferLimitDays, &t.EstimatedTimeMin, &t.EstimatedCost, &t.CanBeOutsourced,
		&steps, &equipment, &resources, &t.Version, &t.State, &t.Changelog, &catalogID, &created, &updated)
	if err != nil {
		return nil, err
	}
	t.Steps = unmarshalList(steps)
	t.EquipmentNeeded = unmarshalList(equipment)
	t.Resources = unmarshalList(resources)
	t.CatalogEntryID = strPtr(catalogID)
	t.CreatedAt, t.UpdatedAt = parseTime(created), parseTime(updated)
	return &t, nil
}

func (s *SQLiteStore) GetTemplateByIdentity(ctx context.Context, title, category, recurrenceInterval string) (*models.TaskTemplate, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+templateColumns+` FROM task_templates
		WHERE title = ? AND category = ? AND recurrence_interval = ?
	`, title, category, recurrenceInterval)
	t, err := s.scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get template by identity: %w", err)
	}
	return t, nil
}

func (s *SQLiteStore) CreateTemplate(ctx context.Context, t *models.TaskTemplate) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO task_templates (`+templateColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.Title, t.Description, t.Category, t.RecurrenceInterval, t.Criticality,
		t.CanDefer, t.DeferLimitDays, t.EstimatedTimeMin, t.EstimatedCost, t.CanBeOutsourced,
		marshalList(t.Steps), marshalList(t.EquipmentNeeded), marshalList(t.Resources),
		t.Version, t.State, t.Changelog, nullStr(t.CatalogEntryID), fmtTime(t.CreatedAt), fmtTime(t.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create template: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateTemplate(ctx context.Context, t *models.TaskTemplate) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE task_templates SET
			title = ?, description = ?, category = ?, recurrence_interval = ?, criticality = ?,
			can_defer = ?, defer_limit_days = ?, estimated_time_minutes = ?, estimated_cost = ?,
			can_be_outsourced = ?, steps = ?, equipment_needed = ?, resources = ?,
			version = ?, state = ?, changelog = ?, catalog_entry_id = ?, updated_at = ?
		WHERE id = ?
	`, t.Title, t.Description, t.Category, t.RecurrenceInterval, t.Criticality,
		t.CanDefer, t.DeferLimitDays, t.EstimatedTimeMin, t.EstimatedCost,
		t.CanBeOutsourced, marshalList(t.Steps), marshalList(t.EquipmentNeeded), marshalList(t.Resources),
		t.Version, t.State, t.Changelog, nullStr(t.CatalogEntryID), fmtTime(time.Now()), t.ID)
	if err != nil {
		return fmt.Errorf("update template %s: %w", t.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update template %s: not found", t.ID)
	}
	return nil
}

func (s *SQLiteStore) ListTemplates(ctx context.Context) ([]models.TaskTemplate, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+templateColumns+` FROM task_templates ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()
	var out []models.TaskTemplate
	for rows.Next() {
		t, err := s.scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// --- catalog ---

func (s *SQLiteStore) CreateCatalogEntry(ctx context.Context, e *models.CatalogEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO catalog_entries (id, brand, model, type, category, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Brand, e.Model, e.Type, e.Category, e.Notes, fmtTime(e.CreatedAt), fmtTime(e.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create catalog entry: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetCatalogEntry(ctx context.Context, id string) (*models.CatalogEntry, error) {
	var e models.CatalogEntry
	var created, updated string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, brand, model, type, category, notes, created_at, updated_at
		FROM catalog_entries WHERE id = ?
	`, id).Scan(&e.ID, &e.Brand, &e.Model, &e.Type, &e.Category, &e.Notes, &created, &updated)
	if err != nil {
		return nil, fmt.Errorf("get catalog entry %s: %w", id, err)
	}
	e.CreatedAt, e.UpdatedAt = parseTime(created), parseTime(updated)
	return &e, nil
}

func (s *SQLiteStore) CountTemplatesForCatalog(ctx context.Context, entryID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM task_templates WHERE catalog_entry_id = ?`, entryID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count templates for catalog %s: %w", entryID, err)
	}
	return n, nil
}

// --- task instances ---

// UpsertTaskInstance performs a single atomic upsert on (user_id,
// dedupe_key). Correctness under concurrent triggers rests entirely on
// the UNIQUE constraint: either writer may win the insert, the other
// lands on the update path, and two rows can never exist. The update
// path refreshes the due date and every template-copied field but never
// resurrects archived or paused instances.
func (s *SQLiteStore) UpsertTaskInstance(ctx context.Context, inst *models.TaskInstance) (bool, error) {
	var existing int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM task_instances WHERE user_id = ? AND dedupe_key = ?
	`, inst.UserID, inst.DedupeKey).Scan(&existing)
	if err != nil {
		return false, fmt.Errorf("check existing instance: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO task_instances (
			id, user_id, home_id, room_id, trackable_id, template_id, source_type,
			title, description, due_date, status, recurrence_interval, dedupe_key,
			source_template_version, criticality, can_defer, defer_limit_days,
			estimated_time_minutes, estimated_cost, can_be_outsourced,
			steps, equipment_needed, item_name, location, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, dedupe_key) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			due_date = excluded.due_date,
			status = CASE
				WHEN task_instances.status IN ('archived', 'paused') THEN task_instances.status
				ELSE 'pending'
			END,
			recurrence_interval = excluded.recurrence_interval,
			source_template_version = excluded.source_template_version,
			criticality = excluded.criticality,
			can_defer = excluded.can_defer,
			defer_limit_days = excluded.defer_limit_days,
			estimated_time_minutes = excluded.estimated_time_minutes,
			estimated_cost = excluded.estimated_cost,
			can_be_outsourced = excluded.can_be_outsourced,
			steps = excluded.steps,
			equipment_needed = excluded.equipment_needed,
			item_name = excluded.item_name,
			location = excluded.location,
			updated_at = excluded.updated_at
	`, inst.ID, inst.UserID, nullStr(inst.HomeID), nullStr(inst.RoomID), nullStr(inst.TrackableID),
		nullStr(inst.TemplateID), inst.SourceType, inst.Title, inst.Description,
		fmtTime(inst.DueDate), inst.Status, inst.RecurrenceInterval, inst.DedupeKey,
		inst.SourceTemplateVersion, inst.Criticality, inst.CanDefer, inst.DeferLimitDays,
		inst.EstimatedTimeMin, inst.EstimatedCost, inst.CanBeOutsourced,
		marshalList(inst.Steps), marshalList(inst.EquipmentNeeded), inst.ItemName, inst.Location,
		fmtTime(inst.CreatedAt), fmtTime(inst.UpdatedAt))
	if err != nil {
		return false, fmt.Errorf("upsert task instance: %w", err)
	}
	return existing == 0, nil
}

const instanceColumns = `id, user_id, home_id, room_id, trackable_id, template_id, source_type,
	title, description, due_date, status, recurrence_interval, dedupe_key,
	source_template_version, criticality, can_defer, defer_limit_days,
	estimated_time_minutes, estimated_cost, can_be_outsourced,
	steps, equipment_needed, item_name, location, created_at, updated_at`

func (s *SQLiteStore) scanInstance(row interface{ Scan(...any) error }) (*models.TaskInstance, error) {
	var t models.TaskInstance
	var homeID, roomID, trackableID, templateID, steps, equipment sql.NullString
	var due, created, updated string
	err := row.Scan(&t.ID, &t.UserID, &homeID, &roomID, &trackableID, &templateID, &t.SourceType,
		&t.Title, &t.Description, &due, &t.Status, &t.RecurrenceInterval, &t.DedupeKey,
		&t.SourceTemplateVersion, &t.Criticality, &t.CanDefer, &t.DeferLimitDays,
		&t.EstimatedTimeMin, &t.EstimatedCost, &t.CanBeOutsourced,
		&steps, &equipment, &t.ItemName, &t.Location, &created, &updated)
	if err != nil {
		return nil, err
	}
	t.HomeID, t.RoomID, t.TrackableID, t.TemplateID = strPtr(homeID), strPtr(roomID), strPtr(trackableID), strPtr(templateID)
	t.Steps = unmarshalList(steps)
	t.EquipmentNeeded = unmarshalList(equipment)
	t.DueDate = parseTime(due)
	t.CreatedAt, t.UpdatedAt = parseTime(created), parseTime(updated)
	return &t, nil
}

func (s *SQLiteStore) GetTaskInstanceByDedupeKey(ctx context.Context, userID, dedupeKey string) (*models.TaskInstance, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+instanceColumns+` FROM task_instances WHERE user_id = ? AND dedupe_key = ?
	`, userID, dedupeKey)
	t, err := s.scanInstance(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get instance by dedupe key: %w", err)
	}
	return t, nil
}

func (s *SQLiteStore) ListTaskInstances(ctx context.Context, userID string) ([]models.TaskInstance, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+instanceColumns+` FROM task_instances WHERE user_id = ? ORDER BY due_date, title
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list instances: %w", err)
	}
	defer rows.Close()
	var out []models.TaskInstance
	for rows.Next() {
		t, err := s.scanInstance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan instance: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// --- generation issues ---

func (s *SQLiteStore) CreateIssue(ctx context.Context, iss *models.GenerationIssue) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO generation_issues (id, user_id, home_id, room_id, trackable_id, code, status, message, debug_payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, iss.ID, iss.UserID, nullStr(iss.HomeID), nullStr(iss.RoomID), nullStr(iss.TrackableID),
		iss.Code, iss.Status, iss.Message, iss.DebugPayload, fmtTime(iss.CreatedAt))
	if err != nil {
		return fmt.Errorf("create issue: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListIssues(ctx context.Context, status models.IssueStatus) ([]models.GenerationIssue, error) {
	query := `SELECT id, user_id, home_id, room_id, trackable_id, code, status, message, debug_payload, created_at
		FROM generation_issues`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	defer rows.Close()
	var out []models.GenerationIssue
	for rows.Next() {
		var iss models.GenerationIssue
		var homeID, roomID, trackableID sql.NullString
		var created string
		if err := rows.Scan(&iss.ID, &iss.UserID, &homeID, &roomID, &trackableID, &iss.Code, &iss.Status, &iss.Message, &iss.DebugPayload, &created); err != nil {
			return nil, fmt.Errorf("scan issue: %w", err)
		}
		iss.HomeID, iss.RoomID, iss.TrackableID = strPtr(homeID), strPtr(roomID), strPtr(trackableID)
		iss.CreatedAt = parseTime(created)
		out = append(out, iss)
	}
	return out, rows.Err()
}
