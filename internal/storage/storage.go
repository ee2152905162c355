package storage

import (
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"telegram-quit-diary/internal/models"
)

//go:embed schema.sql
var ddl embed.FS

type DB struct{ *sql.DB }

func New(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, err
	}
	if err = migrate(db); err != nil {
		return nil, err
	}
	return &DB{db}, nil
}

func migrate(db *sql.DB) error {
	b, err := ddl.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = db.Exec(string(b))
	return err
}

// ---------- smoking events ---------------------------------------------------

// InsertSmokingEvent appends one relapse to the log. A blank ID gets a fresh
// uuid. The log has no update or delete path.
func (d *DB) InsertSmokingEvent(e *models.SmokingEvent) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := d.Exec(`
        INSERT INTO smoking_events (id, chat_id, ts, trigger_type, location, mood, notes)
        VALUES (?,?,?,?,?,?,?)
    `, e.ID, e.ChatID, e.Timestamp.Unix(), string(e.Trigger), e.Location, string(e.Mood), e.Notes)
	return err
}

// SmokingEvents returns every relapse for the chat in insertion order.
// A read failure degrades to an empty log rather than killing the bot.
func (d *DB) SmokingEvents(chatID int64) ([]models.SmokingEvent, error) {
	rows, err := d.Query(`
        SELECT id, chat_id, ts, trigger_type, location, mood, notes
        FROM smoking_events WHERE chat_id=? ORDER BY rowid
    `, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []models.SmokingEvent
	for rows.Next() {
		var e models.SmokingEvent
		var ts int64
		var trigger, mood string
		if err := rows.Scan(&e.ID, &e.ChatID, &ts, &trigger, &e.Location, &mood, &e.Notes); err != nil {
			return nil, err
		}
		e.Timestamp = time.Unix(ts, 0)
		e.Trigger = models.TriggerType(trigger)
		e.Mood = models.MoodType(mood)
		res = append(res, e)
	}
	return res, rows.Err()
}

// SmokingEventCount is the all-time relapse count for the chat.
func (d *DB) SmokingEventCount(chatID int64) (int, error) {
	var c int
	err := d.QueryRow(`SELECT COUNT(*) FROM smoking_events WHERE chat_id=?`, chatID).Scan(&c)
	return c, err
}

// ---------- cravings ---------------------------------------------------------

// InsertCraving appends one craving episode to the log.
func (d *DB) InsertCraving(e *models.CravingEvent) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := d.Exec(`
        INSERT INTO cravings (id, chat_id, ts, intensity, duration_secs, coping, successful)
        VALUES (?,?,?,?,?,?,?)
    `, e.ID, e.ChatID, e.Timestamp.Unix(), e.Intensity, e.DurationSecs, e.CopingStrategy, boolToInt(e.WasSuccessful))
	return err
}

// Cravings returns every craving for the chat in insertion order.
func (d *DB) Cravings(chatID int64) ([]models.CravingEvent, error) {
	rows, err := d.Query(`
        SELECT id, chat_id, ts, intensity, duration_secs, coping, successful
        FROM cravings WHERE chat_id=? ORDER BY rowid
    `, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []models.CravingEvent
	for rows.Next() {
		var e models.CravingEvent
		var ts int64
		var successful int
		if err := rows.Scan(&e.ID, &e.ChatID, &ts, &e.Intensity, &e.DurationSecs, &e.CopingStrategy, &successful); err != nil {
			return nil, err
		}
		e.Timestamp = time.Unix(ts, 0)
		e.WasSuccessful = successful == 1
		res = append(res, e)
	}
	return res, rows.Err()
}

// ---------- settings ---------------------------------------------------------

// GetSettings returns the chat's configuration. A missing row yields the
// defaults (quit date = now); malformed or zero numeric fields fall back
// per-field so a damaged row never makes the bot unusable.
func (d *DB) GetSettings(chatID int64, now time.Time) (*models.Settings, error) {
	var s models.Settings
	err := d.QueryRow(`
        SELECT chat_id, quit_date, cigarettes_per_day, price_per_pack, cigarettes_per_pack, tz
        FROM settings WHERE chat_id=?
    `, chatID).Scan(&s.ChatID, &s.QuitDate, &s.CigarettesPerDay, &s.PricePerPack, &s.CigarettesPerPack, &s.TZ)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DefaultSettings(chatID, now), nil
	}
	if err != nil {
		return models.DefaultSettings(chatID, now), err
	}
	if s.QuitDate == 0 {
		s.QuitDate = now.Unix()
	}
	if s.CigarettesPerDay == 0 {
		s.CigarettesPerDay = models.DefaultCigarettesPerDay
	}
	if s.PricePerPack == 0 {
		s.PricePerPack = models.DefaultPricePerPack
	}
	if s.CigarettesPerPack == 0 {
		s.CigarettesPerPack = models.DefaultCigarettesPerPack
	}
	if s.TZ == "" {
		s.TZ = models.DefaultTZ
	}
	return &s, nil
}

// UpsertSettings writes the whole configuration row in one statement, so a
// concurrent reader sees either the old row or the new one, never a mix.
func (d *DB) UpsertSettings(s *models.Settings) error {
	_, err := d.Exec(`
        INSERT INTO settings (chat_id, quit_date, cigarettes_per_day, price_per_pack, cigarettes_per_pack, tz)
        VALUES (?,?,?,?,?,?)
        ON CONFLICT(chat_id) DO UPDATE SET
            quit_date=excluded.quit_date,
            cigarettes_per_day=excluded.cigarettes_per_day,
            price_per_pack=excluded.price_per_pack,
            cigarettes_per_pack=excluded.cigarettes_per_pack,
            tz=excluded.tz
    `, s.ChatID, s.QuitDate, s.CigarettesPerDay, s.PricePerPack, s.CigarettesPerPack, s.TZ)
	return err
}

// ---------- conversation state (fsm) ------------------------------------------

func (d *DB) SetUserState(chatID int64, state models.State) error {
	_, err := d.Exec(`
        INSERT INTO user_states(chat_id, state) VALUES (?,?)
        ON CONFLICT(chat_id) DO UPDATE SET state=excluded.state`, chatID, string(state))
	return err
}

func (d *DB) GetUserState(chatID int64) (models.State, error) {
	var st string
	err := d.QueryRow(`SELECT state FROM user_states WHERE chat_id=?`, chatID).Scan(&st)
	if errors.Is(err, sql.ErrNoRows) {
		return models.StateIdle, nil
	}
	return models.State(st), err
}

// ---------- drafts -------------------------------------------------------------

// Draft holds the fields collected so far during a multi-step logging flow.
type Draft struct {
	Trigger   models.TriggerType `json:"trigger,omitempty"`
	Mood      models.MoodType    `json:"mood,omitempty"`
	Location  string             `json:"location,omitempty"`
	Intensity int                `json:"intensity,omitempty"`
	Smoked    bool               `json:"smoked,omitempty"`
	StartedAt int64              `json:"started_at,omitempty"`
	EndedAt   int64              `json:"ended_at,omitempty"`
}

func (d *DB) SetDraft(chatID int64, draft *Draft) error {
	b, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	_, err = d.Exec(`
        INSERT INTO drafts(chat_id, data) VALUES (?,?)
        ON CONFLICT(chat_id) DO UPDATE SET data=excluded.data`, chatID, string(b))
	return err
}

func (d *DB) GetDraft(chatID int64) (*Draft, error) {
	var raw string
	err := d.QueryRow(`SELECT data FROM drafts WHERE chat_id=?`, chatID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return &Draft{}, nil
	}
	if err != nil {
		return nil, err
	}
	var draft Draft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		return &Draft{}, nil // corrupted draft -> start over
	}
	return &draft, nil
}

// ---------- maintenance --------------------------------------------------------

// ClearData wipes everything stored for the chat.
func (d *DB) ClearData(chatID int64) error {
	tx, err := d.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	tables := []string{
		"smoking_events",
		"cravings",
		"settings",
		"user_states",
		"drafts",
	}
	for _, tbl := range tables {
		if _, err := tx.Exec("DELETE FROM "+tbl+" WHERE chat_id = ?", chatID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
