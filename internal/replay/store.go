package replay

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store keeps play histories in a sqlite database.
type Store struct {
	db *sql.DB
}

func (s *Store) Init(path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("unable to open replay database: %w", err)
	}

	initStatement := `
	create table if not exists replays
	  (
		  id integer not null primary key,
		  sum text,
		  events bytearray
	  );
	`
	if _, err = db.Exec(initStatement); nil != err {
		db.Close()
		return fmt.Errorf("unable to create replay table: %w", err)
	}

	s.db = db
	return nil
}

func (s *Store) Deinit() {
	if nil != s.db {
		s.db.Close()
	}
}

// Save stores one play against the chart identified by sum.
func (s *Store) Save(sum string, events []Event) error {
	data, err := json.Marshal(compactEvents(events))
	if nil != err {
		return fmt.Errorf("unable to marshal events: %w", err)
	}
	_, err = s.db.Exec("insert into replays(sum, events) values(?, ?)", sum, data)
	if nil != err {
		return fmt.Errorf("unable to save replay: %w", err)
	}
	return nil
}

// Load returns every stored play for the chart identified by sum,
// events ordered by time.
func (s *Store) Load(sum string) ([]History, error) {
	histories := []History{}
	rows, err := s.db.Query("select id, sum, events from replays where sum = ?", sum)
	if nil != err {
		if err == sql.ErrNoRows {
			return histories, nil
		}
		return nil, fmt.Errorf("unable to load replays: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var h History
		var data []byte
		if err := rows.Scan(&h.ID, &h.Sum, &data); nil != err {
			return nil, fmt.Errorf("unable to scan replay row: %w", err)
		}
		var compact []EventsCompact
		if err := json.Unmarshal(data, &compact); nil != err {
			return nil, fmt.Errorf("unable to unmarshal replay %d: %w", h.ID, err)
		}
		h.Events = uncompactEvents(compact)
		histories = append(histories, h)
	}
	return histories, rows.Err()
}
