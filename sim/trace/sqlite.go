package trace

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
)

var schema = []string{
	`create table block
	(
		height                    integer not null primary key,
		time                      float   not null,
		block_time                float   not null,
		transactions              integer not null,
		hash_rate                 float   not null,
		difficulty                float   not null,
		footprint_per_second      float   not null,
		footprint_per_block       float   not null,
		footprint_per_transaction float   not null
	);`,
	`create table retarget
	(
		height         integer not null,
		time           float   not null,
		elapsed        float   not null,
		old_difficulty float   not null,
		new_difficulty float   not null,
		mode           varchar(16) not null
	);`,
	`create table hash_rate
	(
		time          float   not null,
		old_hash_rate float   not null,
		new_hash_rate float   not null,
		coefficient   float   not null,
		floored       boolean not null
	);`,
	`create table intensity
	(
		time      float not null,
		intensity float not null
	);`,
	`create index retarget_time_index on retarget (time);`,
	`create index hash_rate_time_index on hash_rate (time);`,
}

// WriteSQLite stores the trace in a new SQLite database at path.
// It refuses to overwrite an existing file, and removes the file again when
// writing fails.
func WriteSQLite(path string, st *SimulationTrace) error {
	if st == nil {
		return errors.New("trace: nil trace")
	}
	if _, statErr := os.Stat(path); statErr == nil {
		return fmt.Errorf("trace: file %s already exists", path)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("trace: opening %s: %w", path, err)
	}
	err = writeTrace(db, st)
	if closeErr := db.Close(); closeErr != nil && err == nil {
		err = fmt.Errorf("trace: closing %s: %w", path, closeErr)
	}
	if err != nil {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			return errors.Join(err, fmt.Errorf("trace: removing %s: %w", path, rmErr))
		}
		return err
	}
	return nil
}

func writeTrace(db *sql.DB, st *SimulationTrace) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("trace: creating schema: %w", err)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("trace: begin: %w", err)
	}
	if err := insertAll(tx, st); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("trace: commit: %w", err)
	}
	return nil
}

func insertAll(tx *sql.Tx, st *SimulationTrace) error {
	err := insertRows(tx, `insert into block values (?, ?, ?, ?, ?, ?, ?, ?, ?)`, len(st.Blocks),
		func(i int) []any {
			b := st.Blocks[i]
			return []any{b.Height, b.Time, b.BlockTime, b.Transactions, b.HashRate, b.Difficulty,
				b.FootprintPerSecond, b.FootprintPerBlock, b.FootprintPerTransaction}
		})
	if err != nil {
		return err
	}
	err = insertRows(tx, `insert into retarget values (?, ?, ?, ?, ?, ?)`, len(st.Retargets),
		func(i int) []any {
			r := st.Retargets[i]
			return []any{r.Height, r.Time, r.Elapsed, r.OldDifficulty, r.NewDifficulty, r.Mode}
		})
	if err != nil {
		return err
	}
	err = insertRows(tx, `insert into hash_rate values (?, ?, ?, ?, ?)`, len(st.HashRates),
		func(i int) []any {
			h := st.HashRates[i]
			return []any{h.Time, h.OldHashRate, h.NewHashRate, h.Coefficient, h.Floored}
		})
	if err != nil {
		return err
	}
	return insertRows(tx, `insert into intensity values (?, ?)`, len(st.Intensities),
		func(i int) []any {
			r := st.Intensities[i]
			return []any{r.Time, r.Intensity}
		})
}

func insertRows(tx *sql.Tx, query string, n int, row func(i int) []any) error {
	if n == 0 {
		return nil
	}
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("trace: prepare %q: %w", query, err)
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if _, err := stmt.Exec(row(i)...); err != nil {
			return fmt.Errorf("trace: insert row %d: %w", i, err)
		}
	}
	return nil
}

// ReadSQLite loads a trace written by WriteSQLite.
func ReadSQLite(path string, level TraceLevel) (*SimulationTrace, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("trace: %w", err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("trace: opening %s: %w", path, err)
	}
	defer db.Close()

	st := NewSimulationTrace(level)

	err = queryRows(db, `select height, time, block_time, transactions, hash_rate, difficulty,
		footprint_per_second, footprint_per_block, footprint_per_transaction from block order by height`,
		func(rows *sql.Rows) error {
			var b BlockRecord
			if err := rows.Scan(&b.Height, &b.Time, &b.BlockTime, &b.Transactions, &b.HashRate, &b.Difficulty,
				&b.FootprintPerSecond, &b.FootprintPerBlock, &b.FootprintPerTransaction); err != nil {
				return err
			}
			st.Blocks = append(st.Blocks, b)
			return nil
		})
	if err != nil {
		return nil, err
	}

	err = queryRows(db, `select height, time, elapsed, old_difficulty, new_difficulty, mode from retarget order by rowid`,
		func(rows *sql.Rows) error {
			var r RetargetRecord
			if err := rows.Scan(&r.Height, &r.Time, &r.Elapsed, &r.OldDifficulty, &r.NewDifficulty, &r.Mode); err != nil {
				return err
			}
			st.Retargets = append(st.Retargets, r)
			return nil
		})
	if err != nil {
		return nil, err
	}

	err = queryRows(db, `select time, old_hash_rate, new_hash_rate, coefficient, floored from hash_rate order by rowid`,
		func(rows *sql.Rows) error {
			var h HashRateRecord
			if err := rows.Scan(&h.Time, &h.OldHashRate, &h.NewHashRate, &h.Coefficient, &h.Floored); err != nil {
				return err
			}
			st.HashRates = append(st.HashRates, h)
			return nil
		})
	if err != nil {
		return nil, err
	}

	err = queryRows(db, `select time, intensity from intensity order by rowid`,
		func(rows *sql.Rows) error {
			var r IntensityRecord
			if err := rows.Scan(&r.Time, &r.Intensity); err != nil {
				return err
			}
			st.Intensities = append(st.Intensities, r)
			return nil
		})
	if err != nil {
		return nil, err
	}
	return st, nil
}

func queryRows(db *sql.DB, query string, scan func(rows *sql.Rows) error) error {
	rows, err := db.Query(query)
	if err != nil {
		return fmt.Errorf("trace: query: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("trace: scan: %w", err)
		}
	}
	return rows.Err()
}
