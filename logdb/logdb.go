// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package logdb stores the events raised by committed calls in sqlite.
package logdb

import (
	"context"
	"database/sql"
	"fmt"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/vechain/stakemint/thor"
	"github.com/vechain/stakemint/tx"
)

type LogDB struct {
	path          string
	db            *sql.DB
	driverVersion string
}

// New create or open log db at given path.
func New(path string) (logDB *LogDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			db.Close()
		}
	}()
	// a single connection keeps in-memory databases shared
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, errors.Wrap(err, "create schema")
	}

	driverVer, _, _ := sqlite3.Version()
	return &LogDB{
		path,
		db,
		driverVer,
	}, nil
}

// NewMem create a log db in ram.
func NewMem() (*LogDB, error) {
	return New(":memory:")
}

// Close close the log db.
func (db *LogDB) Close() error {
	return db.db.Close()
}

func (db *LogDB) Path() string {
	return db.path
}

// DriverVersion returns the sqlite library version.
func (db *LogDB) DriverVersion() string {
	return db.driverVersion
}

// NewestSeq returns the highest sequence number with events written.
func (db *LogDB) NewestSeq() (uint64, error) {
	var seq sql.NullInt64
	if err := db.db.QueryRow("SELECT MAX(seq) FROM event").Scan(&seq); err != nil {
		return 0, err
	}
	return uint64(seq.Int64), nil
}

func (db *LogDB) FilterEvents(ctx context.Context, filter *EventFilter) ([]*Event, error) {
	if filter == nil {
		return db.queryEvents(ctx, "SELECT * FROM event ORDER BY seq ASC, eventIndex ASC")
	}
	metricsHandleEventsFilter(filter)

	var args []any
	stmt := "SELECT * FROM event WHERE 1"
	condition := "seq"
	if filter.Range != nil {
		if filter.Range.Unit == Time {
			condition = "time"
		}
		args = append(args, filter.Range.From)
		stmt += " AND " + condition + " >= ? "
		if filter.Range.To >= filter.Range.From {
			args = append(args, filter.Range.To)
			stmt += " AND " + condition + " <= ? "
		}
	}
	length := len(filter.CriteriaSet)
	for i, criteria := range filter.CriteriaSet {
		if i == 0 {
			stmt += " AND (( 1 "
		} else {
			stmt += " OR ( 1 "
		}
		if criteria.Address != nil {
			args = append(args, criteria.Address.Bytes())
			stmt += " AND address = ? "
		}
		for j, topic := range criteria.Topics {
			if topic != nil {
				args = append(args, topic.Bytes())
				stmt += fmt.Sprintf(" AND topic%v = ? ", j)
			}
		}
		if i == length-1 {
			stmt += " )) "
		} else {
			stmt += " ) "
		}
	}

	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC, eventIndex DESC "
	} else {
		stmt += " ORDER BY seq ASC, eventIndex ASC "
	}

	if filter.Options != nil {
		stmt += " LIMIT ?, ? "
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.queryEvents(ctx, stmt, args...)
}

func (db *LogDB) queryEvents(ctx context.Context, stmt string, args ...any) ([]*Event, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			seq     uint64
			index   uint32
			time    uint64
			caller  []byte
			address []byte
			topics  [MaxTopics][]byte
			data    []byte
		)
		if err := rows.Scan(
			&seq,
			&index,
			&time,
			&caller,
			&address,
			&topics[0],
			&topics[1],
			&topics[2],
			&topics[3],
			&data,
		); err != nil {
			return nil, err
		}
		event := &Event{
			Seq:     seq,
			Index:   index,
			Time:    time,
			Caller:  thor.BytesToAddress(caller),
			Address: thor.BytesToAddress(address),
			Data:    data,
		}
		for i, topic := range topics {
			if len(topic) > 0 {
				h := thor.BytesToBytes32(topic)
				event.Topics[i] = &h
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func topicValue(topic *thor.Bytes32) []byte {
	if topic == nil {
		return nil
	}
	return topic.Bytes()
}

// Prepare starts a batch holding the events of a committed call.
func (db *LogDB) Prepare(out *tx.Output) *Batch {
	b := &Batch{db: db.db}
	for _, ev := range out.Events {
		b.events = append(b.events, newEvent(out, uint32(len(b.events)), ev))
	}
	return b
}

type Batch struct {
	db     *sql.DB
	events []*Event
}

// Len returns the number of events in the batch.
func (b *Batch) Len() int {
	return len(b.events)
}

func (b *Batch) execInTx(proc func(*sql.Tx) error) (err error) {
	tx, err := b.db.Begin()
	if err != nil {
		return err
	}
	if err := proc(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Commit writes the batch atomically.
func (b *Batch) Commit() error {
	if len(b.events) == 0 {
		return nil
	}
	return b.execInTx(func(tx *sql.Tx) error {
		for _, event := range b.events {
			if _, err := tx.Exec("INSERT OR REPLACE INTO event(seq, eventIndex, time, caller, address, topic0, topic1, topic2, topic3, data) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);",
				event.Seq,
				event.Index,
				event.Time,
				event.Caller.Bytes(),
				event.Address.Bytes(),
				topicValue(event.Topics[0]),
				topicValue(event.Topics[1]),
				topicValue(event.Topics[2]),
				topicValue(event.Topics[3]),
				event.Data,
			); err != nil {
				return err
			}
		}
		metricEventsWritten().Add(int64(len(b.events)))
		return nil
	})
}
