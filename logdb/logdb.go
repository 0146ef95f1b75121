// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"context"
	"database/sql"
	"math"
	"math/big"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/vechain/pocm/thor"
)

type LogDB struct {
	path          string
	db            *sql.DB
	driverVersion string
	stmts         *statements
}

// New create or open log db at given path.
func New(path string) (logDB *LogDB, err error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&cache=shared")
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			db.Close()
		}
	}()
	return open(path, db)
}

// NewMem create a log db in ram.
func NewMem() (*LogDB, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, err
	}
	// every connection would get its own in-memory database
	db.SetMaxOpenConns(1)
	ldb, err := open(":memory:", db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return ldb, nil
}

func open(path string, db *sql.DB) (*LogDB, error) {
	if _, err := db.Exec(transferTableSchema); err != nil {
		return nil, errors.Wrap(err, "create schema")
	}
	stmts, err := prepareStatements(db)
	if err != nil {
		return nil, err
	}
	driverVer, _, _ := sqlite3.Version()
	return &LogDB{
		path:          path,
		db:            db,
		driverVersion: driverVer,
		stmts:         stmts,
	}, nil
}

// Close close the log db.
func (db *LogDB) Close() error {
	db.stmts.close()
	return db.db.Close()
}

func (db *LogDB) Path() string {
	return db.path
}

// DriverVersion returns the sqlite library version.
func (db *LogDB) DriverVersion() string {
	return db.driverVersion
}

// Insert appends transfers at the given height in one transaction.
// Indexes continue after the ones already stored at that height and are written back.
func (db *LogDB) Insert(height uint32, transfers []*Transfer) error {
	if len(transfers) == 0 {
		return nil
	}
	from, _ := newSequence(height, 0)
	to := sequence(math.MaxInt64)
	if height < math.MaxUint32 {
		to, _ = newSequence(height+1, 0)
	}

	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmts := db.stmts.in(tx)
	var last sql.NullInt64
	if err := stmts.maxSeq.QueryRow(from, to).Scan(&last); err != nil {
		return err
	}
	next := uint32(0)
	if last.Valid {
		next = sequence(last.Int64).Index() + 1
	}

	for _, tr := range transfers {
		seq, err := newSequence(height, next)
		if err != nil {
			return err
		}
		amount := tr.Amount
		if amount == nil {
			amount = new(big.Int)
		}
		if _, err := stmts.insertTransfer.Exec(seq, tr.Sender.Bytes(), tr.Recipient.Bytes(), amount.Bytes()); err != nil {
			return err
		}
		tr.Height, tr.Index = height, next
		next++
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	metricInserted().Add(int64(len(transfers)))
	return nil
}

// FilterTransfers returns stored transfers matching the filter.
func (db *LogDB) FilterTransfers(ctx context.Context, filter *TransferFilter) ([]*Transfer, error) {
	const query = "SELECT seq, sender, recipient, amount FROM transfer"
	if filter == nil {
		return db.queryTransfers(ctx, query+" ORDER BY seq ASC")
	}
	metricsHandleTransferFilter(filter)

	var args []any
	stmt := query + " WHERE 1"
	if filter.Range != nil {
		from, _ := newSequence(filter.Range.From, 0)
		args = append(args, from)
		stmt += " AND seq >= ?"
		if filter.Range.To >= filter.Range.From && filter.Range.To < math.MaxUint32 {
			to, _ := newSequence(filter.Range.To+1, 0)
			args = append(args, to)
			stmt += " AND seq < ?"
		}
	}
	if filter.Sender != nil {
		args = append(args, filter.Sender.Bytes())
		stmt += " AND sender = ?"
	}
	if filter.Recipient != nil {
		args = append(args, filter.Recipient.Bytes())
		stmt += " AND recipient = ?"
	}
	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC"
	} else {
		stmt += " ORDER BY seq ASC"
	}
	if filter.Options != nil {
		stmt += " LIMIT ?, ?"
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.queryTransfers(ctx, stmt, args...)
}

func (db *LogDB) queryTransfers(ctx context.Context, query string, args ...any) ([]*Transfer, error) {
	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transfers []*Transfer
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			seq       sequence
			sender    []byte
			recipient []byte
			amount    []byte
		)
		if err := rows.Scan(&seq, &sender, &recipient, &amount); err != nil {
			return nil, err
		}
		transfers = append(transfers, &Transfer{
			Height:    seq.Height(),
			Index:     seq.Index(),
			Sender:    thor.BytesToAddress(sender),
			Recipient: thor.BytesToAddress(recipient),
			Amount:    new(big.Int).SetBytes(amount),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return transfers, nil
}
