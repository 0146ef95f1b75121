// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"database/sql"

	"github.com/pkg/errors"
)

const (
	insertTransferQuery = "INSERT INTO transfer(seq, sender, recipient, amount) VALUES(?,?,?,?)"
	maxSeqQuery         = "SELECT MAX(seq) FROM transfer WHERE seq >= ? AND seq < ?"
)

// statements holds the fixed statements of the write path, prepared once at open.
// Filter queries are built per call and not kept.
type statements struct {
	insertTransfer *sql.Stmt
	maxSeq         *sql.Stmt
}

func prepareStatements(db *sql.DB) (*statements, error) {
	var (
		stmts statements
		err   error
	)
	if stmts.insertTransfer, err = db.Prepare(insertTransferQuery); err != nil {
		return nil, errors.Wrap(err, "prepare insert")
	}
	if stmts.maxSeq, err = db.Prepare(maxSeqQuery); err != nil {
		stmts.close()
		return nil, errors.Wrap(err, "prepare max seq")
	}
	return &stmts, nil
}

// in binds the statements to tx.
func (s *statements) in(tx *sql.Tx) *statements {
	return &statements{
		insertTransfer: tx.Stmt(s.insertTransfer),
		maxSeq:         tx.Stmt(s.maxSeq),
	}
}

func (s *statements) close() {
	for _, stmt := range []*sql.Stmt{s.insertTransfer, s.maxSeq} {
		if stmt != nil {
			_ = stmt.Close()
		}
	}
}
