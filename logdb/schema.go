// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

const transferTableSchema = `
create table if not exists transfer (
	seq integer primary key,
	sender blob(20),
	recipient blob(20),
	amount blob(32)
);

CREATE INDEX if not exists senderIndex on transfer(sender);
CREATE INDEX if not exists recipientIndex on transfer(recipient);
`
