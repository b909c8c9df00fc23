/*
Package sqlkit is a stdlib-style data-access layer over database/sql that
turns driver result cursors into immutable records, eagerly materialized
or lazily reduced, and compiles structured statement specs into safe,
parameterized SQL.

# Overview

sqlkit has two halves that compose but do not depend on each other. The
reduction half executes SQL through any Querier (*sql.DB, *sql.Tx,
*sql.Conn) and maps each cursor row into a Record using a pluggable
RowBuilder, or hands the caller a lazy Row view that reads columns on
demand without building anything. The builder half compiles insert,
multi-row insert, update, delete, and select specs into a Statement (SQL
text plus an ordered argument list) with identifier-injection checks and
dialect-specific pagination.

# Records and rows

A Record is an immutable snapshot of one row: an ordered name/value
mapping (MapRows) or an ordered value list with per-statement shared
names (ArrayRows, the faster shape for wide, repeatedly scanned results).
A Row is a lazy view bound to the live cursor position; it is valid only
until the cursor advances. Convert a Row with Record to keep it, or read
single columns with Get and let it expire. Access to an expired Row
returns *StaleRowError. Column names are computed by a NamePolicy from
the column's table qualifier and label; unqualified policies make no
attempt to deduplicate colliding labels across joined tables; that is a
documented speed trade-off, not a defect.

# Statements

Builder functions are pure: they validate the whole spec, then produce
text and arguments whose order matches placeholder order exactly. Every
table, column, and alias identifier is checked against an injection
denylist before any text is assembled; offenders surface as
*UnsafeIdentifierError. Structural problems (empty inserts, mismatched
multi-row shapes, conflicting pagination options) surface as
ErrMalformedSpec before any SQL exists. Compiled statements use ?
placeholders; Rebind rewrites them for PostgreSQL, SQL Server, or Oracle
drivers.

# Error handling

  - Driver and protocol failures wrap into *DriverError and are never
    retried here; retries belong to the connection layer.
  - QueryRow returns sql.ErrNoRows when no row matches.
  - All spec validation errors are returned before the driver sees any
    text.

# Concurrency

Execution is single-threaded per statement: the cursor is forward-only
and not safe for concurrent advance. Fold runs a parallel fork-join
reduce over an already-buffered ResultSet, which is safe because no
cursor interaction remains at that point. There is no back-pressure
between the driver and a slow reducing function; the eager path buffers
the full result set.

sqlkit does not pool connections, manage transactions, or parse SQL. It
assumes database/sql semantics and works with any driver.
*/
package sqlkit
