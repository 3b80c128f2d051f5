package repositories

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingConn записывает все SQL-запросы и отдаёт заранее заготовленную
// строку матча. Этого достаточно, чтобы проверять сами запросы без живой БД.
type recordingConn struct {
	queries []string
	rows    func() driver.Rows
}

func (c *recordingConn) Prepare(query string) (driver.Stmt, error) {
	return nil, errors.New("prepare is not supported by the recording driver")
}

func (c *recordingConn) Close() error { return nil }

func (c *recordingConn) Begin() (driver.Tx, error) { return noopTx{}, nil }

func (c *recordingConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	c.queries = append(c.queries, query)
	return c.rows(), nil
}

type noopTx struct{}

func (noopTx) Commit() error   { return nil }
func (noopTx) Rollback() error { return nil }

type staticRows struct {
	columns []string
	values  [][]driver.Value
	idx     int
}

func (r *staticRows) Columns() []string { return r.columns }
func (r *staticRows) Close() error      { return nil }

func (r *staticRows) Next(dest []driver.Value) error {
	if r.idx >= len(r.values) {
		return io.EOF
	}
	copy(dest, r.values[r.idx])
	r.idx++
	return nil
}

type staticConnector struct {
	conn *recordingConn
}

func (c staticConnector) Connect(context.Context) (driver.Conn, error) { return c.conn, nil }
func (c staticConnector) Driver() driver.Driver                        { return staticDriver{c.conn} }

type staticDriver struct {
	conn *recordingConn
}

func (d staticDriver) Open(string) (driver.Conn, error) { return d.conn, nil }

func matchRow(id int) func() driver.Rows {
	return func() driver.Rows {
		return &staticRows{
			columns: []string{
				"id", "round_id", "team_a_id", "team_b_id", "seed_a", "seed_b",
				"predecessor_a_id", "predecessor_b_id", "position", "is_bye", "forfeit_side",
				"winner_id", "tiebreak_status", "tiebreak_winner_id", "finals_state",
			},
			values: [][]driver.Value{{
				int64(id), int64(1), nil, nil, nil, nil,
				nil, nil, int64(0), false, nil,
				nil, "NONE", nil, nil,
			}},
		}
	}
}

func newRecordingDB(t *testing.T, conn *recordingConn) *sql.DB {
	t.Helper()
	db := sql.OpenDB(staticConnector{conn: conn})
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestGetByIDForUpdateLocksRow(t *testing.T) {
	conn := &recordingConn{rows: matchRow(5)}
	db := newRecordingDB(t, conn)
	repo := NewPostgresMatchRepository(db)

	tx, err := db.Begin()
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	match, err := repo.GetByIDForUpdate(context.Background(), tx, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, match.ID)

	require.NotEmpty(t, conn.queries)
	query := conn.queries[len(conn.queries)-1]
	assert.True(t, strings.HasSuffix(strings.TrimSpace(query), "FOR UPDATE"),
		"внутритранзакционное чтение матча обязано брать блокировку строки, получили: %s", query)
}

func TestGetByIDDoesNotLock(t *testing.T) {
	conn := &recordingConn{rows: matchRow(5)}
	db := newRecordingDB(t, conn)
	repo := NewPostgresMatchRepository(db)

	match, err := repo.GetByID(context.Background(), nil, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, match.ID)

	require.NotEmpty(t, conn.queries)
	assert.NotContains(t, conn.queries[len(conn.queries)-1], "FOR UPDATE")
}
