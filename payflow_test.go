package payflow

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"

	"github.com/kaptain9960/payflow/config"
	"github.com/kaptain9960/payflow/database"
)

// newTestService wires the real service over a stub database and an embedded
// Redis so the lock and cache paths run for real.
func newTestService(t *testing.T) (*Payflow, sqlmock.Sqlmock) {
	t.Helper()

	mr, err := miniredis.Run()
	assert.NoError(t, err)
	t.Cleanup(mr.Close)

	cnf := &config.Configuration{}
	cnf.Redis.Dns = mr.Addr()
	config.MockConfig(cnf)

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	service, err := NewPayflow(&database.Datasource{Conn: db})
	assert.NoError(t, err)

	return service, mock
}
