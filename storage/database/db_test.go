package database

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lccc/gatelog/core"
)

func TestDSN(t *testing.T) {
	conf := core.NewTestConfig()
	conf.Database = core.DatabaseConfig{
		Engine:        "postgres",
		Host:          "db",
		Port:          "5432",
		Name:          "gatelog",
		User:          "gate",
		Password:      "s3cret",
		DisableTLS:    true,
		AdminUser:     "postgres",
		AdminPassword: "root",
	}

	u, err := url.Parse(dsn(conf.Database.Name, false, conf))
	require.NoError(t, err)
	assert.Equal(t, "postgres", u.Scheme)
	assert.Equal(t, "db:5432", u.Host)
	assert.Equal(t, "/gatelog", u.Path)
	assert.Equal(t, "gate", u.User.Username())
	assert.Equal(t, "disable", u.Query().Get("sslmode"))

	u, err = url.Parse(dsn("postgres", true, conf))
	require.NoError(t, err)
	assert.Equal(t, "postgres", u.User.Username())
	pwd, _ := u.User.Password()
	assert.Equal(t, "root", pwd)

	conf.Database.DisableTLS = false
	u, err = url.Parse(dsn(conf.Database.Name, false, conf))
	require.NoError(t, err)
	assert.Equal(t, "require", u.Query().Get("sslmode"))
}
