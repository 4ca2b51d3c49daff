package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	raw := []byte(`
app:
  name: gradebook-portal
database:
  host: localhost
  port: 3306
  user: portal
  password: secret
  name: gradebooks
  charset: utf8mb4
  parse_time: true
  loc: UTC
redis:
  host: redis
  port: 6379
  report_queue: reports
google:
  client_id: id
  client_secret: shh
workers:
  refresh:
    interval: 6h
`)

	cfg, err := Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "gradebook-portal", cfg.App.Name)
	assert.Equal(t, "portal:secret@tcp(localhost:3306)/gradebooks?charset=utf8mb4&parseTime=true&loc=UTC", cfg.DatabaseDSN())
	assert.Equal(t, "redis:6379", cfg.RedisAddr())
	assert.Equal(t, 6*time.Hour, cfg.Workers.Refresh.Interval)

	// defaults
	assert.Equal(t, "GradeBook Parents", cfg.Google.RootFolderName)
	assert.Equal(t, ":dlq", cfg.Redis.DLQSuffix)
	assert.Equal(t, "reports", cfg.Storage.S3.ReportPrefix)
	assert.Equal(t, 3, cfg.Workers.RetryAttempts)
	assert.NotEmpty(t, cfg.Google.DefaultAvatar)
	assert.Equal(t, 2, cfg.Workers.Report.Count)
}

func TestParseDatabaseDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
database:
  host: db
  port: 3306
  user: u
  password: p
  name: n
`))
	require.NoError(t, err)
	assert.Equal(t, "u:p@tcp(db:3306)/n?charset=utf8mb4&parseTime=false&loc=UTC", cfg.DatabaseDSN())
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse([]byte("app: [unterminated"))
	assert.Error(t, err)
}
