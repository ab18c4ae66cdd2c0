package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsCreateEveryRecordSet(t *testing.T) {
	joined := strings.Join(migrations, "\n")
	for _, table := range []string{"users", "chats", "messages", "chat_participants"} {
		assert.Contains(t, joined, "CREATE TABLE IF NOT EXISTS "+table+" (")
	}
	assert.Contains(t, joined, "UNIQUE(chat_id, user_id)")
	assert.NotContains(t, joined, "DROP TABLE")
}

func TestOpenBadgerInTempDir(t *testing.T) {
	db, err := OpenBadger(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, db.Close())
}
