package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/finconnect/internal/core/domain"
)

const fullTable = `{
	"NO_ACCOUNTS": "E_NO_ACCOUNTS",
	"UNKNOWN_MODULE": "E_UNKNOWN",
	"INVALID_PASSWORD": "E_PASSWORD",
	"EXPIRED_PASSWORD": "E_EXPIRED",
	"INVALID_PARAMETERS": "E_PARAMS",
	"GENERIC_EXCEPTION": "E_GENERIC",
	"WEBOOB_NOT_INSTALLED": "unused by the connector",
	"SOME_NUMBER": 12
}`

func writeTable(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "errors.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadErrorCodes_EmptyPathUsesDefaults(t *testing.T) {
	codes, err := LoadErrorCodes("")

	require.NoError(t, err)
	assert.Equal(t, "INVALID_PASSWORD", codes.Code(domain.KindInvalidPassword))
}

func TestLoadErrorCodes_FromFile(t *testing.T) {
	codes, err := LoadErrorCodes(writeTable(t, fullTable))

	require.NoError(t, err)
	assert.Equal(t, "E_NO_ACCOUNTS", codes.Code(domain.KindNoAccounts))
	assert.Equal(t, "E_UNKNOWN", codes.Code(domain.KindUnknownModule))
	assert.Equal(t, "E_PARAMS", codes.Code(domain.KindInvalidParameters))
	assert.Equal(t, "E_GENERIC", codes.Code(domain.KindGenericException))
}

func TestLoadErrorCodes_MissingKind(t *testing.T) {
	_, err := LoadErrorCodes(writeTable(t, `{"NO_ACCOUNTS": "X"}`))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "EXPIRED_PASSWORD")
}

func TestLoadErrorCodes_InvalidJSON(t *testing.T) {
	_, err := LoadErrorCodes(writeTable(t, `{not json`))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse error table")
}

func TestLoadErrorCodes_MissingFile(t *testing.T) {
	_, err := LoadErrorCodes(filepath.Join(t.TempDir(), "absent.json"))

	assert.ErrorIs(t, err, os.ErrNotExist)
}
