package file

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/custodia-labs/finconnect/internal/core/domain"
)

// LoadErrorCodes reads the error-code table from a JSON object mapping
// symbolic names to codes:
//
//	{"NO_ACCOUNTS": "NO_ACCOUNTS", "INVALID_PASSWORD": "INVALID_PASSWORD", ...}
//
// Names the connector does not use are ignored. An empty path returns the
// built-in table.
func LoadErrorCodes(path string) (domain.ErrorCodes, error) {
	if path == "" {
		return domain.DefaultErrorCodes(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.ErrorCodes{}, fmt.Errorf("read error table: %w", err)
	}

	var table map[string]any
	if err := json.Unmarshal(data, &table); err != nil {
		return domain.ErrorCodes{}, fmt.Errorf("parse error table %s: %w", path, err)
	}

	codes := make(map[string]string, len(table))
	for name, v := range table {
		if s, ok := v.(string); ok {
			codes[name] = s
		}
	}

	c, err := domain.NewErrorCodes(codes)
	if err != nil {
		return domain.ErrorCodes{}, fmt.Errorf("error table %s: %w", path, err)
	}
	return c, nil
}
