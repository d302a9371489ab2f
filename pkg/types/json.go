package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

func asJSON(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported scan type %T", value)
	}
}

// jsonValue renders v as a JSON string so both pgx (simple protocol) and
// sqlite store it as text.
func jsonValue(v any) (driver.Value, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}
