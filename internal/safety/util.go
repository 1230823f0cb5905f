package safety

import (
	"encoding/json"
	"strconv"
)

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}

func isWellFormedJSON(data []byte) bool {
	if len(data) == 0 {
		return true
	}
	return json.Valid(data)
}
