package jsonutil

import (
	"encoding/json"
	"strconv"
	"strings"
)

// FlexibleFloat converts a json.RawMessage to a float64, tolerating the
// quoted numbers LLMs and form layers sometimes produce ("3.8" instead of
// 3.8). Anything that cannot be read as a number coerces to 0.
func FlexibleFloat(raw json.RawMessage) float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return 0
	}

	var numVal float64
	if err := json.Unmarshal(raw, &numVal); err == nil {
		return numVal
	}

	var strVal string
	if err := json.Unmarshal(raw, &strVal); err == nil {
		f, err := strconv.ParseFloat(strings.TrimSpace(strVal), 64)
		if err != nil {
			return 0
		}
		return f
	}

	return 0
}

// FlexibleString converts a json.RawMessage to a string, handling numbers
// and booleans returned where a string was expected. Null and empty input
// yield the empty string.
func FlexibleString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var strVal string
	if err := json.Unmarshal(raw, &strVal); err == nil {
		return strVal
	}

	var numVal float64
	if err := json.Unmarshal(raw, &numVal); err == nil {
		if numVal == float64(int64(numVal)) {
			return strconv.FormatInt(int64(numVal), 10)
		}
		return strconv.FormatFloat(numVal, 'g', -1, 64)
	}

	var boolVal bool
	if err := json.Unmarshal(raw, &boolVal); err == nil {
		return strconv.FormatBool(boolVal)
	}

	return string(raw)
}
