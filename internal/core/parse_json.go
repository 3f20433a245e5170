package core

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// jsonFieldAliases lists, per logical field, the candidate object keys tried
// in priority order; the first key holding a non-empty value wins. This is a
// plain lookup table, not reflection, so the accepted spellings are explicit
// and auditable.
var jsonFieldAliases = map[string][]string{
	"component_id":   {"componentId", "component_id", "Component ID", "id", "identifier"},
	"name":           {"name", "componentName", "component_name", "Component Name", "title"},
	"tower":          {"tower", "towerName", "Tower Name", "tower_name", "Tower", "domain", "area"},
	"app_group":      {"appGroup", "app_group", "App Group", "owner", "ownerGroup", "owner_group", "team"},
	"component_type": {"componentType", "component_type", "Component Type", "type", "name", "component_name", "componentName", "title"},
	"complexity":     {"complexity", "level", "difficulty", "size"},
	"status":         {"status", "state", "phase", "stage"},
	"year":           {"year", "releaseYear", "release_year", "Release Year"},
	"month":          {"month", "releaseMonth", "release_month", "Release Month"},
	"change_type":    {"changeType", "change_type", "Change Type", "change"},
	"description":    {"description", "desc", "details", "summary"},
}

// parseJSON reads structured markup: a JSON array of objects, a single
// object, or an object wrapping the array under a "components" or "data"
// key (all shapes the original exports produce).
func parseJSON(data []byte) ([]RawRecord, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	var items []any
	switch v := doc.(type) {
	case []any:
		items = v
	case map[string]any:
		if arr, ok := v["components"].([]any); ok {
			items = arr
		} else if arr, ok := v["data"].([]any); ok {
			items = arr
		} else {
			items = []any{v}
		}
	default:
		return nil, fmt.Errorf("invalid JSON structure: expected array or object")
	}

	records := make([]RawRecord, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			// Non-object entries become empty records; the validator reports
			// them as missing required fields with the right row index.
			records = append(records, RawRecord{})
			continue
		}

		rec := RawRecord{
			ComponentID:   lookupAlias(obj, "component_id"),
			Name:          lookupAlias(obj, "name"),
			Tower:         lookupAlias(obj, "tower"),
			AppGroup:      lookupAlias(obj, "app_group"),
			ComponentType: lookupAlias(obj, "component_type"),
			Complexity:    lookupAlias(obj, "complexity"),
			Status:        lookupAlias(obj, "status"),
			Year:          lookupAlias(obj, "year"),
			Month:         lookupAlias(obj, "month"),
			ChangeType:    lookupAlias(obj, "change_type"),
			Description:   lookupAlias(obj, "description"),
		}
		records = append(records, rec)
	}

	return records, nil
}

// lookupAlias resolves a logical field from an object using the alias table.
func lookupAlias(obj map[string]any, field string) string {
	for _, key := range jsonFieldAliases[field] {
		if v, ok := obj[key]; ok {
			if s := stringifyJSONValue(v); s != "" {
				return s
			}
		}
	}
	return ""
}

// stringifyJSONValue renders a scalar JSON value as the raw string the
// validator expects. Numbers that are whole render without a fraction so
// year/month columns survive the float64 decoding.
func stringifyJSONValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
