package registry

import (
	"encoding/json"
	"fmt"
)

// ValidationError describes why a raw catalog record was rejected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// DecodeCatalog parses the registry listing and validates every record
// against the entry shape. Records that fail validation are dropped and
// returned separately so callers can report them; the valid remainder is
// kept, keeping one bad record from poisoning the whole catalog.
func DecodeCatalog(data []byte) (*Catalog, []*ValidationError, error) {
	var raw struct {
		Version string           `json:"version"`
		Entries []map[string]any `json:"entries"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("invalid catalog JSON: %w", err)
	}

	cat := &Catalog{Version: raw.Version}
	var rejected []*ValidationError
	for i, record := range raw.Entries {
		e, verr := validateEntry(record)
		if verr != nil {
			verr.Field = fmt.Sprintf("entries[%d].%s", i, verr.Field)
			rejected = append(rejected, verr)
			continue
		}
		cat.Entries = append(cat.Entries, *e)
	}
	return cat, rejected, nil
}

// validateEntry checks one raw catalog record field by field. It returns
// the typed entry or the first ValidationError found; it never panics on
// unexpected input shapes.
func validateEntry(record map[string]any) (*Entry, *ValidationError) {
	name, verr := requireString(record, "name")
	if verr != nil {
		return nil, verr
	}
	path, verr := requireString(record, "entry")
	if verr != nil {
		return nil, verr
	}
	description, verr := optionalString(record, "description")
	if verr != nil {
		return nil, verr
	}
	copyTo, verr := optionalString(record, "copyTo")
	if verr != nil {
		return nil, verr
	}
	deps, verr := optionalStringSlice(record, "dependencies")
	if verr != nil {
		return nil, verr
	}
	devDeps, verr := optionalStringSlice(record, "devDependencies")
	if verr != nil {
		return nil, verr
	}

	return &Entry{
		Name:            name,
		Description:     description,
		Path:            path,
		Dependencies:    deps,
		DevDependencies: devDeps,
		CopyTo:          copyTo,
	}, nil
}

func requireString(record map[string]any, key string) (string, *ValidationError) {
	v, ok := record[key]
	if !ok {
		return "", &ValidationError{Field: key, Reason: "required"}
	}
	s, ok := v.(string)
	if !ok {
		return "", &ValidationError{Field: key, Reason: "must be a string"}
	}
	if s == "" {
		return "", &ValidationError{Field: key, Reason: "must not be empty"}
	}
	return s, nil
}

func optionalString(record map[string]any, key string) (string, *ValidationError) {
	v, ok := record[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", &ValidationError{Field: key, Reason: "must be a string"}
	}
	return s, nil
}

func optionalStringSlice(record map[string]any, key string) ([]string, *ValidationError) {
	v, ok := record[key]
	if !ok || v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, &ValidationError{Field: key, Reason: "must be an array of strings"}
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, &ValidationError{Field: fmt.Sprintf("%s[%d]", key, i), Reason: "must be a string"}
		}
		out = append(out, s)
	}
	return out, nil
}
