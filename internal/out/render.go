// Package out writes envelopes to the caller in JSON or plain key=value
// form, with optional field projection.
package out

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/ggonzalez94/solagent/internal/config"
	"github.com/ggonzalez94/solagent/internal/model"
)

func Render(w io.Writer, env model.Envelope, settings config.Settings) error {
	data := env.Data
	if len(settings.SelectFields) > 0 {
		data = project(data, settings.SelectFields)
	}

	var payload any
	switch {
	case settings.ResultsOnly:
		payload = data
	case settings.OutputMode == "json":
		env.Data = data
		payload = env
	default:
		plain := map[string]any{
			"success":  env.Success,
			"data":     data,
			"warnings": env.Warnings,
			"meta":     env.Meta,
		}
		if env.Error != nil {
			plain["error"] = env.Error
		}
		payload = plain
	}

	if settings.OutputMode == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}
	return renderPlain(w, payload)
}

func renderPlain(w io.Writer, data any) error {
	switch items := roundTrip(data).(type) {
	case nil:
		_, err := fmt.Fprintln(w, "null")
		return err
	case []any:
		if len(items) == 0 {
			_, err := fmt.Fprintln(w, "[]")
			return err
		}
		for _, item := range items {
			if err := writeLine(w, item); err != nil {
				return err
			}
		}
		return nil
	default:
		return writeLine(w, items)
	}
}

func writeLine(w io.Writer, v any) error {
	m, ok := v.(map[string]any)
	if !ok {
		buf, err := json.Marshal(v)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(buf))
		return err
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, m[k]))
	}
	_, err := fmt.Fprintln(w, strings.Join(parts, " "))
	return err
}

func project(data any, fields []string) any {
	switch t := roundTrip(data).(type) {
	case []any:
		out := make([]map[string]any, 0, len(t))
		for _, item := range t {
			if m, ok := item.(map[string]any); ok {
				out = append(out, projectMap(m, fields))
			}
		}
		return out
	case map[string]any:
		return projectMap(t, fields)
	default:
		return t
	}
}

func projectMap(m map[string]any, fields []string) map[string]any {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		if v, ok := m[f]; ok {
			out[f] = v
		}
	}
	return out
}

// roundTrip flattens arbitrary values into the generic JSON shapes so the
// plain renderer and the projector see one type set.
func roundTrip(v any) any {
	buf, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(buf, &out); err != nil {
		return v
	}
	return out
}
