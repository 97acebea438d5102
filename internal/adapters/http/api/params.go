package api

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/okian/ranksum/internal/domain/model"
)

// parseBoardRequest reads division, region, columns and limit from q.
func parseBoardRequest(q url.Values) (model.BoardRequest, error) {
	var req model.BoardRequest
	var err error

	if req.Division, err = intParam(q, "division", 0, true); err != nil {
		return req, err
	}
	if req.Region, err = intParam(q, "region", 0, false); err != nil {
		return req, err
	}
	limit, err := intParam(q, "limit", 0, false)
	if err != nil {
		return req, err
	}
	req.Limit = int(limit)
	req.Columns = splitList(q.Get("columns"))
	if len(req.Columns) == 0 {
		return req, fmt.Errorf("missing columns")
	}
	return req, nil
}

func intParam(q url.Values, name string, def int64, required bool) (int64, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		if required {
			return 0, fmt.Errorf("missing %s", name)
		}
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q; must be an integer", name, raw)
	}
	return v, nil
}

// splitList splits a comma-separated list, dropping empty items.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
