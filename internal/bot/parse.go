package bot

import (
	"fmt"
	"strconv"
	"strings"

	"mediathek_bot/internal/model"
)

// FilterArgs holds the parsed arguments of a filter command.
type FilterArgs struct {
	SubscriptionID int64
	Scope          model.FilterScope
	Value          string
}

// ParseFilterCommand parses arguments for /include, /exclude, etc.
// Format: <id> [-s title|summary|all] <value...>
func ParseFilterCommand(args string) (FilterArgs, error) {
	parts := strings.Fields(args)
	if len(parts) < 2 {
		return FilterArgs{}, fmt.Errorf("usage: <id> [-s title|summary|all] <value>")
	}

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return FilterArgs{}, fmt.Errorf("invalid entry ID %q", parts[0])
	}

	scope := model.ScopeAll
	rest := parts[1:]

	if len(rest) >= 2 && rest[0] == "-s" {
		switch rest[1] {
		case "title":
			scope = model.ScopeTitle
		case "summary":
			scope = model.ScopeSummary
		case "all":
			scope = model.ScopeAll
		default:
			return FilterArgs{}, fmt.Errorf("invalid scope %q, use: title, summary, all", rest[1])
		}
		rest = rest[2:]
	}

	if len(rest) == 0 {
		return FilterArgs{}, fmt.Errorf("filter value is required")
	}

	return FilterArgs{
		SubscriptionID: id,
		Scope:          scope,
		Value:          strings.Join(rest, " "),
	}, nil
}

// ParseIDArg extracts a numeric ID from a command argument string.
func ParseIDArg(args string) (int64, error) {
	s := strings.TrimSpace(args)
	if s == "" {
		return 0, fmt.Errorf("entry ID is required")
	}
	id, err := strconv.ParseInt(strings.Fields(s)[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid entry ID %q", s)
	}
	return id, nil
}
