package bot

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"mediathek_bot/internal/model"
)

func TestParseFilterCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    string
		want    FilterArgs
		wantErr bool
	}{
		{
			name: "simple word",
			args: "1 trailer",
			want: FilterArgs{SubscriptionID: 1, Scope: model.ScopeAll, Value: "trailer"},
		},
		{
			name: "multi-word value",
			args: "3 audiodeskription ohne untertitel",
			want: FilterArgs{SubscriptionID: 3, Scope: model.ScopeAll, Value: "audiodeskription ohne untertitel"},
		},
		{
			name: "with scope title",
			args: "1 -s title trailer",
			want: FilterArgs{SubscriptionID: 1, Scope: model.ScopeTitle, Value: "trailer"},
		},
		{
			name: "with scope summary",
			args: "2 -s summary vorschau",
			want: FilterArgs{SubscriptionID: 2, Scope: model.ScopeSummary, Value: "vorschau"},
		},
		{
			name: "with scope all",
			args: "1 -s all krimi",
			want: FilterArgs{SubscriptionID: 1, Scope: model.ScopeAll, Value: "krimi"},
		},
		{
			name:    "invalid scope",
			args:    "1 -s author krimi",
			wantErr: true,
		},
		{
			name:    "missing value",
			args:    "1",
			wantErr: true,
		},
		{
			name:    "invalid id",
			args:    "abc krimi",
			wantErr: true,
		},
		{
			name:    "empty args",
			args:    "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFilterCommand(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseFilterCommand mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseIDArg(t *testing.T) {
	tests := []struct {
		name    string
		args    string
		want    int64
		wantErr bool
	}{
		{name: "plain id", args: "7", want: 7},
		{name: "id with trailing words", args: "7 whatever", want: 7},
		{name: "padded", args: "  12  ", want: 12},
		{name: "empty", args: "", wantErr: true},
		{name: "not a number", args: "seven", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIDArg(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseIDArg mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDurationHHMMSS(t *testing.T) {
	tests := []struct {
		secs int
		want string
	}{
		{secs: 0, want: "00:00:00"},
		{secs: 59, want: "00:00:59"},
		{secs: 90, want: "00:01:30"},
		{secs: 5340, want: "01:29:00"},
		{secs: 86399, want: "23:59:59"},
	}

	for _, tt := range tests {
		if got := DurationHHMMSS(tt.secs); got != tt.want {
			t.Errorf("DurationHHMMSS(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}

func TestFormatNotification(t *testing.T) {
	v := model.Video{
		ID:              "mvw-0001",
		Title:           "Tatort: Das Verschwinden",
		Author:          "ARD",
		DurationSeconds: 5340,
		PageURL:         "https://www.ardmediathek.de/video/tatort-das-verschwinden",
		PublishedAt:     time.Date(2026, 1, 5, 20, 15, 0, 0, time.UTC),
	}

	got := FormatNotification(v)

	for _, want := range []string{
		"New video found!",
		"[ARD] Tatort: Das Verschwinden (01:29:00)",
		"Uploaded: 01/05/2026, 20:15:00",
		"Url: https://www.ardmediathek.de/video/tatort-das-verschwinden",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("notification missing %q:\n%s", want, got)
		}
	}
}

func TestFormatSubscriptionList(t *testing.T) {
	tests := []struct {
		name string
		subs []model.Subscription
		want []string
	}{
		{
			name: "empty list",
			subs: nil,
			want: []string{"No entries found!"},
		},
		{
			name: "entries with hit counts",
			subs: []model.Subscription{
				{ID: 1, Query: "tatort", Seen: []string{"a", "b", "c"}},
				{ID: 2, Query: "polizeiruf"},
			},
			want: []string{"#1 tatort (3 hits)", "#2 polizeiruf (0 hits)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatSubscriptionList(tt.subs)
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("list missing %q:\n%s", want, got)
				}
			}
		})
	}
}

func TestFormatFilterList(t *testing.T) {
	sub := &model.Subscription{ID: 1, Query: "tatort"}

	empty := FormatFilterList(sub, nil)
	if !strings.Contains(empty, "No filters") {
		t.Errorf("expected empty-list hint, got:\n%s", empty)
	}

	filters := []model.Filter{
		{ID: 1, Kind: model.FilterInclude, Scope: model.ScopeAll, Value: "krimi"},
		{ID: 2, Kind: model.FilterExcludeRe, Scope: model.ScopeTitle, Value: "(?i)trailer"},
	}
	got := FormatFilterList(sub, filters)
	for _, want := range []string{
		"Include (word)",
		"F1: krimi (title+summary)",
		"Exclude (regex)",
		"F2: (?i)trailer (title only)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("filter list missing %q:\n%s", want, got)
		}
	}
}
