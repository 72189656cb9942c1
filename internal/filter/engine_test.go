package filter

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"mediathek_bot/internal/model"
)

func video(title, summary string) model.Video {
	return model.Video{ID: "v", Title: title, Summary: summary}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name    string
		video   model.Video
		filters []model.Filter
		want    bool
	}{
		{
			name:  "no filters passes",
			video: video("Tatort: Schattenspiel", "Krimi aus Muenster"),
			want:  true,
		},
		{
			name:  "include word matches case-insensitively",
			video: video("Tatort: Schattenspiel", ""),
			filters: []model.Filter{
				{Kind: model.FilterInclude, Scope: model.ScopeAll, Value: "TATORT"},
			},
			want: true,
		},
		{
			name:  "include word misses",
			video: video("Polizeiruf 110", ""),
			filters: []model.Filter{
				{Kind: model.FilterInclude, Scope: model.ScopeAll, Value: "tatort"},
			},
			want: false,
		},
		{
			name:  "includes use OR logic",
			video: video("Polizeiruf 110", ""),
			filters: []model.Filter{
				{Kind: model.FilterInclude, Scope: model.ScopeAll, Value: "tatort"},
				{Kind: model.FilterInclude, Scope: model.ScopeAll, Value: "polizeiruf"},
			},
			want: true,
		},
		{
			name:  "exclude word wins over include",
			video: video("Tatort: Schattenspiel (Trailer)", ""),
			filters: []model.Filter{
				{Kind: model.FilterInclude, Scope: model.ScopeAll, Value: "tatort"},
				{Kind: model.FilterExclude, Scope: model.ScopeAll, Value: "trailer"},
			},
			want: false,
		},
		{
			name:  "exclude regex",
			video: video("Online Kurs: Krimi Training", ""),
			filters: []model.Filter{
				{Kind: model.FilterExcludeRe, Scope: model.ScopeAll, Value: "kurs.*training"},
			},
			want: false,
		},
		{
			name:  "title scope ignores summary",
			video: video("Schattenspiel", "tatort aus muenster"),
			filters: []model.Filter{
				{Kind: model.FilterInclude, Scope: model.ScopeTitle, Value: "tatort"},
			},
			want: false,
		},
		{
			name:  "summary scope ignores title",
			video: video("Tatort", "vorschau auf den fall"),
			filters: []model.Filter{
				{Kind: model.FilterInclude, Scope: model.ScopeSummary, Value: "vorschau"},
			},
			want: true,
		},
		{
			name:  "invalid regex never matches",
			video: video("Tatort", ""),
			filters: []model.Filter{
				{Kind: model.FilterExcludeRe, Scope: model.ScopeAll, Value: "("},
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Match(tt.video, tt.filters)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Match mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidateRegex(t *testing.T) {
	if err := ValidateRegex("folge \\d+"); err != nil {
		t.Errorf("valid pattern rejected: %v", err)
	}
	if err := ValidateRegex("("); err == nil {
		t.Error("expected error for unbalanced paren")
	}
}
