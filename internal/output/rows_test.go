package output

import (
	"testing"
)

func TestFlatten(t *testing.T) {
	report := sampleReport(t)
	rows := Flatten(report)

	find := func(section, key, metric string) (MetricRow, bool) {
		for _, r := range rows {
			if r.Section == section && r.Key == key && r.Metric == metric {
				return r, true
			}
		}
		return MetricRow{}, false
	}

	cases := []struct {
		section string
		key     string
		metric  string
		value   float64
	}{
		{"selected", "", "orders", 4},
		{"selected", "", "completed", 3},
		{"selected", "", "revenue", 60},
		{"selected", "", "average_order_value", 20},
		{"status", "delivered", "count", 3},
		{"status", "cancelled", "count", 1},
		{"ranking.cuisine", "Greek", "rank", 1},
		{"ranking.cuisine", "Greek", "revenue", 30},
		{"ranking.cuisine", "Thai", "rank", 2},
		{"summary", "week", "orders_current", 4},
		{"lifetime", "", "customers", 3},
		{"data_quality", "", "records", 4},
		{"data_quality", "", "defaulted_fields", 0},
	}
	for _, tc := range cases {
		t.Run(tc.section+"/"+tc.key+"/"+tc.metric, func(t *testing.T) {
			row, ok := find(tc.section, tc.key, tc.metric)
			if !ok {
				t.Fatalf("expected a row")
			}
			if row.Value != tc.value {
				t.Fatalf("expected %v, got %v", tc.value, row.Value)
			}
		})
	}

	for _, r := range rows {
		if r.Scope != "platform" || r.Period != "week" || r.GeneratedAt != reportNow.UnixMilli() {
			t.Fatalf("expected every row to carry the report identity, got %+v", r)
		}
	}

	row, ok := find("duration", "delivery", "minutes")
	if !ok || row.Note == "" {
		t.Fatalf("expected delivery duration row with its source, got %+v", row)
	}
}

func TestSanitizeTopic(t *testing.T) {
	cases := map[string]string{
		"":                "rollup_reports",
		"reports":         "reports",
		"../etc/passwd":   "__etc_passwd",
		" team/reports  ": "team_reports",
	}
	for in, want := range cases {
		if got := sanitizeTopic(in); got != want {
			t.Fatalf("sanitizeTopic(%q): expected %q, got %q", in, want, got)
		}
	}
}
