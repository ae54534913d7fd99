package analysis

import (
	"testing"

	"recon_report/internal/model"
)

func TestCompareIP(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"10.0.0.2", "10.0.0.10", -1},
		{"9.0.0.1", "10.0.0.1", -1},
		{"192.168.1.1", "192.168.1.1", 0},
		{"10.1.0.0", "10.0.255.255", 1},
		{"10.0.0.1", "fe80::1", -1},
		{"fe80::2", "fe80::1", 1},
	}
	for _, c := range cases {
		if got := CompareIP(c.a, c.b); got != c.want {
			t.Fatalf("CompareIP(%q, %q) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestSortAndIndex(t *testing.T) {
	rows := []model.ScanRow{
		{IP: "10.0.0.10", Port: "22"},
		{IP: "10.0.0.2", Port: "80"},
		{IP: "10.0.0.10", Port: "443"},
		{IP: "9.9.9.9", Port: "53"},
		{IP: "10.0.0.2", Port: "8080"},
	}
	SortRows(rows)
	AssignSortIndex(rows)

	wantIP := []string{"9.9.9.9", "10.0.0.2", "10.0.0.2", "10.0.0.10", "10.0.0.10"}
	wantPort := []string{"53", "80", "8080", "22", "443"}
	wantSort := []int{1, 2, 2, 3, 3}
	for i, r := range rows {
		if r.IP != wantIP[i] || r.Port != wantPort[i] || r.Sort != wantSort[i] {
			t.Fatalf("row %d = %+v, want ip=%s port=%s sort=%d", i, r, wantIP[i], wantPort[i], wantSort[i])
		}
	}
}

func TestSummarize(t *testing.T) {
	rows := []model.ScanRow{
		{IP: "1.1.1.1", Proto: "tcp", Port: "80", ScriptID: "a"},
		{IP: "1.1.1.1", Proto: "tcp", Port: "80", ScriptID: "b"},
		{IP: "1.1.1.1", Proto: "udp", Port: "80"},
		{IP: "2.2.2.2", Proto: "tcp", Port: "22"},
	}
	s := Summarize(rows)
	if s.Hosts != 2 || s.Entries != 4 {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if s.PerHost[0].IP != "1.1.1.1" || s.PerHost[0].Ports != 2 || s.PerHost[0].Entries != 3 {
		t.Fatalf("unexpected first host: %+v", s.PerHost[0])
	}
	if empty := Summarize(nil); empty.Hosts != 0 || empty.Entries != 0 {
		t.Fatalf("unexpected empty summary: %+v", empty)
	}
}
