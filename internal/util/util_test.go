package util

import (
	"testing"
	"time"
)

func TestRefangURL(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"hxxp://evil[.]example[.]com/path", "http://evil.example.com/path"},
		{"hxxps://bad[.]site[:]8080", "https://bad.site:8080"},
		{"  evil[.]com/a b ", "http://evil.com/ab"},
		{"HTTPS://Example.com", "HTTPS://Example.com"},
		{"example[@]mail[.]com", "http://example@mail.com"},
		{"www\t.example .org", "http://www.example.org"},
		{"x.com/[[a]]", "http://x.com/a"},
		{"hx[x]p://a[.]b[.]co", "http://a.b.co"},
	}
	for _, c := range cases {
		if got := RefangURL(c.in); got != c.want {
			t.Fatalf("RefangURL(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestRefangURLIdempotent(t *testing.T) {
	inputs := []string{
		"hxxp://evil[.]example[.]com/path",
		"bad[.]site",
		"https://already.fine/x?y=1",
		"hxxps[:]//a[.]b[.]co",
		"x.com/[[a]]",
		"evil[[.]]com/[[[p]]]",
	}
	for _, in := range inputs {
		once := RefangURL(in)
		if twice := RefangURL(once); twice != once {
			t.Fatalf("refang not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestIsValidURL(t *testing.T) {
	if !IsValidURL(RefangURL("hxxp://evil[.]example[.]com/path")) {
		t.Fatalf("refanged url should be valid")
	}
	valid := []string{"http://evil.example.com/path", "https://a.io", "example.org/x/y"}
	for _, u := range valid {
		if !IsValidURL(u) {
			t.Fatalf("expected %q to be valid", u)
		}
	}
	invalid := []string{"http://localhost", "http://example.c", "http://bad host.com", "ftp://x.com", ""}
	for _, u := range invalid {
		if IsValidURL(u) {
			t.Fatalf("expected %q to be invalid", u)
		}
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"user.name+tag@sub.example.co", "a@b.cd", " padded@mail.org "}
	for _, e := range valid {
		if !IsValidEmail(e) {
			t.Fatalf("expected %q to be valid", e)
		}
	}
	invalid := []string{"no-at-sign.example.com", "user@localhost", "user@@example.com", "user@.com", ""}
	for _, e := range invalid {
		if IsValidEmail(e) {
			t.Fatalf("expected %q to be invalid", e)
		}
	}
}

func TestNaming(t *testing.T) {
	now := time.Date(2024, 3, 5, 7, 8, 9, 0, time.UTC)
	if got := GenerateScanCSVName(now); got != "scan_output_20240305_070809.csv" {
		t.Fatalf("scan csv name = %q", got)
	}
	id := taskIDAt(now)
	if len(id) != 17 || id[:9] != "20240305_" {
		t.Fatalf("task id = %q", id)
	}
	if got := GenerateTableName("scan", id); got != "scan_"+id {
		t.Fatalf("table name = %q", got)
	}
}
