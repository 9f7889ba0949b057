package normalize

import "testing"

func TestLine(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name, in, want string
	}{
		{"empty", "", ""},
		{"trim and collapse", "  Fix   my\tsink  ", "Fix my sink"},
		{"newlines flattened", "Paint\n\nfence", "Paint fence"},
		{"zero width removed", "Dog\u200bwalk", "Dogwalk"},
		{"controls removed", "a\x00b\x07c", "abc"},
		{"nfc composes", "Cafe\u0301", "Caf\u00e9"},
		{"invalid utf8 dropped", "ok\xffok", "okok"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Line(tc.in); got != tc.want {
				t.Fatalf("Line(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestText_KeepsParagraphs(t *testing.T) {
	t.Parallel()

	got := Text("  line one  \n\n  line   two \r\n")
	if got != "line one\nline two" {
		t.Fatalf("got %q", got)
	}
}

func TestEmail(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"  Alice@Example.COM ":     "alice@example.com",
		"ｂｏｂ＠ｅｘａｍｐｌｅ．ｃｏｍ": "bob@example.com",
		"":                         "",
	}
	for in, want := range cases {
		if got := Email(in); got != want {
			t.Fatalf("Email(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExceeds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		s    string
		n    int
		want bool
	}{
		{"héllo", 5, false},
		{"héllo", 4, true},
		{"ééé", 3, false},
		{"abc", 10, false},
		{"abc", 0, true},
		{"", 0, false},
	}
	for _, tc := range cases {
		if got := Exceeds(tc.s, tc.n); got != tc.want {
			t.Fatalf("Exceeds(%q, %d) = %v", tc.s, tc.n, got)
		}
	}
}
