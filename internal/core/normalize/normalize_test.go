package normalize

import "testing"

func TestURL_Table(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		out  string
	}{
		{"empty", "", ""},
		{"identity", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		{"trim", "  https://youtu.be/dQw4w9WgXcQ \n", "https://youtu.be/dQw4w9WgXcQ"},
		{"case preserved", "https://youtu.be/AbCdEfGhIjK", "https://youtu.be/AbCdEfGhIjK"},
		{"zero width removed", "https://www.tiktok.com/@ali\u200bce", "https://www.tiktok.com/@alice"},
		{"bom removed", "\ufeffhttps://v.douyin.com/iRNBho6u/", "https://v.douyin.com/iRNBho6u/"},
		{"fullwidth folded", "ｈｔｔｐｓ：／／youtu.be/dQw4w9WgXcQ", "https://youtu.be/dQw4w9WgXcQ"},
		{"invalid utf8 dropped", "https://youtu.be/\xffdQw4w9WgXcQ", "https://youtu.be/dQw4w9WgXcQ"},
		{"line breaks become spaces", "Look at this\nhttps://vm.tiktok.com/ZMabc/", "Look at this https://vm.tiktok.com/ZMabc/"},
		{"only whitespace", " \t\r\n ", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := URL(tc.in); got != tc.out {
				t.Fatalf("URL(%q) = %q, want %q", tc.in, got, tc.out)
			}
		})
	}
}

func TestURL_Idempotent(t *testing.T) {
	t.Parallel()

	for _, in := range []string{
		"  ｈｔｔｐｓ://www.instagram.com/reel/C8xYz12AbCd/?igsh=MW \u200d",
		"@some_handle",
		"https://www.douyin.com/video/7312345678901234567",
	} {
		once := URL(in)
		if twice := URL(once); twice != once {
			t.Fatalf("URL not idempotent: %q -> %q -> %q", in, once, twice)
		}
	}
}

func TestSanitize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, out string
	}{
		{"clean", "clean"},
		{"a\x00b", "ab"},
		{"a\x7fb", "ab"},
		{"a\u0085b", "ab"},
		{"a\tb\r\nc", "a b  c"},
		{"caf\xc3", "caf"},
		{"한글 ok", "한글 ok"},
	}
	for _, tc := range tests {
		if got := Sanitize(tc.in); got != tc.out {
			t.Fatalf("Sanitize(%q) = %q, want %q", tc.in, got, tc.out)
		}
	}
}

func TestSanitize_CleanInputNoAlloc(t *testing.T) {
	in := "https://www.youtube.com/@veritasium"
	allocs := testing.AllocsPerRun(100, func() { _ = Sanitize(in) })
	if allocs != 0 {
		t.Fatalf("clean input allocated %v times", allocs)
	}
}
