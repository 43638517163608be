package tonecurve

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestWriteCommands(t *testing.T) {
	directives := "img1.tif,warm.acv,0\r\n\nimg 2.tif,warm.acv,sky.psd,lift.acv,0\n"
	var out bytes.Buffer
	n, err := WriteCommands(&out, strings.NewReader(directives), BatchOptions{
		InputDir:  "/data/in",
		OutputDir: "/data/out",
		ACV:       "/data/curves/doc.psd",
	})
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("%d lines written, want 2", n)
	}
	want := "applyacv -i /data/in -o /data/out -a /data/curves/doc.psd -c img1.tif,warm.acv,0\n" +
		"applyacv -i /data/in -o /data/out -a /data/curves/doc.psd -c 'img 2.tif,warm.acv,sky.psd,lift.acv,0'\n"
	if out.String() != want {
		t.Fatalf("unexpected commands:\n%s", out.String())
	}
}

func TestWriteCommands_invalidLine(t *testing.T) {
	var out bytes.Buffer
	n, err := WriteCommands(&out, strings.NewReader("a.tif,c.acv,0\nb.tif,c.acv\n"), BatchOptions{Program: "x"})
	if !errors.Is(err, ErrInvalidDirective) {
		t.Fatalf("expected ErrInvalidDirective, got %v", err)
	}
	if n != 1 || !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("n = %d, err = %v", n, err)
	}
	if want := "x -i '' -o '' -a '' -c a.tif,c.acv,0\n"; out.String() != want {
		t.Fatalf("lines before the invalid one not written: %q", out.String())
	}
}

func TestShellQuote(t *testing.T) {
	for in, want := range map[string]string{
		"":            "''",
		"plain/path":  "plain/path",
		"with space":  "'with space'",
		"it's":        `'it'\''s'`,
		"$HOME/x":     "'$HOME/x'",
		"a.tif,b,c,0": "a.tif,b,c,0",
	} {
		if got := shellQuote(in); got != want {
			t.Fatalf("shellQuote(%q) = %q, want %q", in, got, want)
		}
	}
}
