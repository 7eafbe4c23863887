package reader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCleanTextCollapsesWhitespaceAndPreservesParagraphs(t *testing.T) {
	input := "  Erster   Absatz \n\n Zweiter\tAbsatz \r\n\r\nDritte Zeile "
	got := CleanText(input)
	want := "Erster Absatz\n\nZweiter Absatz\n\nDritte Zeile"
	if got != want {
		t.Fatalf("CleanText mismatch\nwant: %q\ngot:  %q", want, got)
	}
}

func TestTruncateText(t *testing.T) {
	got, truncated := TruncateText("abcdefghijklmnopqrstuvwxyz", 10)
	if !truncated {
		t.Fatalf("expected truncated=true")
	}
	if got != "abcdefghi…" {
		t.Fatalf("unexpected truncated text: %q", got)
	}

	full, wasTruncated := TruncateText("Grüße", 10)
	if wasTruncated {
		t.Fatalf("expected truncated=false for short text")
	}
	if full != "Grüße" {
		t.Fatalf("unexpected short text: %q", full)
	}
}

func TestFetchPagePlainText(t *testing.T) {
	t.Parallel()

	languages := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		languages <- r.Header.Get("Accept-Language")
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Guten   Morgen\r\n\r\nWie geht es dir?"))
	}))
	defer server.Close()

	page, err := FetchPage(context.Background(), server.URL, FetchOptions{AcceptLanguage: "de", MaxChars: 20})
	if err != nil {
		t.Fatalf("FetchPage returned error: %v", err)
	}
	if gotLanguage := <-languages; gotLanguage != "de" {
		t.Fatalf("expected Accept-Language=de, got %q", gotLanguage)
	}
	if !page.Truncated || !strings.HasPrefix(page.Text, "Guten Morgen") {
		t.Fatalf("unexpected page: %+v", page)
	}
	if len([]rune(page.Text)) != 20 {
		t.Fatalf("expected 20 runes, got %d", len([]rune(page.Text)))
	}
}

func TestFetchPageErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/empty" {
			w.Header().Set("Content-Type", "text/plain")
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	if _, err := FetchPage(context.Background(), server.URL+"/missing", FetchOptions{}); err == nil || !strings.Contains(err.Error(), "status 404") {
		t.Fatalf("expected status error, got %v", err)
	}
	if _, err := FetchPage(context.Background(), server.URL+"/empty", FetchOptions{}); err == nil {
		t.Fatalf("expected error for empty page")
	}
	if _, err := FetchPage(context.Background(), "  ", FetchOptions{}); err == nil {
		t.Fatalf("expected error for blank url")
	}
}
