package langdetect

import "testing"

func TestLanguageForCode(t *testing.T) {
	t.Parallel()

	if _, ok := languageForCode("de"); !ok {
		t.Fatalf("expected de to resolve to a lingua language")
	}
	if _, ok := languageForCode(" EN "); !ok {
		t.Fatalf("expected EN to resolve to a lingua language")
	}
	if _, ok := languageForCode("xx"); ok {
		t.Fatalf("did not expect xx to resolve")
	}
}

func TestDetectISO6391(t *testing.T) {
	t.Parallel()

	detector := New([]string{"de", "en", "fr", "it", "es"})

	if got := detector.DetectISO6391("Guten Morgen, wie geht es dir heute?"); got != "de" {
		t.Fatalf("unexpected detection for German sample: %q", got)
	}
	if got := detector.DetectISO6391("ok"); got != "" {
		t.Fatalf("expected short sample to be undetected, got %q", got)
	}
	if got := detector.DetectISO6391("   "); got != "" {
		t.Fatalf("expected blank sample to be undetected, got %q", got)
	}

	var nilDetector *Detector
	if got := nilDetector.DetectISO6391("Guten Morgen"); got != "" {
		t.Fatalf("expected nil detector to return empty, got %q", got)
	}
}
