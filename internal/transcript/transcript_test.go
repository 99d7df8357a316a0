package transcript

import "testing"

func TestCorrectPhoneticMisspelling(t *testing.T) {
	c := New([]string{"Kubernetes", "PostgreSQL", "Redis"})

	got, corrections := c.Correct("We deployed it on Cubernetes last year.")
	if got != "We deployed it on Kubernetes last year." {
		t.Errorf("corrected = %q", got)
	}
	if len(corrections) != 1 {
		t.Fatalf("corrections = %d, want 1", len(corrections))
	}
	if corrections[0].Original != "Cubernetes" || corrections[0].Corrected != "Kubernetes" {
		t.Errorf("correction = %+v", corrections[0])
	}
	if corrections[0].Confidence <= 0 {
		t.Error("confidence not reported")
	}
}

func TestCorrectLeavesOrdinaryWordsAlone(t *testing.T) {
	c := New(nil)

	in := "I worked with a small team and we shipped on time."
	got, corrections := c.Correct(in)
	if got != in {
		t.Errorf("ordinary text changed: %q", got)
	}
	if corrections != nil {
		t.Errorf("unexpected corrections: %v", corrections)
	}
}

func TestCorrectSkipsExactTerms(t *testing.T) {
	c := New([]string{"Redis"})

	in := "We cached sessions in Redis."
	got, corrections := c.Correct(in)
	if got != in || corrections != nil {
		t.Errorf("exact term rewritten: %q %v", got, corrections)
	}
}

func TestCorrectPreservesPunctuation(t *testing.T) {
	c := New([]string{"PostgreSQL"})

	got, _ := c.Correct("We stored everything in Postgresql, obviously.")
	if got != "We stored everything in PostgreSQL, obviously." {
		t.Errorf("corrected = %q", got)
	}
}

func TestCorrectEmptyInput(t *testing.T) {
	c := New(nil)
	if got, corr := c.Correct(""); got != "" || corr != nil {
		t.Errorf("empty input: %q %v", got, corr)
	}
}

func TestShortTokensIgnored(t *testing.T) {
	c := New([]string{"Rust"})
	in := "I am not a rat."
	if got, _ := c.Correct(in); got != in {
		t.Errorf("short token corrected: %q", got)
	}
}
