package providers

import "testing"

func TestParseProviderListOrder(t *testing.T) {
	refs := ParseProviderList("openai|gemini|pseudo")
	if len(refs) != 3 {
		t.Fatalf("expected 3 refs, got %d", len(refs))
	}
	want := []string{"openai", "gemini", "pseudo"}
	for i, ref := range refs {
		if ref.Name != want[i] {
			t.Fatalf("ref %d name = %q, want %q", i, ref.Name, want[i])
		}
		if ref.KeyAlias != "" {
			t.Fatalf("ref %d has unexpected alias %q", i, ref.KeyAlias)
		}
	}
}

func TestParseProviderListKeyAlias(t *testing.T) {
	refs := ParseProviderList("openai:work | mock")
	if len(refs) != 2 {
		t.Fatalf("expected 2 refs, got %d", len(refs))
	}
	if refs[0].Name != "openai" || refs[0].KeyAlias != "work" {
		t.Fatalf("bad first ref: %+v", refs[0])
	}
	if refs[0].Raw != "openai:work" {
		t.Fatalf("raw should keep the alias, got %q", refs[0].Raw)
	}
	if refs[1].Name != "mock" {
		t.Fatalf("bad second ref: %+v", refs[1])
	}
}

func TestParseProviderListSkipsEmptyEntries(t *testing.T) {
	refs := ParseProviderList("|openai||")
	if len(refs) != 1 || refs[0].Name != "openai" {
		t.Fatalf("expected single openai ref, got %+v", refs)
	}
	if refs := ParseProviderList(""); len(refs) != 0 {
		t.Fatalf("expected no refs for empty spec, got %+v", refs)
	}
}
