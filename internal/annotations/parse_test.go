package annotations

import "testing"

func TestParseAnnotation(t *testing.T) {
	t.Run("well-formed json", func(t *testing.T) {
		raw := `{
			"analysis": "The text matches rule two.",
			"annotation": "2",
			"confidence": 85,
			"new_edge_case": false,
			"new_edge_case_rule": ""
		}`

		out, salvaged := parseAnnotation(raw)
		if salvaged {
			t.Fatal("salvaged = true, want strict parse")
		}
		if out.Analysis != "The text matches rule two." {
			t.Errorf("analysis = %q", out.Analysis)
		}
		if out.Label != "2" {
			t.Errorf("label = %q, want 2", out.Label)
		}
		if out.Confidence != 85 {
			t.Errorf("confidence = %v, want 85", out.Confidence)
		}
		if out.NewEdgeCase {
			t.Error("new_edge_case = true, want false")
		}
	})

	t.Run("fenced json", func(t *testing.T) {
		raw := "```json\n{\"analysis\": \"a\", \"annotation\": \"1\", \"confidence\": 70, \"new_edge_case\": true, \"new_edge_case_rule\": \"when sarcasm inverts sentiment -> annotate the intended meaning\"}\n```"

		out, salvaged := parseAnnotation(raw)
		if salvaged {
			t.Fatal("salvaged = true, want strict parse")
		}
		if out.Label != "1" {
			t.Errorf("label = %q, want 1", out.Label)
		}
		if !out.NewEdgeCase {
			t.Error("new_edge_case = false, want true")
		}
		if out.GuidelineImprovement != "when sarcasm inverts sentiment -> annotate the intended meaning" {
			t.Errorf("rule = %q", out.GuidelineImprovement)
		}
	})

	t.Run("reasoning preamble is discarded", func(t *testing.T) {
		raw := "First I consider the guideline.\nThe rules suggest label 3.\n</think>\n{\"analysis\": \"a\", \"annotation\": \"3\", \"confidence\": 90, \"new_edge_case\": false, \"new_edge_case_rule\": \"\"}"

		out, salvaged := parseAnnotation(raw)
		if salvaged {
			t.Fatal("salvaged = true, want strict parse")
		}
		if out.Label != "3" {
			t.Errorf("label = %q, want 3", out.Label)
		}
	})

	t.Run("string-typed fields coerce", func(t *testing.T) {
		raw := `{"analysis": "a", "annotation": 2, "confidence": "75", "new_edge_case": "true", "new_edge_case_rule": ""}`

		out, salvaged := parseAnnotation(raw)
		if salvaged {
			t.Fatal("salvaged = true, want strict parse")
		}
		if out.Label != "2" {
			t.Errorf("label = %q, want 2", out.Label)
		}
		if out.Confidence != 75 {
			t.Errorf("confidence = %v, want 75", out.Confidence)
		}
		if !out.NewEdgeCase {
			t.Error("new_edge_case = false, want true")
		}
	})

	t.Run("missing field falls to salvage", func(t *testing.T) {
		raw := `{"analysis": "a", "annotation": "1", "confidence": 80}`

		_, salvaged := parseAnnotation(raw)
		if !salvaged {
			t.Error("salvaged = false, want salvage for missing contract fields")
		}
	})

	t.Run("loose lines salvage recoverable fields", func(t *testing.T) {
		raw := "\"analysis\": \"The example is ambiguous between labels.\"\n" +
			"\"annotation\": \"4\"\n" +
			"\"confidence\": 62.5\n" +
			"\"new_edge_case\": true\n" +
			"\"new_edge_case_rule\": \"when negation flips the claim -> annotate the negated form\"\n"

		out, salvaged := parseAnnotation(raw)
		if !salvaged {
			t.Fatal("salvaged = false, want salvage path")
		}
		if out.Label != "4" {
			t.Errorf("label = %q, want 4", out.Label)
		}
		if out.Confidence != 62.5 {
			t.Errorf("confidence = %v, want 62.5", out.Confidence)
		}
		if !out.NewEdgeCase {
			t.Error("new_edge_case = false, want true")
		}
		if out.Analysis != "The example is ambiguous between labels." {
			t.Errorf("analysis = %q", out.Analysis)
		}
	})

	t.Run("unrecoverable output keeps neutral defaults", func(t *testing.T) {
		out, salvaged := parseAnnotation("I cannot help with that request.")
		if !salvaged {
			t.Fatal("salvaged = false, want salvage path")
		}
		if out.Label != "-1" {
			t.Errorf("label = %q, want -1", out.Label)
		}
		if out.Confidence != 50 {
			t.Errorf("confidence = %v, want 50", out.Confidence)
		}
		if out.NewEdgeCase {
			t.Error("new_edge_case = true, want false")
		}
	})

	t.Run("empty output keeps neutral defaults", func(t *testing.T) {
		out, salvaged := parseAnnotation("")
		if !salvaged {
			t.Fatal("salvaged = false, want salvage path")
		}
		if out.Label != "-1" {
			t.Errorf("label = %q, want -1", out.Label)
		}
		if out.Confidence != 50 {
			t.Errorf("confidence = %v, want 50", out.Confidence)
		}
	})
}
