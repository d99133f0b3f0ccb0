package handlers_test

import (
	"strings"
	"testing"

	"github.com/annolab/curator/pkg/handlers"
)

type payload struct {
	TaskID   string   `validate:"required"`
	Examples []string `validate:"required,min=1"`
	Round    int      `validate:"gte=0"`
}

func TestValidate(t *testing.T) {
	t.Run("valid payload passes", func(t *testing.T) {
		p := payload{TaskID: "sentiment", Examples: []string{"a"}, Round: 0}
		if err := handlers.Validate(p); err != nil {
			t.Fatalf("Validate error: %v", err)
		}
	})

	t.Run("missing required field", func(t *testing.T) {
		p := payload{Examples: []string{"a"}}
		err := handlers.Validate(p)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "TaskID failed required validation") {
			t.Errorf("error %q does not name TaskID", err.Error())
		}
	})

	t.Run("multiple failures joined", func(t *testing.T) {
		p := payload{Round: -1}
		err := handlers.Validate(p)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		for _, want := range []string{"TaskID", "Examples", "Round"} {
			if !strings.Contains(err.Error(), want) {
				t.Errorf("error %q missing field %s", err.Error(), want)
			}
		}
	})

	t.Run("empty slice fails", func(t *testing.T) {
		p := payload{TaskID: "sentiment", Examples: []string{}}
		err := handlers.Validate(p)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "Examples") {
			t.Errorf("error %q does not report Examples", err.Error())
		}
	})
}
