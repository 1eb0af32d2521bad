package id

import (
	"testing"

	"github.com/google/uuid"
)

func TestTimeOrderedGeneratorProducesSortableUUIDs(t *testing.T) {
	t.Parallel()

	gen := NewTimeOrderedGenerator()
	first, err := gen.NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	second, err := gen.NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}

	parsed, err := uuid.Parse(first)
	if err != nil {
		t.Fatalf("parse id: %v", err)
	}
	if parsed.Version() != 7 {
		t.Fatalf("expected version 7, got=%d", parsed.Version())
	}
	if first >= second {
		t.Fatalf("expected increasing ids, got %s then %s", first, second)
	}
}
