package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:   PhaseConstruct,
				Kind:    KindAlignment,
				Type:    "Foo",
				Variant: "B",
				Detail:  "has no enough alignment",
			},
			contains: []string{"[construct]", "insufficient_alignment", "`Foo::B`", "has no enough alignment"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseDecode,
				Kind:  KindOutOfBounds,
			},
			contains: []string{"[decode]", "out_of_bounds"},
		},
		{
			name: "variant without type",
			err: &Error{
				Phase:   PhaseRegister,
				Kind:    KindStructure,
				Variant: "A",
			},
			contains: []string{"variant `A`"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseLoad,
				Kind:   KindInvalidData,
				Detail: "decode wit",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[load]", "invalid_data", "decode wit", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseLoad,
		Kind:  KindInvalidData,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase:   PhaseConstruct,
		Kind:    KindAlignment,
		Variant: "B",
	}

	if !err.Is(&Error{Phase: PhaseConstruct, Kind: KindAlignment}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseRegister, Kind: KindAlignment}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseConstruct, Kind: KindStructure}) {
		t.Error("Is should not match different kind")
	}

	target := &Error{Phase: PhaseConstruct, Kind: KindAlignment}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseRegister, KindStructure).
		Type("Foo").
		Variant("B").
		Value(2).
		Cause(cause).
		Detail("expect at most %d payload field, got %d", 1, 2).
		Build()

	if err.Phase != PhaseRegister {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseRegister)
	}
	if err.Kind != KindStructure {
		t.Errorf("Kind = %v, want %v", err.Kind, KindStructure)
	}
	if err.Type != "Foo" || err.Variant != "B" {
		t.Errorf("Type/Variant = %q/%q, want Foo/B", err.Type, err.Variant)
	}
	if err.Value != 2 {
		t.Errorf("Value = %v, want 2", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expect at most 1 payload field, got 2" {
		t.Errorf("Detail = %q", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("InsufficientAlignment", func(t *testing.T) {
		err := InsufficientAlignment(PhaseConstruct, "Foo", "B", 1, 2)
		if err.Kind != KindAlignment {
			t.Errorf("Kind = %v, want %v", err.Kind, KindAlignment)
		}
		if !strings.Contains(err.Error(), "`Foo::B` - has no enough alignment") {
			t.Errorf("Error() = %q", err.Error())
		}
		if err.Value != uintptr(1) {
			t.Errorf("Value = %v, want 1", err.Value)
		}
	})

	t.Run("Footprint one word", func(t *testing.T) {
		err := Footprint("Ptr", 8, 8)
		if !strings.Contains(err.Detail, "nothing to compact") {
			t.Errorf("Detail = %q", err.Detail)
		}
	})

	t.Run("Footprint too large", func(t *testing.T) {
		err := Footprint("Big", 24, 8)
		if !strings.Contains(err.Detail, "cannot compact") {
			t.Errorf("Detail = %q", err.Detail)
		}
	})

	t.Run("Discriminant", func(t *testing.T) {
		err := Discriminant("Foo", "A", 7)
		if err.Kind != KindDiscriminant || err.Value != uint64(7) {
			t.Errorf("got %v / %v", err.Kind, err.Value)
		}
	})

	t.Run("TagOverflow", func(t *testing.T) {
		err := TagOverflow("Foo", 100, 7, 6)
		if err.Kind != KindTagOverflow {
			t.Errorf("Kind = %v", err.Kind)
		}
	})

	t.Run("Consumed", func(t *testing.T) {
		err := Consumed(PhaseAccess, "Foo")
		if err.Kind != KindConsumed || err.Phase != PhaseAccess {
			t.Errorf("got %v/%v", err.Phase, err.Kind)
		}
	})

	t.Run("UnknownVariant", func(t *testing.T) {
		err := UnknownVariant(PhaseConstruct, "Foo", 3)
		if !strings.Contains(err.Detail, "int") {
			t.Errorf("Detail = %q", err.Detail)
		}
	})

	t.Run("InvalidVariant", func(t *testing.T) {
		err := InvalidVariant(PhaseDecode, "Foo", 3, 3)
		if err.Kind != KindInvalidVariant {
			t.Errorf("Kind = %v", err.Kind)
		}
	})

	t.Run("OutOfBounds", func(t *testing.T) {
		err := OutOfBounds(PhaseDecode, 10, 5)
		if err.Kind != KindOutOfBounds {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOutOfBounds)
		}
		if err.Value != 10 {
			t.Errorf("Value = %v, want 10", err.Value)
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		err := Unsupported(PhaseRegister, "Foo", "owning variants in a trivial layout")
		if err.Kind != KindUnsupported {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnsupported)
		}
	})
}
