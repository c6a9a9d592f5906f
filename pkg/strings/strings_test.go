package strings

import (
	"fmt"
	"testing"
)

func TestBytesToString(t *testing.T) {
	b := []byte("hello world")
	s := BytesToString(b)

	if s != "hello world" {
		t.Errorf("expected 'hello world', got '%s'", s)
	}

	// Test empty slice
	empty := BytesToString([]byte{})
	if empty != "" {
		t.Errorf("expected empty string, got '%s'", empty)
	}
}

func TestStringToBytes(t *testing.T) {
	s := "hello world"
	b := StringToBytes(s)

	if string(b) != "hello world" {
		t.Errorf("expected 'hello world', got '%s'", string(b))
	}

	// Test empty string
	empty := StringToBytes("")
	if empty != nil {
		t.Errorf("expected nil slice, got %v", empty)
	}
}

func TestClone_DoesNotAlias(t *testing.T) {
	b := []byte("mutable")
	view := BytesToString(b)
	owned := Clone(view)

	b[0] = 'M'
	if view != "Mutable" {
		t.Errorf("view should follow the buffer, got %q", view)
	}
	if owned != "mutable" {
		t.Errorf("clone should keep the original, got %q", owned)
	}
	if Clone("") != "" {
		t.Error("expected empty clone")
	}
}

func TestBuilder(t *testing.T) {
	builder := NewBuilder(32)

	builder.WriteString("hello")
	_ = builder.WriteByte(' ')
	_, _ = builder.Write([]byte("world"))

	result := builder.String()
	if result != "hello world" {
		t.Errorf("expected 'hello world', got '%s'", result)
	}

	if builder.Len() != 11 {
		t.Errorf("expected length 11, got %d", builder.Len())
	}

	builder.Reset()
	if builder.Len() != 0 {
		t.Errorf("expected empty builder after reset, got %d", builder.Len())
	}
}

func TestBuilderGrow(t *testing.T) {
	builder := NewBuilder(2)
	builder.WriteString("ab")
	builder.Grow(10)

	if builder.Cap()-builder.Len() < 10 {
		t.Errorf("expected room for 10 bytes, cap %d len %d", builder.Cap(), builder.Len())
	}
	if builder.String() != "ab" {
		t.Errorf("grow must keep content, got %q", builder.String())
	}
}

func TestBuildWith_ReturnsOwnedString(t *testing.T) {
	first := BuildWith(Small, func(b *Builder) {
		fmt.Fprintf(b, "row %d", 1)
	})
	second := BuildWith(Small, func(b *Builder) {
		b.WriteString("overwritten")
	})

	if first != "row 1" {
		t.Errorf("expected 'row 1', got %q", first)
	}
	if second != "overwritten" {
		t.Errorf("expected 'overwritten', got %q", second)
	}
}

func TestGetBuilder_UnknownSizeFallsBack(t *testing.T) {
	b := GetBuilder(BuilderSize(42))
	if b.Len() != 0 {
		t.Errorf("expected empty builder, got %d", b.Len())
	}
	PutBuilder(b, BuilderSize(42))
	PutBuilder(nil, Small)
}
