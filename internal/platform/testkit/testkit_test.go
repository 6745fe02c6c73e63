package testkit

import "testing"

func TestMustPanic(t *testing.T) {
	t.Parallel()

	MustPanic(t, func() {
		panic("boom")
	})
}

func TestMustNotPanic(t *testing.T) {
	t.Parallel()

	MustNotPanic(t, func() {})
}

func TestMustContain(t *testing.T) {
	t.Parallel()

	stream := "retry: 5000\n\nevent: ready\ndata: {}\n\n"
	MustContain(t, stream, "event: ready")
	MustNotContain(t, stream, "event: share")
}
