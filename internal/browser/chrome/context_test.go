package chrome

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type ctxKey struct{}

func TestCombine_CanceledByEither(t *testing.T) {
	tab, tabCancel := context.WithCancel(context.WithValue(context.Background(), ctxKey{}, "target"))
	defer tabCancel()
	op, opCancel := context.WithCancel(context.Background())

	combined, cancel := combine(tab, op)
	defer cancel()
	assert.Equal(t, "target", combined.Value(ctxKey{}))

	opCancel()
	select {
	case <-combined.Done():
	case <-time.After(time.Second):
		t.Fatal("combined context not canceled by op")
	}
	assert.NoError(t, tab.Err())
}

func TestCombine_InheritsOperationDeadline(t *testing.T) {
	op, opCancel := context.WithTimeout(context.Background(), time.Minute)
	defer opCancel()

	combined, cancel := combine(context.Background(), op)
	defer cancel()

	want, _ := op.Deadline()
	got, ok := combined.Deadline()
	assert.True(t, ok)
	assert.Equal(t, want, got)
}
