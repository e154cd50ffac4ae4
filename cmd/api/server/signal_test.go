package server

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWithSignal_CancelsOnSIGTERM(t *testing.T) {
	ctx, stop := WithSignal(context.Background())
	defer stop()

	assert.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context was not canceled")
	}
}

func TestWithSignal_StopCancels(t *testing.T) {
	ctx, stop := WithSignal(context.Background())
	stop()
	assert.Error(t, ctx.Err())
}
