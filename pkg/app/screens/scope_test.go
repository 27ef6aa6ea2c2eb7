package screens

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestScopeBeginCancelsPrevious(t *testing.T) {
	s := NewScope(context.Background())
	first, gen1 := s.Begin()
	second, gen2 := s.Begin()

	assert.Error(t, first.Err())
	assert.NoError(t, second.Err())
	assert.False(t, s.Current(gen1))
	assert.True(t, s.Current(gen2))
}

func TestScopeContextSurvivesReload(t *testing.T) {
	s := NewScope(context.Background())
	s.Begin()
	life, gen := s.Context()
	s.Begin()

	assert.NoError(t, life.Err())
	assert.False(t, s.Current(gen))
}

func TestScopeCloseDropsEverything(t *testing.T) {
	s := NewScope(context.Background())
	load, gen := s.Begin()
	life, _ := s.Context()
	s.Close()

	assert.Error(t, load.Err())
	assert.Error(t, life.Err())
	assert.False(t, s.Current(gen))

	_, next := s.Begin()
	assert.True(t, s.Current(next))
}

func TestScopeCloseStopsWorkers(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := NewScope(context.Background())
	ctx, _ := s.Begin()
	done := make(chan struct{})
	go func() {
		defer close(done)
		select {
		case <-ctx.Done():
		case <-time.After(10 * time.Second):
		}
	}()

	s.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker still running after Close")
	}
}
