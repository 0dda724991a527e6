package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func staticProbe(name string, linked bool, err error) LinkProbe {
	return LinkProbe{
		Name: name,
		Check: func(context.Context, string) (bool, error) {
			return linked, err
		},
	}
}

func TestProbeRun(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	assert.Equal(t, LinkFound, staticProbe("a", true, nil).Run(ctx, "doc-1", logger))
	assert.Equal(t, LinkNotFound, staticProbe("a", false, nil).Run(ctx, "doc-1", logger))
	assert.Equal(t, LinkInconclusive,
		staticProbe("a", false, errors.New("boom")).Run(ctx, "doc-1", logger))
}

func TestAnyLinked_FirstHitWins(t *testing.T) {
	var laterCalled bool
	probes := []LinkProbe{
		staticProbe("first", true, nil),
		{Name: "later", Check: func(context.Context, string) (bool, error) {
			laterCalled = true
			return false, nil
		}},
	}
	assert.True(t, anyLinked(context.Background(), probes, "doc-1", zap.NewNop()))
	assert.False(t, laterCalled)
}

func TestAnyLinked_InconclusiveSkipped(t *testing.T) {
	probes := []LinkProbe{
		staticProbe("broken", false, errors.New("boom")),
		staticProbe("working", true, nil),
	}
	assert.True(t, anyLinked(context.Background(), probes, "doc-1", zap.NewNop()))
}

func TestAnyLinked_AllInconclusiveMeansNotLinked(t *testing.T) {
	probes := []LinkProbe{
		staticProbe("a", false, errors.New("boom")),
		staticProbe("b", false, errors.New("boom")),
	}
	assert.False(t, anyLinked(context.Background(), probes, "doc-1", zap.NewNop()))
}
