package workflow_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/dalemusser/projecthub/internal/app/system/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(name string, log *[]string) workflow.Step {
	return workflow.Step{
		Name: name,
		Do: func(context.Context) error {
			*log = append(*log, name)
			return nil
		},
		Compensate: func(context.Context) error {
			*log = append(*log, "undo:"+name)
			return nil
		},
	}
}

func TestRun_AllSucceed(t *testing.T) {
	var log []string
	rep, err := workflow.Run(context.Background(), ok("a", &log), ok("b", &log))
	require.NoError(t, err)
	assert.True(t, rep.OK())
	assert.Equal(t, []string{"a", "b"}, rep.Completed)
	assert.Equal(t, []string{"a", "b"}, log)
}

func TestRun_RequiredFailureCompensatesInReverse(t *testing.T) {
	var log []string
	boom := errors.New("boom")
	failing := workflow.Step{Name: "c", Do: func(context.Context) error { return boom }}

	rep, err := workflow.Run(context.Background(), ok("a", &log), ok("b", &log), failing, ok("d", &log))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	we, isWF := workflow.AsError(err)
	require.True(t, isWF)
	assert.Equal(t, "c", we.Step)

	assert.Equal(t, []string{"a", "b", "undo:b", "undo:a"}, log)
	assert.Equal(t, []string{"a", "b"}, rep.Completed)
	assert.Equal(t, []string{"b", "a"}, rep.Compensated)
	assert.Equal(t, []string{"c"}, rep.Incomplete())
}

func TestRun_OptionalFailureContinues(t *testing.T) {
	var log []string
	opt := workflow.Step{
		Name:     "provision",
		Optional: true,
		Do:       func(context.Context) error { return errors.New("s3 down") },
	}
	rep, err := workflow.Run(context.Background(), ok("a", &log), opt, ok("b", &log))
	require.NoError(t, err)
	assert.False(t, rep.OK())
	assert.Equal(t, []string{"provision"}, rep.Incomplete())
	assert.Equal(t, []string{"a", "b"}, rep.Completed)
	assert.Error(t, rep.Err())
}

func TestFanOut_JoinsAllAndReportsFirstFailureInOrder(t *testing.T) {
	var calls int32
	mk := func(name string, err error) workflow.Step {
		return workflow.Step{Name: name, Do: func(context.Context) error {
			atomic.AddInt32(&calls, 1)
			return err
		}}
	}
	e2 := errors.New("second")
	e4 := errors.New("fourth")

	rep, err := workflow.FanOut(context.Background(), 2,
		mk("s1", nil), mk("s2", e2), mk("s3", nil), mk("s4", e4))

	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
	require.Error(t, err)
	assert.ErrorIs(t, err, e2)
	assert.Equal(t, []string{"s1", "s3"}, rep.Completed)
	assert.Equal(t, []string{"s2", "s4"}, rep.Incomplete())

	we, isWF := workflow.AsError(err)
	require.True(t, isWF)
	assert.Equal(t, "s2", we.Step)
	assert.Equal(t, rep.Completed, we.Report.Completed)
}

func TestFanOut_Empty(t *testing.T) {
	rep, err := workflow.FanOut(context.Background(), 0)
	require.NoError(t, err)
	assert.True(t, rep.OK())
}
