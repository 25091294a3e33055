package trendingqueue

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// matchIgnoringScores compares command args positionally but skips any
// slot whose expected value parses as a number: schedule scores embed
// time.Now and cannot be pinned in a test.
func matchIgnoringScores(expected, actual []interface{}) error {
	if len(expected) != len(actual) {
		return fmt.Errorf("arg count mismatch: want %v, got %v", expected, actual)
	}
	for i := range expected {
		if isNumeric(expected[i]) {
			continue
		}
		if fmt.Sprint(expected[i]) != fmt.Sprint(actual[i]) {
			return fmt.Errorf("arg %d mismatch: want %v, got %v", i, expected[i], actual[i])
		}
	}
	return nil
}

func isNumeric(v interface{}) bool {
	switch v.(type) {
	case int, int64, float64:
		return true
	}
	return false
}

func TestEnqueue_UsesNXForCoalescing(t *testing.T) {
	rdc, mock := redismock.NewClientMock()
	q := New(rdc, Options{Delay: 5 * time.Second})

	mock.CustomMatch(matchIgnoringScores).
		ExpectZAddNX(schedKey, redis.Z{Score: 0, Member: "listing-1"}).
		SetVal(1)

	require.NoError(t, q.Enqueue(context.Background(), "listing-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunOne_SuccessClearsAttempts(t *testing.T) {
	rdc, mock := redismock.NewClientMock()
	q := New(rdc, Options{})

	mock.ExpectHDel(attemptsKey, "listing-1").SetVal(1)

	var got string
	q.runOne(context.Background(), func(_ context.Context, id string) error {
		got = id
		return nil
	}, "listing-1")

	require.Equal(t, "listing-1", got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunOne_FailureReschedulesWithBackoff(t *testing.T) {
	rdc, mock := redismock.NewClientMock()
	q := New(rdc, Options{MaxAttempts: 3, BackoffBase: time.Second})

	mock.ExpectHIncrBy(attemptsKey, "listing-1", 1).SetVal(1)
	mock.CustomMatch(matchIgnoringScores).
		ExpectZAdd(schedKey, redis.Z{Score: 0, Member: "listing-1"}).
		SetVal(1)

	q.runOne(context.Background(), func(context.Context, string) error {
		return errors.New("store unavailable")
	}, "listing-1")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunOne_DropsAfterAttemptBudget(t *testing.T) {
	rdc, mock := redismock.NewClientMock()
	q := New(rdc, Options{MaxAttempts: 3})

	mock.ExpectHIncrBy(attemptsKey, "listing-1", 1).SetVal(3)
	mock.ExpectHDel(attemptsKey, "listing-1").SetVal(1)

	q.runOne(context.Background(), func(context.Context, string) error {
		return errors.New("store unavailable")
	}, "listing-1")

	// no rescheduling once the budget is spent
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDrainDue(t *testing.T) {
	rdc, mock := redismock.NewClientMock()
	q := New(rdc, Options{BatchSize: 16})

	mock.CustomMatch(matchIgnoringScores).
		ExpectEvalSha(popDue.Hash(), []string{schedKey}, 0, 16).
		SetVal([]interface{}{"a", "b"})
	mock.ExpectHDel(attemptsKey, "a").SetVal(0)
	mock.ExpectHDel(attemptsKey, "b").SetVal(0)
	mock.CustomMatch(matchIgnoringScores).
		ExpectEvalSha(popDue.Hash(), []string{schedKey}, 0, 16).
		SetVal([]interface{}{})

	var seen []string
	q.drainDue(context.Background(), func(_ context.Context, id string) error {
		seen = append(seen, id)
		return nil
	})

	require.Equal(t, []string{"a", "b"}, seen)
	require.NoError(t, mock.ExpectationsWereMet())
}
