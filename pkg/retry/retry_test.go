package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.Equal(t, uint64(DefaultMaxRetries), cfg.MaxRetries)
	require.Equal(t, InitialBackoffInterval, cfg.InitialInterval)
	require.Equal(t, MaxBackoffInterval, cfg.MaxInterval)
}

func TestNewBackOffPolicy(t *testing.T) {
	ctx := context.Background()
	cfg := Config{
		MaxRetries:      5,
		InitialInterval: 10 * time.Millisecond,
		MaxInterval:     500 * time.Millisecond,
	}

	bo := newBackOffPolicy(ctx, cfg)
	require.NotNil(t, bo)
	require.Equal(t, ctx, bo.Context())
}

func TestDo(t *testing.T) {
	// テスト用の高速な設定
	testCfg := Config{MaxRetries: 3, InitialInterval: 1 * time.Millisecond, MaxInterval: 10 * time.Millisecond}
	opName := "test_operation"

	maxRetriesErrText := fmt.Sprintf("%sに失敗しました: 最大リトライ回数 (%d回) に到達。最終エラー: 一時的なエラーが発生、リトライします: retryable error", opName, testCfg.MaxRetries)

	canceledCtx, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name          string
		ctx           context.Context
		operation     Operation
		shouldRetry   ShouldRetryFunc
		expectedCalls int
		expectedError string
		contains      bool
	}{
		{
			name:          "successful operation",
			ctx:           context.Background(),
			operation:     func() error { return nil },
			shouldRetry:   func(err error) bool { return false },
			expectedCalls: 1,
		},
		{
			name: "retryable error and success within max retries",
			ctx:  context.Background(),
			operation: func() Operation {
				attempt := 0
				return func() error {
					attempt++
					if attempt < 3 {
						return errors.New("retryable error")
					}
					return nil
				}
			}(),
			shouldRetry:   func(err error) bool { return true },
			expectedCalls: 3,
		},
		{
			name:          "non retryable error stops immediately",
			ctx:           context.Background(),
			operation:     func() error { return errors.New("permanent error") },
			shouldRetry:   func(err error) bool { return false },
			expectedCalls: 1,
			expectedError: "致命的なエラーのためリトライを中止: permanent error",
		},
		{
			name:          "max retries exceeded",
			ctx:           context.Background(),
			operation:     func() error { return errors.New("retryable error") },
			shouldRetry:   func(err error) bool { return true },
			expectedCalls: 4,
			expectedError: maxRetriesErrText,
		},
		{
			name:          "context canceled",
			ctx:           canceledCtx,
			operation:     func() error { return errors.New("some error") },
			shouldRetry:   func(err error) bool { return true },
			expectedCalls: 1,
			expectedError: "test_operationに失敗しました: コンテキストタイムアウト/キャンセル: context canceled",
			contains:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			op := func() error {
				calls++
				return tt.operation()
			}

			err := Do(tt.ctx, testCfg, opName, op, tt.shouldRetry)

			require.Equal(t, tt.expectedCalls, calls)
			if tt.expectedError == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tt.contains {
				require.Contains(t, err.Error(), tt.expectedError)
			} else {
				require.Equal(t, tt.expectedError, err.Error())
			}
		})
	}
}

func TestDo_PreservesWrappedError(t *testing.T) {
	sentinel := errors.New("sentinel")
	cfg := Config{MaxRetries: 1, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond}

	err := Do(context.Background(), cfg, "op", func() error { return sentinel }, func(error) bool { return true })
	require.ErrorIs(t, err, sentinel)

	err = Do(context.Background(), cfg, "op", func() error { return sentinel }, func(error) bool { return false })
	require.ErrorIs(t, err, sentinel)
}
