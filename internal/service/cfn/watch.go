package cfn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
)

// WatchOptions はスタック状態の監視オプション
type WatchOptions struct {
	Interval time.Duration // ポーリング間隔
	Timeout  time.Duration // 0の場合は無制限
	Out      io.Writer     // スピナーの出力先（nilの場合は表示しない）
}

// IsTerminalStatus は処理中でない（完了または失敗で止まった）状態か判定
func IsTerminalStatus(status string) bool {
	return status != "" && !strings.HasSuffix(status, "_IN_PROGRESS")
}

// IsFailureStatus は失敗またはロールバックで終わった状態か判定
func IsFailureStatus(status string) bool {
	return strings.HasSuffix(status, "_FAILED") || strings.Contains(status, "ROLLBACK")
}

// WatchStack はスタックが処理中でなくなるまでポーリングし、最終状態を返す
// 失敗状態で終了した場合は ErrStackFailed を返す
func WatchStack(ctx context.Context, api API, stackName string, opts WatchOptions) (string, error) {
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Second
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	var bar *progressbar.ProgressBar
	if opts.Out != nil {
		bar = progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(opts.Out),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionSetDescription(fmt.Sprintf("スタック '%s' の状態を確認中...", stackName)),
			progressbar.OptionShowElapsedTimeOnFinish(),
		)
		defer func() { _ = bar.Finish() }()
	}

	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	last := ""
	for {
		stack, err := DescribeStack(ctx, api, stackName)
		if err != nil {
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return last, fmt.Errorf("スタック '%s' の監視がタイムアウトしました (最終状態: %s)", stackName, last)
			}
			return last, err
		}

		status := string(stack.StackStatus)
		if status != last {
			log.Debug().Str("stack", stackName).Str("status", status).Msg("stack status changed")
			if bar != nil {
				bar.Describe(fmt.Sprintf("%s: %s", stackName, status))
			}
			last = status
		}

		if IsTerminalStatus(status) {
			if IsFailureStatus(status) {
				return status, fmt.Errorf("%w: %s (%s)", ErrStackFailed, stackName, status)
			}
			return status, nil
		}

		if bar != nil {
			_ = bar.Add(1)
		}

		select {
		case <-ctx.Done():
			return last, fmt.Errorf("スタック '%s' の監視がタイムアウトしました (最終状態: %s): %w", stackName, last, ctx.Err())
		case <-ticker.C:
		}
	}
}
