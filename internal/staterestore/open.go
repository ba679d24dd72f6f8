// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package staterestore

import (
	"context"
	"os"

	"github.com/jontk/slurmctld/pkg/retry"
)

// OpenStream opens a state-save file under backoff, the one place in this
// core retry applies: a state-save directory is plausibly network-mounted
// and briefly unavailable, unlike a configuration-file parse error, which
// is never retried because rereading the same bytes reproduces the same
// mistake.
func OpenStream(ctx context.Context, path string, backoff retry.BackoffStrategy) (*os.File, error) {
	return retry.RetryWithResult(ctx, backoff, func() (*os.File, error) {
		return os.Open(path)
	})
}
