// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package sweeper removes expired polls in the background.

A Sweeper is owned by the composition root and started explicitly:

	sw := sweeper.New(st, time.Hour, logger, m)
	sw.Start(ctx)
	defer sw.Stop()

Each run finds polls still flagged active whose expiry has passed, deletes
their votes, then deletes the polls. Failures are logged and counted; the
next tick simply tries again.
*/
package sweeper
