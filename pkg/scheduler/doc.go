// Package scheduler implements an in-process periodic timer scheduler
//
// Callers register callbacks against a schedule (fixed period, one-shot
// delay, or cron expression) from any goroutine. A single dispatch goroutine
// drains due timers, invokes their callbacks outside the lock, re-arms
// recurring entries from the actual fire time, and sleeps until the earliest
// pending wake. Mutations signal the dispatcher only when they change the
// earliest wake time.
package scheduler
