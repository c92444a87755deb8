package model

import "time"

// RefreshSummary captures metrics from a single refresh run.
type RefreshSummary struct {
	RunID string

	Referrals    int64
	Transactions int64
	Denials      int64
	Episodes     int64

	// Data-quality counters; none of these fail the run.
	UnattributedTransactions int64
	UnattributedDenials      int64
	DegenerateEpisodes       int64
	SelfPayEpisodes          int64
	CrosswalkMisses          int64

	DurationSnapshot time.Duration
	DurationCompute  time.Duration
	DurationWrite    time.Duration
	DurationTotal    time.Duration
}
