package wallet

import "time"

// NoopMetricsCollector is a no-op implementation of MetricsCollector
type NoopMetricsCollector struct{}

func (n *NoopMetricsCollector) RecordOperationDuration(string, time.Duration) {}
func (n *NoopMetricsCollector) RecordOperationResult(string, string)          {}
func (n *NoopMetricsCollector) RecordCacheHit(string)                         {}
func (n *NoopMetricsCollector) RecordCacheMiss(string)                        {}
func (n *NoopMetricsCollector) RecordBalanceChange(string, float64)           {}
func (n *NoopMetricsCollector) RecordError(string, string)                    {}
func (n *NoopMetricsCollector) RecordTransaction(string, float64)             {}
func (n *NoopMetricsCollector) RecordTransactionVolume(string, float64)       {}
func (n *NoopMetricsCollector) RecordTransition(string, string)               {}
func (n *NoopMetricsCollector) RecordWebhook(string, string)                  {}
