package common

import "time"

// ThresholdsCacheTTL is zero so thresholds persist until overwritten.
const ThresholdsCacheTTL = 0 * time.Second
