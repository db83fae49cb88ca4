package types

import "time"

func TimeFromMillisecondTimestamp(timestamp int64) time.Time {
	return time.Unix(timestamp/1000, (timestamp%1000)*int64(time.Millisecond))
}

func TimeFromTimestamp(timestamp int64) time.Time {
	return time.Unix(timestamp, 0)
}
