package types

import "strconv"

type Pid int32

func (p Pid) Int32() int32 {
	return int32(p)
}

func (p Pid) String() string {
	return strconv.FormatInt(int64(p), 10)
}
