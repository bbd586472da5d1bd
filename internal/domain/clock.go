package domain

import (
	"fmt"
	"time"
)

const OrderDateLayout = "02/01/2006"

// CreatedAtStamp renders t as Unix seconds with a microsecond fraction, e.g. "1717171717.123456".
func CreatedAtStamp(t time.Time) string {
	return fmt.Sprintf("%d.%06d", t.Unix(), t.Nanosecond()/int(time.Microsecond))
}

func OrderDateStamp(t time.Time) string {
	return t.Format(OrderDateLayout)
}
