package logger

import (
	"log/slog"
	"time"
)

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// CustomerID records the customer identifier under the key "customer_id".
func CustomerID(id string) slog.Attr {
	return slog.String("customer_id", id)
}

// ProductID records the product identifier under the key "product_id".
func ProductID(id string) slog.Attr {
	return slog.String("product_id", id)
}

// FireDate records a reminder fire date under the key "fire_date".
func FireDate(t time.Time) slog.Attr {
	return slog.Time("fire_date", t)
}

// ScheduleID records the schedule identifier under the key "schedule_id".
// If id is nil, it returns an empty Attr.
func ScheduleID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("schedule_id", id)
}
