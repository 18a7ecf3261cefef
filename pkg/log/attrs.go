package log

import "log/slog"

func DeviceID(id string) slog.Attr {
	return slog.String("device_id", id)
}

func SessionID[T interface{ String() string }](id T) slog.Attr {
	return slog.String("session_id", id.String())
}

func ProcessID[T interface{ String() string }](id T) slog.Attr {
	return slog.String("process_id", id.String())
}

func Database(name string) slog.Attr {
	return slog.String("database", name)
}

func Status(status string) slog.Attr {
	return slog.String("status", status)
}

func Error(err error) slog.Attr {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return slog.String("error", msg)
}
