package logging

import "log/slog"

// Field names shared by every service log line.
const (
	FieldService   = "service"
	FieldRequestID = "request_id"
	FieldUserID    = "user_id"
	FieldCompanyID = "company_id"
	FieldCaseID    = "case_id"
	FieldAssetID   = "asset_id"
	FieldIOCID     = "ioc_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldDuration  = "duration_ms"
	FieldError     = "error"
)

func Service(name string) slog.Attr {
	return slog.String(FieldService, name)
}

func UserID(id int64) slog.Attr {
	return slog.Int64(FieldUserID, id)
}

func CompanyID(id int64) slog.Attr {
	return slog.Int64(FieldCompanyID, id)
}

func CaseID(id int64) slog.Attr {
	return slog.Int64(FieldCaseID, id)
}

func AssetID(id int64) slog.Attr {
	return slog.Int64(FieldAssetID, id)
}

func IOCID(id int64) slog.Attr {
	return slog.Int64(FieldIOCID, id)
}

func Method(method string) slog.Attr {
	return slog.String(FieldMethod, method)
}

func Path(path string) slog.Attr {
	return slog.String(FieldPath, path)
}

func Status(code int) slog.Attr {
	return slog.Int(FieldStatus, code)
}

// Duration returns the attribute in milliseconds.
func Duration(ms int64) slog.Attr {
	return slog.Int64(FieldDuration, ms)
}

// Error returns an attribute for err. A nil error logs as an empty string.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(FieldError, "")
	}
	return slog.String(FieldError, err.Error())
}
