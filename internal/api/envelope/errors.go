package envelope

// ErrorDetail is one structured failure entry. Field and Type are null on the
// wire when empty.
type ErrorDetail struct {
	Field   *string `json:"field"`
	Message string  `json:"message"`
	Type    *string `json:"type"`
}

// Detailer is implemented by any error record that can describe itself as an
// ErrorDetail. ErrorDetail implements it by returning itself.
type Detailer interface {
	Detail() ErrorDetail
}

func (d ErrorDetail) Detail() ErrorDetail { return d }

// Msg is a detail with only a message.
func Msg(message string) ErrorDetail {
	return ErrorDetail{Message: message}
}

// FieldDetail is a detail bound to an input field. Empty field or typ are
// left null.
func FieldDetail(field, message, typ string) ErrorDetail {
	return ErrorDetail{Field: strPtr(field), Message: message, Type: strPtr(typ)}
}

// Fields maps loosely structured records (field/message/type keys) onto
// ErrorDetail. It is the public normalization hook for callers that hold
// error records as plain maps; Error takes it like any other Detailer. A
// missing message falls back to DefaultErrorMessage.
type Fields map[string]string

func (f Fields) Detail() ErrorDetail {
	msg := f["message"]
	if msg == "" {
		msg = DefaultErrorMessage
	}
	return FieldDetail(f["field"], msg, f["type"])
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
