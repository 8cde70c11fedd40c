package calais

// WarningCode classifies a non-fatal warning.
type WarningCode string

const (
	WarnUnsupportedOutputTag WarningCode = "unsupported_output_tag"
	WarnOutputFormatReset    WarningCode = "output_format_reset"
	WarnMalformedMember      WarningCode = "malformed_member"
)

// Warning is a non-fatal diagnostic. It never aborts the call that produced it.
type Warning struct {
	Code    WarningCode
	Message string
	Value   string // offending value, e.g. the dropped tag
}

// WarningHandler receives warnings as they occur.
type WarningHandler func(Warning)

func (c *Client) emit(w Warning) {
	if c.warn != nil {
		c.warn(w)
		return
	}
	if c.logger != nil {
		c.logger.Warn(w.Message, "code", string(w.Code), "value", w.Value)
	}
}
