package protocol

// ErrorCode identifies the type of error.
type ErrorCode uint16

const (
	ErrUnknown           ErrorCode = 0x0000 // Unknown error
	ErrInvalidFrame      ErrorCode = 0x0001 // Malformed frame
	ErrInvalidOp         ErrorCode = 0x0002 // Malformed or rejected operation
	ErrUnknownCollection ErrorCode = 0x0003 // No such collection
	ErrUnauthorized      ErrorCode = 0x0004 // Missing or invalid token
	ErrQueueOverflow     ErrorCode = 0x0005 // Client send queue overflowed
	ErrServerError       ErrorCode = 0x0100 // Internal server error
)

// String returns the string representation of the error code.
func (ec ErrorCode) String() string {
	switch ec {
	case ErrInvalidFrame:
		return "InvalidFrame"
	case ErrInvalidOp:
		return "InvalidOp"
	case ErrUnknownCollection:
		return "UnknownCollection"
	case ErrUnauthorized:
		return "Unauthorized"
	case ErrQueueOverflow:
		return "QueueOverflow"
	case ErrServerError:
		return "ServerError"
	default:
		return "Unknown"
	}
}

// ErrorMessage is sent when an error occurs.
type ErrorMessage struct {
	Code    ErrorCode // Error code
	ID      uint64    // ID of the OpMessage that failed, if any
	Message string    // Human-readable error message
	Fatal   bool      // If true, the connection is closed after this frame
}

// EncodeErrorMessage encodes an ErrorMessage to bytes.
func EncodeErrorMessage(em *ErrorMessage) []byte {
	e := NewEncoder()
	e.WriteUvarint(uint64(em.Code))
	e.WriteUvarint(em.ID)
	e.WriteString(em.Message)
	if em.Fatal {
		e.WriteByte(1)
	} else {
		e.WriteByte(0)
	}
	return e.Bytes()
}

// DecodeErrorMessage decodes an ErrorMessage from bytes.
func DecodeErrorMessage(data []byte) (*ErrorMessage, error) {
	d := NewDecoder(data)
	code, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	id, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	message, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	fatal, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	return &ErrorMessage{
		Code:    ErrorCode(code),
		ID:      id,
		Message: message,
		Fatal:   fatal != 0,
	}, nil
}

// NewError creates a non-fatal ErrorMessage.
func NewError(code ErrorCode, message string) *ErrorMessage {
	return &ErrorMessage{Code: code, Message: message}
}

// NewFatalError creates a fatal ErrorMessage.
func NewFatalError(code ErrorCode, message string) *ErrorMessage {
	return &ErrorMessage{Code: code, Message: message, Fatal: true}
}

// Error implements the error interface.
func (em *ErrorMessage) Error() string {
	if em.Fatal {
		return "fatal: " + em.Code.String() + ": " + em.Message
	}
	return em.Code.String() + ": " + em.Message
}

// Frame encodes the message into a FrameError.
func (em *ErrorMessage) Frame() *Frame {
	return NewFrame(FrameError, EncodeErrorMessage(em))
}
