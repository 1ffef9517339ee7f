package errno

// Errno defines the error code logic
type Errno struct {
	Code    int
	Message string
}

func (e Errno) Error() string {
	return e.Message
}

// Decode tries to convert an error to Errno
func Decode(err error) (int, string) {
	if err == nil {
		return OK.Code, OK.Message
	}

	switch typed := err.(type) {
	case *Errno:
		return typed.Code, typed.Message
	case Errno:
		return typed.Code, typed.Message
	case *NetworkError:
		return typed.Errno().Code, typed.Error()
	case *ProcessingError:
		return typed.Errno().Code, typed.Error()
	default:
		return InternalServerError.Code, err.Error()
	}
}

// Common Errors
var (
	OK                  = Errno{Code: 0, Message: "Success"}
	InternalServerError = Errno{Code: 10001, Message: "Internal server error"}
	ErrBind             = Errno{Code: 10002, Message: "Error occurred while binding the request body to the struct"}
)

// Configuration Errors (20100+): caller misuse, e.g. operating before initialization
var (
	ErrNotInitialized = Errno{Code: 20101, Message: "Bridge is not initialized"}
	ErrNoStorage      = Errno{Code: 20102, Message: "No session storage configured"}
	ErrNoOrigin       = Errno{Code: 20103, Message: "Origin is not configured"}
)

// Action Code Errors (20300+): bad, expired or malformed codes and recipients
var (
	ErrEmptyCode        = Errno{Code: 20301, Message: "Action code is empty"}
	ErrActionNotFound   = Errno{Code: 20302, Message: "Invalid or expired action code"}
	ErrMissingRecipient = Errno{Code: 20303, Message: "Action has no intended recipient"}
	ErrInvalidRecipient = Errno{Code: 20304, Message: "Action recipient is not a valid address"}
)

// Connection Errors (20400+): session and flow level failures
var (
	ErrNoSession         = Errno{Code: 20401, Message: "No session found"}
	ErrSessionExpired    = Errno{Code: 20402, Message: "Session expired"}
	ErrOriginMismatch    = Errno{Code: 20403, Message: "Session origin mismatch"}
	ErrSessionCorrupted  = Errno{Code: 20404, Message: "Stored session is not a recognized transaction"}
	ErrMemoMissing       = Errno{Code: 20405, Message: "No binding memo found in session transaction"}
	ErrMemoInvalid       = Errno{Code: 20406, Message: "Session binding memo failed validation"}
	ErrIncompleteAction  = Errno{Code: 20407, Message: "Action did not complete successfully"}
	ErrRecipientMismatch = Errno{Code: 20408, Message: "Session wallet does not match the action recipient"}
)

// IsInvalidCode reports whether err belongs to the action-code error class.
func IsInvalidCode(err error) bool {
	code, _ := Decode(err)
	return code >= 20300 && code < 20400
}

// IsConnection reports whether err belongs to the session/flow error class.
func IsConnection(err error) bool {
	code, _ := Decode(err)
	return code >= 20400 && code < 20500
}
