package errno

import "errors"

// Display 展示给用户的错误信息
type Display struct {
	Title   string
	Message string
	Hint    string // 仅网络错误携带
}

// Normalize is the single conversion point between internal errors and what
// the UI shows. Already-specific errors pass through with their own message
// instead of being wrapped a second time.
func Normalize(err error) Display {
	if err == nil {
		return Display{}
	}

	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return Display{
			Title:   "Connection Problem",
			Message: netErr.Error(),
			Hint:    netErr.Hint,
		}
	}

	var procErr *ProcessingError
	if errors.As(err, &procErr) {
		return Display{Title: "Action Failed", Message: procErr.Error()}
	}

	if IsInvalidCode(err) {
		_, msg := Decode(err)
		return Display{Title: "Invalid Code", Message: msg}
	}

	if IsConnection(err) {
		_, msg := Decode(err)
		return Display{Title: "Connection Failed", Message: msg}
	}

	return Display{Title: "Something Went Wrong", Message: err.Error()}
}
