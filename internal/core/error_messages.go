package core

// error_messages.go maps technical errors to user-friendly messages with
// support codes.
//
// Codes by category:
//
//	FILE001 - workbook unreadable        FILE004 - no data rows
//	FILE002 - no valid sheet             FILE005 - unsupported file type
//	FILE003 - missing columns            FILE006 - no file provided
//
//	VAL001  - row validation errors outstanding (submit blocked)
//
//	EDIT001 - no cell being edited       EDIT002 - bad cell reference
//
//	SES001  - no dataset loaded
//
// Ingestion failures are matched by their typed kind first; everything
// else falls back to case-insensitive substring patterns, specific before
// general. Unmatched errors get ERR000 and should be diagnosed from the
// server logs.

import (
	"errors"
	"strings"

	"cargue/internal/ingest"
)

// UserMessage is user-facing error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// errorPattern pairs a substring pattern with its user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{
		pattern: "unsupported file type",
		msg: UserMessage{
			Message: "This file type is not supported",
			Action:  "Upload an .xlsx workbook",
			Code:    "FILE005",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Choose a workbook to import",
			Code:    "FILE006",
		},
	},
	{
		pattern: "submit blocked",
		msg: UserMessage{
			Message: "The dataset still has validation errors",
			Action:  "Fix the flagged cells before submitting",
			Code:    "VAL001",
		},
	},
	{
		pattern: "no cell is being edited",
		msg: UserMessage{
			Message: "No cell is open for editing",
			Action:  "Start an edit before sending a value",
			Code:    "EDIT001",
		},
	},
	{
		pattern: "out of range",
		msg: UserMessage{
			Message: "That cell does not exist in the current dataset",
			Action:  "Reload the table and try again",
			Code:    "EDIT002",
		},
	},
	{
		pattern: "unknown catalog field",
		msg: UserMessage{
			Message: "That column is not part of the import layout",
			Action:  "Reload the table and try again",
			Code:    "EDIT002",
		},
	},
	{
		pattern: "no dataset loaded",
		msg: UserMessage{
			Message: "No file has been imported yet",
			Action:  "Import a workbook first",
			Code:    "SES001",
		},
	},
}

// ingestMessages maps typed ingestion failures to user messages.
var ingestMessages = map[ingest.ErrorKind]UserMessage{
	ingest.Unreadable: {
		Message: "The file could not be read as an Excel workbook",
		Action:  "Check the file and export it again as .xlsx",
		Code:    "FILE001",
	},
	ingest.NoValidSheet: {
		Message: "No sheet with the required layout was found",
		Action:  "Use the provided template (sheet \"Hoja_Cargue\")",
		Code:    "FILE002",
	},
	ingest.MissingColumns: {
		Message: "The sheet is missing required columns",
		Action:  "Add the missing columns to the header row",
		Code:    "FILE003",
	},
	ingest.NoData: {
		Message: "No data rows were found in the sheet",
		Action:  "Fill the template below the header row",
		Code:    "FILE004",
	},
}

// MapError converts a technical error into a UserMessage. The original
// error should still be logged server-side for diagnosis.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{Message: "Operation completed", Code: "OK"}
	}

	var ingErr *ingest.Error
	if errors.As(err, &ingErr) {
		msg := ingestMessages[ingErr.Kind]
		if msg.Code == "" {
			msg = UserMessage{Message: "The file could not be imported", Code: "FILE000"}
		}
		if ingErr.Kind == ingest.MissingColumns {
			msg.Message = "Missing required columns: " + strings.Join(ingErr.Missing, ", ")
		}
		return msg
	}

	errStr := strings.ToLower(err.Error())
	for _, p := range errorPatterns {
		if strings.Contains(errStr, p.pattern) {
			return p.msg
		}
	}

	return UserMessage{
		Message: "Something went wrong",
		Action:  "Try again, and quote code ERR000 to support if it persists",
		Code:    "ERR000",
	}
}
