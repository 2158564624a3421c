package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Синтаксические
	SynInfo              Code = 2000
	SynExpected          Code = 2001
	SynUnclosedDelimiter Code = 2002
	SynTooDeep           Code = 2003
	SynTrailingInput     Code = 2004

	// Форматирование
	FmtInfo          Code = 4000
	FmtIdentNotNFC   Code = 4001
	FmtTokenMismatch Code = 4002
	FmtNotFormatted  Code = 4003

	// IO
	IOInfo        Code = 5000
	IOReadError   Code = 5001
	IOWriteError  Code = 5002
	IOConfigError Code = 5003
)

var (
	codeDescription = map[Code]string{
		UnknownCode:          "Unknown error",
		SynInfo:              "Syntax information",
		SynExpected:          "Unexpected input",
		SynUnclosedDelimiter: "Unclosed delimiter",
		SynTooDeep:           "Nesting too deep",
		SynTrailingInput:     "Unexpected trailing input",
		FmtInfo:              "Formatter information",
		FmtIdentNotNFC:       "Identifier is not in Unicode NFC",
		FmtTokenMismatch:     "Formatting changed the token sequence",
		FmtNotFormatted:      "File is not formatted",
		IOInfo:               "I/O information",
		IOReadError:          "I/O read error",
		IOWriteError:         "I/O write error",
		IOConfigError:        "Invalid configuration",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("FMT%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
