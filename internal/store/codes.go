package store

import (
	"fmt"
	"regexp"
	"strconv"
)

// Queue codes are <Letter>-<3 digits>: A-001 through A-999, then B-001, and so
// on. The letter space ends at Z-999; a day that burns through all 26x999
// codes fails loudly rather than wrapping.
const (
	FirstCode      = "A-001"
	codeNumberPad  = 3
	codesPerLetter = 999
)

var codePattern = regexp.MustCompile(`^([A-Z])-(\d{3})$`)

func FormatCode(letter byte, number int) string {
	return fmt.Sprintf("%c-%0*d", letter, codeNumberPad, number)
}

func ParseCode(code string) (byte, int, bool) {
	match := codePattern.FindStringSubmatch(code)
	if match == nil {
		return 0, 0, false
	}
	number, err := strconv.Atoi(match[2])
	if err != nil || number < 1 || number > codesPerLetter {
		return 0, 0, false
	}
	return match[1][0], number, true
}

// NextCode returns the code following last. A last code that does not parse
// falls back to the first code of the day.
func NextCode(last string) (string, error) {
	letter, number, ok := ParseCode(last)
	if !ok {
		return FirstCode, nil
	}
	number++
	if number > codesPerLetter {
		number = 1
		letter++
	}
	if letter > 'Z' {
		return "", ErrCodesExhausted
	}
	return FormatCode(letter, number), nil
}

// CodeForSequence maps a 1-based daily sequence value onto a code.
func CodeForSequence(seq int64) (string, error) {
	if seq < 1 {
		return "", fmt.Errorf("sequence must be positive, got %d", seq)
	}
	letter := 'A' + byte((seq-1)/codesPerLetter)
	if letter > 'Z' {
		return "", ErrCodesExhausted
	}
	number := int((seq-1)%codesPerLetter) + 1
	return FormatCode(letter, number), nil
}

// SequenceForCode is the inverse of CodeForSequence, used to seed the daily
// counter from rows that predate it. Unparseable codes seed to zero so the
// next join produces the first code.
func SequenceForCode(code string) int64 {
	letter, number, ok := ParseCode(code)
	if !ok {
		return 0
	}
	return int64(letter-'A')*codesPerLetter + int64(number)
}
