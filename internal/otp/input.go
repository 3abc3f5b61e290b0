// internal/otp/input.go
package otp

import "strings"

// CodeLength is the number of digits in a verification code.
const CodeLength = 6

// InputBuffer models the six single-digit entry cells of the verification
// form. Cells fill left to right; digits beyond the sixth are ignored.
type InputBuffer struct {
	cells [CodeLength]string
}

// SetDigit writes one digit into cell i. Non-digit input and out-of-range
// cells are ignored; an empty value clears the cell.
func (b *InputBuffer) SetDigit(i int, v string) {
	if i < 0 || i >= CodeLength {
		return
	}
	if v == "" {
		b.cells[i] = ""
		return
	}
	if len(v) != 1 || v[0] < '0' || v[0] > '9' {
		return
	}
	b.cells[i] = v
}

// Backspace clears the last filled cell and returns its index, or -1 when the
// buffer is already empty.
func (b *InputBuffer) Backspace() int {
	for i := CodeLength - 1; i >= 0; i-- {
		if b.cells[i] != "" {
			b.cells[i] = ""
			return i
		}
	}
	return -1
}

// Paste distributes the digits of pasted text across the cells left to right,
// starting from the first cell. Non-digits are dropped, extra digits beyond
// six are discarded. It returns the index of the last filled cell so focus
// can land there, or -1 when nothing usable was pasted.
func (b *InputBuffer) Paste(text string) int {
	digits := nonDigits.ReplaceAllString(text, "")
	if digits == "" {
		return -1
	}
	if len(digits) > CodeLength {
		digits = digits[:CodeLength]
	}
	for i := 0; i < CodeLength; i++ {
		if i < len(digits) {
			b.cells[i] = string(digits[i])
		} else {
			b.cells[i] = ""
		}
	}
	return len(digits) - 1
}

// Code joins the cells into the submitted code string.
func (b *InputBuffer) Code() string {
	return strings.Join(b.cells[:], "")
}

// Complete reports whether all six cells hold a digit.
func (b *InputBuffer) Complete() bool {
	for _, c := range b.cells {
		if c == "" {
			return false
		}
	}
	return true
}

// ActiveCell returns the index of the first empty cell, or the last cell when
// the buffer is full.
func (b *InputBuffer) ActiveCell() int {
	for i, c := range b.cells {
		if c == "" {
			return i
		}
	}
	return CodeLength - 1
}

// Clear empties every cell.
func (b *InputBuffer) Clear() {
	b.cells = [CodeLength]string{}
}
