// internal/otp/flow.go
package otp

import (
	"context"
	"sync"

	stderrors "github.com/deepedumate/student-loan-aggregator-sub001/internal/common/errors"
)

// FlowState names the stages of the phone verification flow.
type FlowState string

const (
	StateEnteringPhone FlowState = "entering_phone"
	StateCodeSent      FlowState = "code_sent"
	StateVerified      FlowState = "verified"
)

// Flow drives one user's verification: phone entry, code delivery, six-cell
// code entry and verification. A failed verification keeps the flow in
// code_sent so the user can retype or resend; editing the phone drops back to
// entering_phone and wipes the entered code.
type Flow struct {
	mu      sync.Mutex
	service *Service

	state   FlowState
	phone   string
	buffer  InputBuffer
	lastErr string
}

func NewFlow(service *Service) *Flow {
	return &Flow{service: service, state: StateEnteringPhone}
}

// FlowView is a snapshot of the flow for rendering.
type FlowView struct {
	State      FlowState `json:"state"`
	Phone      string    `json:"phone"`
	Code       string    `json:"code"`
	ActiveCell int       `json:"activeCell"`
	Complete   bool      `json:"complete"`
	Error      string    `json:"error,omitempty"`
}

func (f *Flow) Snapshot() FlowView {
	f.mu.Lock()
	defer f.mu.Unlock()
	return FlowView{
		State:      f.state,
		Phone:      f.phone,
		Code:       f.buffer.Code(),
		ActiveCell: f.buffer.ActiveCell(),
		Complete:   f.buffer.Complete(),
		Error:      f.lastErr,
	}
}

// SendCode validates and stores the phone, then requests code delivery. On
// success the flow advances to code_sent. It is also the resend entry point;
// a resend inside the cooldown surfaces the cooldown error without leaving
// code_sent.
func (f *Flow) SendCode(ctx context.Context, rawPhone string) error {
	normalized, err := NormalizePhone(rawPhone)
	if err != nil {
		f.setError(err)
		return err
	}

	if err := f.service.Send(ctx, normalized); err != nil {
		f.setError(err)
		return err
	}

	f.mu.Lock()
	f.phone = normalized
	f.state = StateCodeSent
	f.buffer.Clear()
	f.lastErr = ""
	f.mu.Unlock()
	return nil
}

// EnterDigit writes one digit into the code buffer.
func (f *Flow) EnterDigit(i int, v string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buffer.SetDigit(i, v)
}

// Backspace clears the last filled cell.
func (f *Flow) Backspace() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buffer.Backspace()
}

// PasteCode fills the buffer from pasted text.
func (f *Flow) PasteCode(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buffer.Paste(text)
}

// Verify submits the buffered code. A mismatch or expiry records the error
// and stays in code_sent; success moves to verified.
func (f *Flow) Verify(ctx context.Context) error {
	f.mu.Lock()
	if f.state != StateCodeSent {
		f.mu.Unlock()
		err := stderrors.NewOTPCodeInvalidError("no code has been sent")
		f.setError(err)
		return err
	}
	phone := f.phone
	code := f.buffer.Code()
	f.mu.Unlock()

	if err := f.service.Verify(ctx, phone, code); err != nil {
		f.setError(err)
		return err
	}

	f.mu.Lock()
	f.state = StateVerified
	f.lastErr = ""
	f.mu.Unlock()
	return nil
}

// EditPhone abandons the current code and returns to phone entry. The buffer
// and any recorded error are wiped so the retry starts clean.
func (f *Flow) EditPhone() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = StateEnteringPhone
	f.phone = ""
	f.buffer.Clear()
	f.lastErr = ""
}

func (f *Flow) setError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastErr = err.Error()
}
