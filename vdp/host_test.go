package vdp

import "testing"

func TestIRQLine_String(t *testing.T) {
	if IRQVertical.String() != "vertical" {
		t.Errorf("IRQVertical.String() = %q, want \"vertical\"", IRQVertical.String())
	}
	if IRQHorizontal.String() != "horizontal" {
		t.Errorf("IRQHorizontal.String() = %q, want \"horizontal\"", IRQHorizontal.String())
	}
}

func TestHostServices_NilCallbacksDoNotPanic(t *testing.T) {
	h := &HostServices{}
	h.raiseIRQ(IRQVertical)
	h.lowerIRQ(IRQHorizontal)
}

func TestHostServices_NilReceiverDoesNotPanic(t *testing.T) {
	var h *HostServices
	h.raiseIRQ(IRQVertical)
	h.lowerIRQ(IRQHorizontal)
}

func TestHostServices_CallbacksFireWithCorrectLine(t *testing.T) {
	var gotRaise, gotLower IRQLine
	raised, lowered := false, false
	h := &HostServices{
		RaiseIRQ: func(line IRQLine) { raised = true; gotRaise = line },
		LowerIRQ: func(line IRQLine) { lowered = true; gotLower = line },
	}
	h.raiseIRQ(IRQHorizontal)
	h.lowerIRQ(IRQVertical)

	if !raised || gotRaise != IRQHorizontal {
		t.Errorf("raiseIRQ callback: fired=%v line=%v, want true/%v", raised, gotRaise, IRQHorizontal)
	}
	if !lowered || gotLower != IRQVertical {
		t.Errorf("lowerIRQ callback: fired=%v line=%v, want true/%v", lowered, gotLower, IRQVertical)
	}
}
