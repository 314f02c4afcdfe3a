package vdp

// CmdOp is the 4-bit command-engine operation code, the top nibble of the
// CMD register.
type CmdOp byte

const (
	CmdABORT CmdOp = 0x0 // codes 0..3 all abort
	CmdPOINT CmdOp = 0x4
	CmdPSET  CmdOp = 0x5
	CmdSRCH  CmdOp = 0x6
	CmdLINE  CmdOp = 0x7
	CmdLMMV  CmdOp = 0x8
	CmdLMMM  CmdOp = 0x9
	CmdLMCM  CmdOp = 0xA
	CmdLMMC  CmdOp = 0xB
	CmdHMMV  CmdOp = 0xC
	CmdHMMM  CmdOp = 0xD
	CmdYMMM  CmdOp = 0xE
	CmdHMMC  CmdOp = 0xF
)

// Status bits within S#2, the command engine's status byte.
const (
	StatusCE byte = 0x01
	StatusBD byte = 0x10
	StatusTR byte = 0x80
)

// CmdEngine is the blitter: a state machine that executes one of sixteen
// VDP commands, advancing at a rate bounded by VRAM access slots. All
// progress happens inside ExecuteUntil(time); nothing here runs on its
// own.
type CmdEngine struct {
	vram *VRAM
	mode DisplayMode

	timing       TimingMode
	brokenTiming bool

	sx, sy, dx, dy, nx, ny int
	col                    byte
	arg                    byte
	cmdReg                 byte

	op    CmdOp
	logOp LogOp

	running bool

	// cursor state, shared by the step functions below.
	ax, ay   int // destination cursor
	bx, by   int // source cursor (LMMM/HMMM/YMMM)
	rowLeft  int
	rowsLeft int
	lineErr  int // Bresenham error accumulator (LINE)

	status  byte
	borderX int

	currentTime EmuTime
}

// NewCmdEngine constructs a command engine operating on vram.
func NewCmdEngine(vram *VRAM) *CmdEngine {
	return &CmdEngine{vram: vram}
}

// SetDisplayMode informs the engine of a display mode change. A command in
// progress aborts: CMD is cleared and CE drops. Real hardware commits the
// abort at an unverified cycle; here it lands at the mode change itself.
func (e *CmdEngine) SetDisplayMode(mode DisplayMode, t EmuTime) {
	if e.running && mode != e.mode {
		e.abort(t)
	}
	e.mode = mode
}

// SetTimingMode selects the flat per-operation tick cost block commands use.
func (e *CmdEngine) SetTimingMode(m TimingMode) {
	e.timing = m
}

// SetBrokenTiming collapses all access slots to zero ticks: commands
// complete instantly in emulated time.
func (e *CmdEngine) SetBrokenTiming(broken bool) {
	e.brokenTiming = broken
}

// effectiveTiming returns TimingInstant when broken timing is enabled,
// otherwise the configured TimingMode.
func (e *CmdEngine) effectiveTiming() TimingMode {
	if e.brokenTiming {
		return TimingInstant
	}
	return e.timing
}

// Running reports whether a command is currently executing.
func (e *CmdEngine) Running() bool {
	return e.running
}

func setLow(cur *int, v byte)  { *cur = (*cur &^ 0xFF) | int(v) }
func setHigh(cur *int, v byte) { *cur = (*cur &^ 0x0F00) | (int(v&0x0F) << 8) }

// WriteReg writes command-engine register index (0..14, corresponding to
// R#32..R#46) at time t.
func (e *CmdEngine) WriteReg(index int, value byte, t EmuTime) {
	e.ExecuteUntil(t)
	switch index {
	case 0:
		setLow(&e.sx, value)
	case 1:
		setHigh(&e.sx, value)
	case 2:
		setLow(&e.sy, value)
	case 3:
		setHigh(&e.sy, value)
	case 4:
		setLow(&e.dx, value)
	case 5:
		setHigh(&e.dx, value)
	case 6:
		setLow(&e.dy, value)
	case 7:
		setHigh(&e.dy, value)
	case 8:
		setLow(&e.nx, value)
	case 9:
		setHigh(&e.nx, value)
	case 10:
		setLow(&e.ny, value)
	case 11:
		setHigh(&e.ny, value)
	case 12:
		e.col = value
		// During a CPU-to-VRAM transfer a COL write is the data channel:
		// commit it at the write cursor and advance.
		if e.running && (e.op == CmdLMMC || e.op == CmdHMMC) {
			e.WriteCPU(value, t)
		}
	case 13:
		e.arg = value
	case 14:
		e.cmdReg = value
		e.op = CmdOp(value >> 4)
		e.logOp = LogOp(value & 0x0F)
		if e.op >= CmdPOINT {
			e.start(t)
		} else {
			e.abort(t)
		}
	}
}

// direction bits packed into ARG: DIY, DIX, EQ, MAJ.
func (e *CmdEngine) dix() bool { return e.arg&0x01 != 0 }
func (e *CmdEngine) diy() bool { return e.arg&0x02 != 0 }
func (e *CmdEngine) eq() bool  { return e.arg&0x04 != 0 }
func (e *CmdEngine) maj() bool { return e.arg&0x08 != 0 }

func (e *CmdEngine) stepX() int {
	if e.dix() {
		return -1
	}
	return 1
}

func (e *CmdEngine) stepY() int {
	if e.diy() {
		return -1
	}
	return 1
}

// isByteOp reports whether the running command is one of the "high-speed"
// family that moves whole VRAM bytes rather than individual pixels.
func (e *CmdEngine) isByteOp() bool {
	switch e.op {
	case CmdHMMV, CmdHMMM, CmdYMMM, CmdHMMC:
		return true
	default:
		return false
	}
}

// pxPerByte reports how many pixels the current mode packs per VRAM byte.
func (e *CmdEngine) pxPerByte() int {
	_, ppb := pixelFormat(e.mode)
	return ppb
}

// xStep is the per-sub-operation X cursor delta: one pixel for pixel-wise
// commands, one whole byte's worth of pixels for the high-speed family, so
// each step of a byte command lands on the next VRAM byte instead of
// re-touching the one it just wrote.
func (e *CmdEngine) xStep() int {
	n := 1
	if e.isByteOp() {
		n = e.pxPerByte()
	}
	if e.dix() {
		return -n
	}
	return n
}

// rowWidthSteps is how many xStep sub-operations make up one row: NX
// pixels for pixel-wise commands, NX/pxPerByte byte-steps for the
// high-speed family.
func (e *CmdEngine) rowWidthSteps() int {
	n := e.clippedNX()
	if e.isByteOp() {
		ppb := e.pxPerByte()
		n /= ppb
		if n < 1 {
			n = 1
		}
	}
	return n
}

// clippedNX returns the effective NX: 0 means lineWidth, otherwise clamped
// so the cursor cannot run outside the coordinate space. YMMM ignores NX
// and always runs from the DX column to the screen edge.
func (e *CmdEngine) clippedNX() int {
	width := e.mode.LineWidth()
	if e.op == CmdYMMM {
		if e.dix() {
			return e.dx + 1
		}
		return width - e.dx
	}
	nx := e.nx
	if nx == 0 {
		nx = width
	}
	var limit int
	if e.dix() {
		limit = min(e.sx, e.dx) + 1
	} else {
		limit = width - max(e.sx, e.dx)
	}
	if limit < 0 {
		limit = 0
	}
	if nx > limit {
		nx = limit
	}
	if nx < 1 {
		nx = 1
	}
	return nx
}

// clippedNY mirrors clippedNX for the vertical axis: NY==0 means 1024, and
// with DIY set the row count is clamped so the command terminates once it
// underflows through line 0. Which Y cursors bound the clamp depends on
// whether the command reads a source, writes a destination, or both. On
// the DIY=0 side rows run off the bottom freely and wrap to line 0 of the
// same page (pixelAddress masks Y).
func (e *CmdEngine) clippedNY() int {
	ny := e.ny
	if ny == 0 {
		ny = 1024
	}
	if e.diy() {
		var limit int
		switch e.op {
		case CmdLMMM, CmdHMMM, CmdYMMM:
			limit = min(e.sy, e.dy) + 1
		case CmdLMCM:
			limit = e.sy + 1
		default:
			limit = e.dy + 1
		}
		if ny > limit {
			ny = limit
		}
	}
	return ny
}

// lineSteps returns the number of pixels LINE draws: NX (or the line width
// when NX is 0) plus the starting pixel, so a line with NX=255 plots 256
// points, matching the Bresenham denominator runLINE steps against.
func (e *CmdEngine) lineSteps() int {
	n := e.nx
	if n == 0 {
		n = e.mode.LineWidth()
	}
	return n + 1
}

// enableCmdWindows opens the command engine's read/write VRAM windows so
// VRAM.CPURead/CPUWrite synchronise the engine before a CPU access can
// race a command in flight. Conservatively spans the whole address space
// rather than the command's own rectangle.
func (e *CmdEngine) enableCmdWindows(t EmuTime) {
	full := e.vram.mask
	e.vram.CmdReadWindow.SetMask(full, 0, t)
	e.vram.CmdWriteWindow.SetMask(full, 0, t)
}

func (e *CmdEngine) disableCmdWindows(t EmuTime) {
	e.vram.CmdReadWindow.Disable(t)
	e.vram.CmdWriteWindow.Disable(t)
}

// start begins executing the command just written to CMD.
func (e *CmdEngine) start(t EmuTime) {
	e.running = true
	e.status |= StatusCE
	e.enableCmdWindows(t)
	e.borderX = 0
	e.ax, e.ay = e.dx, e.dy
	e.bx, e.by = e.sx, e.sy
	if e.op == CmdYMMM {
		e.bx = e.dx
	}
	e.rowLeft = e.rowWidthSteps()
	if e.op == CmdLINE {
		e.rowsLeft = e.lineSteps()
	} else {
		e.rowsLeft = e.clippedNY()
	}
	e.lineErr = 0
	e.currentTime = t

	switch e.op {
	case CmdPOINT:
		e.col = readPixel(e.vram, e.mode, e.sx, e.sy)
		e.commandDone(t)
	case CmdPSET:
		writePixel(e.vram, e.mode, e.dx, e.dy, e.col, e.logOp, t)
		e.commandDone(t)
	default:
		e.ExecuteUntil(t)
	}
}

// abort implements ABORT (codes 0..3): clear CE and stop.
func (e *CmdEngine) abort(t EmuTime) {
	e.running = false
	e.status &^= StatusCE | StatusTR
	e.op = CmdABORT
	e.disableCmdWindows(t)
}

func (e *CmdEngine) commandDone(t EmuTime) {
	e.running = false
	e.status &^= StatusCE
	e.currentTime = t
	e.disableCmdWindows(t)
}

// Status returns S#2's CE/TR/BD bits, synchronising the engine to t first.
func (e *CmdEngine) Status(t EmuTime) byte {
	e.ExecuteUntil(t)
	return e.status
}

// BorderX returns the X coordinate SRCH last latched on border/match.
func (e *CmdEngine) BorderX(t EmuTime) int {
	e.ExecuteUntil(t)
	return e.borderX
}

// ReadCPU implements the CPU side of LMCM: returns the staged pixel and
// advances the read cursor. Only meaningful while the engine is running an
// LMCM command with TR set.
func (e *CmdEngine) ReadCPU(t EmuTime) byte {
	e.ExecuteUntil(t)
	if !e.running || e.op != CmdLMCM || e.status&StatusTR == 0 {
		return e.col
	}
	value := e.col
	e.status &^= StatusTR
	e.advanceReadCursor(t)
	return value
}

// WriteCPU implements the CPU side of LMMC/HMMC: commits value at the
// write cursor and advances it. Only meaningful while running with TR set.
func (e *CmdEngine) WriteCPU(value byte, t EmuTime) {
	e.ExecuteUntil(t)
	if !e.running || (e.op != CmdLMMC && e.op != CmdHMMC) || e.status&StatusTR == 0 {
		return
	}
	if e.op == CmdLMMC {
		writePixel(e.vram, e.mode, e.ax, e.ay, value, e.logOp, t)
	} else {
		writeByteRaw(e.vram, e.mode, e.ax, e.ay, value, t)
	}
	e.status &^= StatusTR
	e.advanceWriteCursor(t)
}

func (e *CmdEngine) advanceReadCursor(t EmuTime) {
	e.bx += e.xStep()
	e.rowLeft--
	if e.rowLeft == 0 {
		e.by += e.stepY()
		e.rowsLeft--
		e.bx = e.sx
		e.rowLeft = e.rowWidthSteps()
		if e.rowsLeft == 0 {
			e.commandDone(t)
		}
	}
}

func (e *CmdEngine) advanceWriteCursor(t EmuTime) {
	e.ax += e.xStep()
	e.rowLeft--
	if e.rowLeft == 0 {
		e.ay += e.stepY()
		e.rowsLeft--
		e.ax = e.dx
		e.rowLeft = e.rowWidthSteps()
		if e.rowsLeft == 0 {
			e.commandDone(t)
		}
	}
}

// ExecuteUntil advances the running command as far as emulated time t
// permits, consuming one VRAM access slot per pixel/byte operation.
func (e *CmdEngine) ExecuteUntil(t EmuTime) {
	if !e.running {
		e.currentTime = t
		return
	}
	calc := NewAccessSlotCalculator(e.effectiveTiming(), e.currentTime, t)
	switch e.op {
	case CmdSRCH:
		e.runSRCH(calc, t)
	case CmdLINE:
		e.runLINE(calc, t)
	case CmdLMMV:
		e.runFill(calc, t, false)
	case CmdHMMV:
		e.runFill(calc, t, true)
	case CmdLMMM:
		e.runCopy(calc, t, false)
	case CmdHMMM, CmdYMMM:
		e.runCopy(calc, t, true)
	case CmdLMCM:
		e.runStageRead(calc, t)
	case CmdLMMC, CmdHMMC:
		e.runStageWrite(calc, t)
	}
	e.currentTime = calc.Time()
}

// runSRCH scans for a matching (or, with EQ, non-matching) pixel value,
// stopping at the first match or at the coordinate-space border.
func (e *CmdEngine) runSRCH(calc *AccessSlotCalculator, t EmuTime) {
	width := e.mode.LineWidth()
	for !calc.LimitReached() && e.running {
		if e.bx < 0 || e.bx >= width {
			e.status |= StatusBD
			e.borderX = e.bx
			e.commandDone(t)
			break
		}
		p := readPixel(e.vram, e.mode, e.bx, e.by)
		matched := p == e.col
		if e.eq() {
			matched = !matched
		}
		if matched {
			e.status |= StatusBD
			e.borderX = e.bx
			e.commandDone(t)
			break
		}
		e.bx += e.stepX()
		calc.Next()
	}
}

// runLINE draws a Bresenham line from (DX,DY), NX/NY steps, MAJ selecting
// the major axis.
func (e *CmdEngine) runLINE(calc *AccessSlotCalculator, t EmuTime) {
	steps := e.nx
	if steps == 0 {
		steps = e.mode.LineWidth()
	}
	for !calc.LimitReached() && e.running {
		writePixel(e.vram, e.mode, e.ax, e.ay, e.col, e.logOp, t)
		if e.maj() {
			e.ay += e.stepY()
			e.lineErr += e.ny
			if 2*e.lineErr >= steps {
				e.ax += e.stepX()
				e.lineErr -= steps
			}
		} else {
			e.ax += e.stepX()
			e.lineErr += e.ny
			if 2*e.lineErr >= steps {
				e.ay += e.stepY()
				e.lineErr -= steps
			}
		}
		e.rowsLeft--
		calc.Next()
		if e.rowsLeft <= 0 {
			e.commandDone(t)
		}
	}
}

// runFill implements LMMV/HMMV: fill a rectangle with COL. byteMode writes
// whole bytes (HMMV) instead of individual pixels (LMMV).
func (e *CmdEngine) runFill(calc *AccessSlotCalculator, t EmuTime, byteMode bool) {
	for !calc.LimitReached() && e.running {
		if byteMode {
			writeByteRaw(e.vram, e.mode, e.ax, e.ay, e.col, t)
		} else {
			writePixel(e.vram, e.mode, e.ax, e.ay, e.col, e.logOp, t)
		}
		e.advanceWriteCursor(t)
		calc.Next()
	}
}

// runCopy implements LMMM (pixel, logical-op'd) and HMMM/YMMM (raw byte
// copy) rectangle transfers. Source and destination cursors step in
// lockstep: at the end of each row both X cursors rewind and both Y
// cursors advance one line.
func (e *CmdEngine) runCopy(calc *AccessSlotCalculator, t EmuTime, byteMode bool) {
	srcStartX := e.sx
	if e.op == CmdYMMM {
		srcStartX = e.dx
	}
	for !calc.LimitReached() && e.running {
		if byteMode {
			v := readByteRaw(e.vram, e.mode, e.bx, e.by)
			writeByteRaw(e.vram, e.mode, e.ax, e.ay, v, t)
		} else {
			v := readPixel(e.vram, e.mode, e.bx, e.by)
			writePixel(e.vram, e.mode, e.ax, e.ay, v, e.logOp, t)
		}
		e.bx += e.xStep()
		e.ax += e.xStep()
		e.rowLeft--
		if e.rowLeft == 0 {
			e.by += e.stepY()
			e.ay += e.stepY()
			e.rowsLeft--
			e.bx = srcStartX
			e.ax = e.dx
			e.rowLeft = e.rowWidthSteps()
			if e.rowsLeft == 0 {
				e.commandDone(t)
			}
		}
		calc.Next()
	}
}

// runStageRead prepares the next pixel for LMCM: once TR is set the CPU
// must consume it via ReadCPU before another is staged.
func (e *CmdEngine) runStageRead(calc *AccessSlotCalculator, t EmuTime) {
	if e.status&StatusTR != 0 {
		return
	}
	if calc.LimitReached() {
		return
	}
	e.col = readPixel(e.vram, e.mode, e.bx, e.by)
	e.status |= StatusTR
	calc.Next()
}

// CmdEngineState is the serializable subset of CmdEngine state (vdp/state.go).
type CmdEngineState struct {
	SX, SY, DX, DY, NX, NY int
	Col, Arg, CmdReg       byte
	Op                     CmdOp
	LogOp                  LogOp
	Running                bool
	AX, AY, BX, BY         int
	RowLeft, RowsLeft      int
	LineErr                int
	Status                 byte
	BorderX                int
	CurrentTime            EmuTime
	Timing                 TimingMode
	BrokenTiming           bool
}

// ExportState captures the engine's cursor/register state for save-state
// serialization. It does not resync vram windows; RestoreState does that.
func (e *CmdEngine) ExportState() CmdEngineState {
	return CmdEngineState{
		SX: e.sx, SY: e.sy, DX: e.dx, DY: e.dy, NX: e.nx, NY: e.ny,
		Col: e.col, Arg: e.arg, CmdReg: e.cmdReg,
		Op: e.op, LogOp: e.logOp, Running: e.running,
		AX: e.ax, AY: e.ay, BX: e.bx, BY: e.by,
		RowLeft: e.rowLeft, RowsLeft: e.rowsLeft, LineErr: e.lineErr,
		Status: e.status, BorderX: e.borderX, CurrentTime: e.currentTime,
		Timing: e.timing, BrokenTiming: e.brokenTiming,
	}
}

// RestoreState reinstates a previously exported state and, if a command
// was running, re-opens the command VRAM windows so CPU access sync
// resumes correctly.
func (e *CmdEngine) RestoreState(s CmdEngineState, t EmuTime) {
	e.sx, e.sy, e.dx, e.dy, e.nx, e.ny = s.SX, s.SY, s.DX, s.DY, s.NX, s.NY
	e.col, e.arg, e.cmdReg = s.Col, s.Arg, s.CmdReg
	e.op, e.logOp, e.running = s.Op, s.LogOp, s.Running
	e.ax, e.ay, e.bx, e.by = s.AX, s.AY, s.BX, s.BY
	e.rowLeft, e.rowsLeft, e.lineErr = s.RowLeft, s.RowsLeft, s.LineErr
	e.status, e.borderX, e.currentTime = s.Status, s.BorderX, s.CurrentTime
	e.timing, e.brokenTiming = s.Timing, s.BrokenTiming
	if e.running {
		e.enableCmdWindows(t)
	}
}

// runStageWrite marks the engine ready to accept the next CPU-supplied
// byte/pixel for LMMC/HMMC.
func (e *CmdEngine) runStageWrite(calc *AccessSlotCalculator, t EmuTime) {
	if e.status&StatusTR != 0 {
		return
	}
	if calc.LimitReached() {
		return
	}
	e.status |= StatusTR
	calc.Next()
}
