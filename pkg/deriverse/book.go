package deriverse

// OrderBook is a read-only view over the venue's shared lines array. Levels
// for both sides live in one flat arena; each side is a singly-traversed
// linked list of array indices starting at its head. The view is rebuilt
// from every snapshot and never owns or mutates the underlying account.
type OrderBook struct {
	Lines   []Level
	BidHead uint32
	AskHead uint32
	// MaxSteps bounds every traversal, independent of the links
	// terminating: corrupt or adversarial link data must not loop.
	MaxSteps int
}

// NewOrderBook builds the view from a decoded instrument header and the raw
// lines account data. Data shorter than the lines header decodes to an empty
// book.
func NewOrderBook(h *InstrumentHeader, linesData []byte) OrderBook {
	var lines []Level
	if len(linesData) > LinesHeaderSize {
		lines = decodeLines(linesData[LinesHeaderSize:])
	}
	return OrderBook{
		Lines:    lines,
		BidHead:  h.BidLinesBegin,
		AskHead:  h.AskLinesBegin,
		MaxSteps: int(max(h.BidLinesCount, h.AskLinesCount)),
	}
}

func (b *OrderBook) head(side Side) uint32 {
	if side == SideBid {
		return b.BidHead
	}
	return b.AskHead
}

// Head returns the best-priced level for a side, if the side is non-empty.
func (b *OrderBook) Head(side Side) (Level, bool) {
	idx := b.head(side)
	if idx == NullLine || int(idx) >= len(b.Lines) {
		return Level{}, false
	}
	line := b.Lines[idx]
	if line.SRef == NullLine {
		return Level{}, false
	}
	return line, true
}

// Crosses reports whether a hypothetical order at px would trade immediately
// against the book's best level on the given side.
func (b *OrderBook) Crosses(px int64, side Side) bool {
	line, ok := b.Head(side)
	if !ok {
		return false
	}
	if side == SideBid {
		return px <= line.Price
	}
	return px >= line.Price
}

// Bids iterates the bid side from best to worst price.
func (b *OrderBook) Bids() *LineIter {
	return &LineIter{lines: b.Lines, current: b.BidHead, remaining: b.MaxSteps}
}

// Asks iterates the ask side from best to worst price.
func (b *OrderBook) Asks() *LineIter {
	return &LineIter{lines: b.Lines, current: b.AskHead, remaining: b.MaxSteps}
}

// LineIter walks one side's linked list lazily. It is finite by
// construction: it stops at the null sentinel, at a self link, at an index
// outside the arena, or after the declared level count, whichever comes
// first. It cannot be restarted.
type LineIter struct {
	lines     []Level
	current   uint32
	remaining int
}

// Next yields the next (index, level) pair, or ok=false at the end.
func (it *LineIter) Next() (uint32, Level, bool) {
	if it.remaining == 0 || it.current == NullLine || int(it.current) >= len(it.lines) {
		return 0, Level{}, false
	}
	idx := it.current
	line := it.lines[idx]
	if line.SRef == NullLine {
		return 0, Level{}, false
	}
	it.remaining--

	if line.Next == NullLine || line.Next == idx {
		it.current = NullLine
	} else {
		it.current = line.Next
	}
	return idx, line, true
}
