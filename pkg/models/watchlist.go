package models

// WatchList is the fixed, ordered set of tracked symbols. The order defines
// display row order; membership defines the change-feed filter. Immutable
// after construction.
type WatchList struct {
	symbols []string
	index   map[string]int
}

func NewWatchList(symbols ...string) *WatchList {
	w := &WatchList{
		symbols: make([]string, 0, len(symbols)),
		index:   make(map[string]int, len(symbols)),
	}
	for _, s := range symbols {
		if _, dup := w.index[s]; dup {
			continue
		}
		w.index[s] = len(w.symbols)
		w.symbols = append(w.symbols, s)
	}
	return w
}

// Symbols returns the tracked symbols in display order. Callers must not
// mutate the returned slice.
func (w *WatchList) Symbols() []string { return w.symbols }

func (w *WatchList) Len() int { return len(w.symbols) }

func (w *WatchList) Contains(symbol string) bool {
	_, ok := w.index[symbol]
	return ok
}

// IndexOf returns the display row for symbol, or -1 if not tracked.
func (w *WatchList) IndexOf(symbol string) int {
	i, ok := w.index[symbol]
	if !ok {
		return -1
	}
	return i
}

// CompanyNames maps each tracked symbol to its company name.
var CompanyNames = map[string]string{
	"MDB":   "MongoDB Inc.",
	"MULE":  "MuleSoft Inc.",
	"ORCL":  "Oracle Corp.",
	"IBM":   "International Business Machines Corp.",
	"SAP":   "SAP SE",
	"ADBE":  "Adobe Systems Inc.",
	"AMZN":  "Amazon.com Inc.",
	"MSFT":  "Microsoft Corp.",
	"CSCO":  "Cisco Systems Inc.",
	"VMW":   "VMware Inc.",
	"AAPL":  "Apple Inc.",
	"GOOGL": "Alphabet Inc.",
	"FB":    "Facebook, Inc.",
}

// DefaultWatchList returns the standard set of tracked symbols.
func DefaultWatchList() *WatchList {
	return NewWatchList(
		"MDB", "MULE", "ORCL", "IBM", "SAP", "ADBE", "AMZN",
		"MSFT", "CSCO", "VMW", "AAPL", "GOOGL", "FB",
	)
}
