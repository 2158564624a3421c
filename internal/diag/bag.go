package diag

import (
	"sort"
)

// Bag collects diagnostics up to a limit. A limit of zero means unbounded.
type Bag struct {
	items   []Diagnostic
	max     int
	dropped int
}

func NewBag(max int) *Bag {
	return &Bag{
		items: make([]Diagnostic, 0, min(max, 64)),
		max:   max,
	}
}

// Add добавляет диагностику, учитывая лимит.
// Возвращает false, если диагностика не добавлена (достигнут лимит).
func (b *Bag) Add(d Diagnostic) bool {
	if b.max > 0 && len(b.items) >= b.max {
		b.dropped++
		return false
	}
	b.items = append(b.items, d)
	return true
}

// Dropped returns how many diagnostics were refused by the limit.
func (b *Bag) Dropped() int {
	return b.dropped
}

// HasErrors возвращает true, если есть хотя бы одна диагностика с Severity >= Error
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// HasWarnings возвращает true, если есть хотя бы одна диагностика с Severity >= Warning
func (b *Bag) HasWarnings() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevWarning {
			return true
		}
	}
	return false
}

// HasFixes reports whether any diagnostic carries an applicable fix.
func (b *Bag) HasFixes() bool {
	for i := range b.items {
		if b.items[i].Fixable() {
			return true
		}
	}
	return false
}

// длина
func (b *Bag) Len() int {
	return len(b.items)
}

// Items возвращает read-only slice диагностик.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Merge объединяет диагностики из другого Bag, соблюдая лимит.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	for _, d := range other.items {
		b.Add(d)
	}
	b.dropped += other.dropped
}

// Sort сортирует диагностики по: file, start, end, severity (desc), code (asc)
// для стабильного и детерминированного порядка вывода.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Primary.File != dj.Primary.File {
			return di.Primary.File < dj.Primary.File
		}
		if di.Primary.Start != dj.Primary.Start {
			return di.Primary.Start < dj.Primary.Start
		}
		if di.Primary.End != dj.Primary.End {
			return di.Primary.End < dj.Primary.End
		}
		// Error > Warning > Info
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}

type bagKey struct {
	code Code
	span string
	msg  string
}

// Dedup drops repeated diagnostics with the same code, span and message.
func (b *Bag) Dedup() {
	seen := make(map[bagKey]bool, len(b.items))
	out := b.items[:0]
	for _, d := range b.items {
		key := bagKey{code: d.Code, span: d.Primary.String(), msg: d.Message}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, d)
	}
	b.items = out
}
