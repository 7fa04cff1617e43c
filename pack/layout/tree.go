package layout

import (
	"math"
)

// delinearize rebuilds tree from pre-order records. Every record must be
// consumed by subtree of record 0.
func delinearize(records []widgetRecord, names []string, paneNames []string) (*Widget, error) {
	if len(records) == 0 {
		return nil, nil
	}
	var build func(idx int) (*Widget, int, error)
	build = func(idx int) (*Widget, int, error) {
		if idx >= len(records) {
			return nil, 0, malformedf("widget tree needs record %d, only %d present", idx, len(records))
		}
		r := &records[idx]
		w := &Widget{
			Name:      names[idx],
			Kind:      r.kind(),
			Flags:     r.flags &^ widgetKindMask,
			Transform: r.Transform,
		}
		switch w.Kind {
		case WidgetGroup:
			w.NumChildWidgets = r.numChildWidgets
		case WidgetLayout:
			w.ObjectIdx = r.objectIdx
		case WidgetMain:
			w.ObjectIdx = r.objectIdx
			w.NumChildWidgets = r.numChildWidgets
		case WidgetPane:
			if int(r.objectIdx) >= len(paneNames) {
				return nil, 0, unresolvedf("widget %d %q: pane index %d of %d", idx, w.Name, r.objectIdx, len(paneNames))
			}
			w.Pane = paneNames[r.objectIdx]
			w.NumChildWidgets = r.numChildWidgets
		}

		next := idx + 1
		count := r.childCount()
		if count != 0 {
			w.Widgets = make([]*Widget, 0, min(count, len(records)-next))
		}
		for i := 0; i < count; i++ {
			child, after, err := build(next)
			if err != nil {
				return nil, 0, err
			}
			w.Widgets = append(w.Widgets, child)
			next = after
		}
		return w, next, nil
	}

	root, end, err := build(0)
	if err != nil {
		return nil, err
	}
	if end != len(records) {
		return nil, malformedf("widget tree consumed %d of %d records", end, len(records))
	}
	return root, nil
}

type linearized struct {
	records []widgetRecord
	names   []string
	index   map[string]int
}

// linearize flattens tree into pre-order records. Group and Layout child
// counts are derived from children lists.
func linearize(root *Widget, paneIndex map[string]int) (*linearized, error) {
	lin := &linearized{index: make(map[string]int)}
	if root == nil {
		return lin, nil
	}
	var visit func(w *Widget) error
	visit = func(w *Widget) error {
		if w == nil {
			return malformedf("nil widget in tree")
		}
		if _, exists := lin.index[w.Name]; exists {
			return duplicatef("widget %q", w.Name)
		}
		if int(w.Kind) >= len(widgetKindNames) {
			return malformedf("widget %q: kind %d", w.Name, uint8(w.Kind))
		}
		if len(w.Widgets) > math.MaxUint16 {
			return malformedf("widget %q: %d children", w.Name, len(w.Widgets))
		}
		r := widgetRecord{
			flags:     w.Flags&^widgetKindMask | uint32(w.Kind)<<widgetKindShift,
			Transform: w.Transform,
		}
		if w.Kind != WidgetPane && w.Pane != "" {
			return malformedf("%v widget %q refers to pane %q", w.Kind, w.Name, w.Pane)
		}
		switch w.Kind {
		case WidgetGroup:
			r.objectIdx = uint16(len(w.Widgets))
			r.numChildWidgets = w.NumChildWidgets
		case WidgetLayout:
			r.objectIdx = w.ObjectIdx
			r.numChildWidgets = uint16(len(w.Widgets))
		case WidgetMain, WidgetPane:
			if len(w.Widgets) != 0 {
				return malformedf("%v widget %q cannot have children", w.Kind, w.Name)
			}
			r.objectIdx = w.ObjectIdx
			r.numChildWidgets = w.NumChildWidgets
			if w.Kind == WidgetPane {
				idx, ok := paneIndex[w.Pane]
				if !ok {
					return unresolvedf("widget %q: pane %q", w.Name, w.Pane)
				}
				r.objectIdx = uint16(idx)
			}
		}
		lin.index[w.Name] = len(lin.records)
		lin.records = append(lin.records, r)
		lin.names = append(lin.names, w.Name)
		for _, child := range w.Widgets {
			if err := visit(child); err != nil {
				return err
			}
		}
		return nil
	}
	if err := visit(root); err != nil {
		return nil, err
	}
	if len(lin.records) > math.MaxUint16 {
		return nil, malformedf("%d widgets do not fit 16 bit count", len(lin.records))
	}
	return lin, nil
}
