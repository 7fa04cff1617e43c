// Package layout reads and writes MFL ui layout files.
//
// File is a header followed by pre-order widget array, pane records,
// animations and a names block. Decoded layout is a widget tree where
// cross references (widget to pane, anim entry to widget) are names.
package layout

const FileExtension = ".mfl"

type Layout struct {
	ID          uint16   `yaml:"layoutId" json:"layoutId"`
	Name        string   `yaml:"name" json:"name"`
	MainWidgets []string `yaml:"mainWidgets,omitempty" json:"mainWidgets,omitempty"`
	Players     []string `yaml:"players,omitempty" json:"players,omitempty"`
	Panes       []*Pane  `yaml:"panes,omitempty" json:"panes,omitempty"`
	Root        *Widget  `yaml:"rootWidget,omitempty" json:"rootWidget,omitempty"`
	Anims       []*Anim  `yaml:"anims,omitempty" json:"anims,omitempty"`
}

// Decode parses MFL file
func Decode(data []byte) (*Layout, error) {
	fl, err := decodeFlat(data)
	if err != nil {
		return nil, err
	}

	l := &Layout{
		ID:          fl.id,
		Name:        fl.name,
		MainWidgets: fl.mainWidgetNames,
		Players:     fl.players,
	}

	seen := make(map[string]struct{}, len(fl.paneNames))
	for i, shape := range fl.panes {
		name := fl.paneNames[i]
		if _, exists := seen[name]; exists {
			return nil, duplicatef("pane %d %q", i, name)
		}
		seen[name] = struct{}{}
		l.Panes = append(l.Panes, &Pane{Name: name, Shape: shape})
	}

	seen = make(map[string]struct{}, len(fl.widgetNames))
	for i, name := range fl.widgetNames {
		if _, exists := seen[name]; exists {
			return nil, duplicatef("widget %d %q", i, name)
		}
		seen[name] = struct{}{}
	}

	if l.Root, err = delinearize(fl.widgets, fl.widgetNames, fl.paneNames); err != nil {
		return nil, err
	}

	for i, ar := range fl.anims {
		ar.anim.Name = fl.animNames[i]
		for j, e := range ar.anim.Entries {
			idx := int(ar.widgetIdx[j])
			if idx >= len(fl.widgetNames) {
				return nil, unresolvedf("anim %q entry %d: widget index %d of %d",
					ar.anim.Name, j, idx, len(fl.widgetNames))
			}
			e.Widget = fl.widgetNames[idx]
		}
		l.Anims = append(l.Anims, ar.anim)
	}

	return l, nil
}

// Encode serializes layout. Child counts and indices are derived from
// tree, so any tree with unique names and resolvable references encodes.
func Encode(l *Layout) ([]byte, error) {
	fl := &flatLayout{
		id:              l.ID,
		name:            l.Name,
		mainWidgetNames: l.MainWidgets,
		players:         l.Players,
		panes:           make([]PaneShape, len(l.Panes)),
		paneNames:       make([]string, len(l.Panes)),
		anims:           make([]*animRecord, len(l.Anims)),
		animNames:       make([]string, len(l.Anims)),
	}

	paneIndex := make(map[string]int, len(l.Panes))
	for i, p := range l.Panes {
		if p == nil {
			return nil, malformedf("pane %d is nil", i)
		}
		if _, exists := paneIndex[p.Name]; exists {
			return nil, duplicatef("pane %q", p.Name)
		}
		if p.Shape == nil {
			return nil, malformedf("pane %q has no shape", p.Name)
		}
		paneIndex[p.Name] = i
		fl.panes[i] = p.Shape
		fl.paneNames[i] = p.Name
	}

	lin, err := linearize(l.Root, paneIndex)
	if err != nil {
		return nil, err
	}
	fl.widgets = lin.records
	fl.widgetNames = lin.names

	for i, a := range l.Anims {
		if a == nil {
			return nil, malformedf("anim %d is nil", i)
		}
		ar := &animRecord{anim: a, widgetIdx: make([]uint16, len(a.Entries))}
		for j, e := range a.Entries {
			if e == nil {
				return nil, malformedf("anim %q entry %d is nil", a.Name, j)
			}
			idx, ok := lin.index[e.Widget]
			if !ok {
				return nil, unresolvedf("anim %q entry %d: widget %q", a.Name, j, e.Widget)
			}
			ar.widgetIdx[j] = uint16(idx)
		}
		fl.anims[i] = ar
		fl.animNames[i] = a.Name
	}

	return fl.encode()
}

// Widgets returns all widgets of tree in file order
func (l *Layout) Widgets() []*Widget {
	var list []*Widget
	if l.Root != nil {
		l.Root.Walk(func(w *Widget) error {
			list = append(list, w)
			return nil
		})
	}
	return list
}

func (l *Layout) Pane(name string) *Pane {
	for _, p := range l.Panes {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func (l *Layout) Anim(name string) *Anim {
	for _, a := range l.Anims {
		if a.Name == name {
			return a
		}
	}
	return nil
}
